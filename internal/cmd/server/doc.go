// Package serverrun wires config, storage, and the HTTP server into a
// single blocking Run call used by the CLI.
package serverrun
