// Package client holds the Cobra subcommands that talk to a running
// loglet server over HTTP.
package client
