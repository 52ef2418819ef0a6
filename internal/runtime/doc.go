// Package runtime assembles the storage, log store, notifier, and
// configuration for one loglet instance. It is the single composition
// point the HTTP server and CLI build on.
package runtime
