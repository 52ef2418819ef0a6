// Package id generates the external identifiers that name logs.
//
// Identifiers are fixed-length random alphanumeric strings. They are the
// only handle clients ever see; the store keeps a separate internal numeric
// key for message storage. Generation uses crypto/rand so identifiers are
// not guessable from one another.
package id
