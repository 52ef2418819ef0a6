package logstore

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
//   - loglet/next                       (global internal-key counter, be8)
//   - loglet/id/{extID}                 (external id -> internal key, be8)
//   - loglet/meta/{key_be8}             (log metadata JSON)
//   - loglet/msg/{key_be8}/{seq_be8}    (message records)
//
// Message keys sort by sequence, so a forward scan walks insertion order.

var (
	sep        = byte('/')
	counterKey = []byte("loglet/next")
	idPrefix   = []byte("loglet/id/")
	metaPrefix = []byte("loglet/meta/")
	msgPrefix  = []byte("loglet/msg/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyCounter returns the global internal-key counter key.
func KeyCounter() []byte { return counterKey }

// KeyLogID builds the index key mapping an external id to its internal key.
func KeyLogID(extID string) []byte {
	k := make([]byte, 0, len(idPrefix)+len(extID))
	k = append(k, idPrefix...)
	k = append(k, extID...)
	return k
}

// KeyLogMeta builds the metadata key for an internal log key.
func KeyLogMeta(key uint64) []byte {
	k := make([]byte, 0, len(metaPrefix)+8)
	k = append(k, metaPrefix...)
	k = appendBE8(k, key)
	return k
}

// KeyMessage builds the message key with a big-endian sequence for ordering.
func KeyMessage(key, seq uint64) []byte {
	k := make([]byte, 0, len(msgPrefix)+18)
	k = append(k, msgPrefix...)
	k = appendBE8(k, key)
	k = append(k, sep)
	k = appendBE8(k, seq)
	return k
}

// KeyMessagePrefix returns the prefix covering every message of a log.
func KeyMessagePrefix(key uint64) []byte {
	k := make([]byte, 0, len(msgPrefix)+9)
	k = append(k, msgPrefix...)
	k = appendBE8(k, key)
	k = append(k, sep)
	return k
}

// MessageSeqFromKey extracts the sequence number from a message key.
func MessageSeqFromKey(k []byte) uint64 {
	if len(k) < 8 {
		return 0
	}
	return binary.BigEndian.Uint64(k[len(k)-8:])
}
