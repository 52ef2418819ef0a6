// Package logstore implements the bounded per-log message store.
//
// # Overview
//
// Each log is named externally by a random alphanumeric identifier and
// internally by a numeric key used only in storage keys. Messages carry a
// store-assigned unix timestamp, a clamped severity level, and a per-log
// monotonically increasing sequence number. At most Limits.MaxMessages
// messages are retained per log; each append deletes whatever falls beyond
// the newest MaxMessages — ordered by (time desc, seq desc) — in the same
// Pebble batch as the insert, so the retention invariant holds across
// crashes and concurrent readers.
//
// Keys are laid out for range scans:
//   - loglet/next                       global internal-key counter
//   - loglet/id/{extID}                 external id index
//   - loglet/meta/{key_be8}             metadata (title, notify, lastSeq)
//   - loglet/msg/{key_be8}/{seq_be8}    message records
//
// Writers of the same log serialize on a per-log mutex; different logs
// never block one another.
//
// API surface (internal)
//
//	st := logstore.Open(db, logstore.Options{})
//	id, _ := st.CreateLog(ctx)
//	msg, _ := st.Append(ctx, id, "build finished", 20)
//	msgs, _ := st.Messages(ctx, id) // newest first
//	_ = st.UpdateMetadata(ctx, id, logstore.MetaUpdate{Title: &title})
package logstore
