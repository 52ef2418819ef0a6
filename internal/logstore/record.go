package logstore

import (
	"encoding/binary"
	"hash/crc32"
)

// Record encoding: time_be8 | uvarint level | body | crc32c(time|level|body)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// EncodeRecord serializes one message value.
func EncodeRecord(timestamp int64, level int, body []byte) []byte {
	out := make([]byte, 0, 8+10+len(body)+4)
	out = appendBE8(out, uint64(timestamp))
	var tmp [10]byte
	n := binary.PutUvarint(tmp[:], uint64(level))
	out = append(out, tmp[:n]...)
	out = append(out, body...)

	crc := crc32.Update(0, castagnoli, out)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc)
	return append(out, crcb[:]...)
}

// DecodeRecord parses a message value. Returns ok=false on truncation or
// checksum mismatch; callers skip such entries rather than fail the scan.
func DecodeRecord(b []byte) (timestamp int64, level int, body []byte, ok bool) {
	if len(b) < 8+1+4 {
		return 0, 0, nil, false
	}
	payload := b[:len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	if crc32.Update(0, castagnoli, payload) != expect {
		return 0, 0, nil, false
	}
	timestamp = int64(binary.BigEndian.Uint64(payload[:8]))
	lvl, n := binary.Uvarint(payload[8:])
	if n <= 0 {
		return 0, 0, nil, false
	}
	body = append([]byte(nil), payload[8+n:]...)
	return timestamp, int(lvl), body, true
}
