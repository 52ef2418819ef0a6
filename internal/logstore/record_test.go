package logstore

import (
	"bytes"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	raw := EncodeRecord(1700000000, 42, []byte("deploy finished"))
	ts, level, body, ok := DecodeRecord(raw)
	if !ok {
		t.Fatal("decode failed")
	}
	if ts != 1700000000 || level != 42 || string(body) != "deploy finished" {
		t.Fatalf("round trip gave ts=%d level=%d body=%q", ts, level, body)
	}
}

func TestRecordEmptyBody(t *testing.T) {
	raw := EncodeRecord(5, 0, nil)
	ts, level, body, ok := DecodeRecord(raw)
	if !ok || ts != 5 || level != 0 || len(body) != 0 {
		t.Fatalf("decode: ok=%v ts=%d level=%d body=%q", ok, ts, level, body)
	}
}

func TestRecordCorruption(t *testing.T) {
	raw := EncodeRecord(1000, 30, []byte("hi"))

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-6] ^= 0xff
	if _, _, _, ok := DecodeRecord(flipped); ok {
		t.Fatal("decode accepted corrupted record")
	}

	if _, _, _, ok := DecodeRecord(raw[:8]); ok {
		t.Fatal("decode accepted truncated record")
	}
	if _, _, _, ok := DecodeRecord(nil); ok {
		t.Fatal("decode accepted empty record")
	}
}

func TestKeyOrdering(t *testing.T) {
	// Message keys must sort by sequence so scans walk insertion order.
	prev := KeyMessage(7, 0)
	for seq := uint64(1); seq < 300; seq += 13 {
		k := KeyMessage(7, seq)
		if bytes.Compare(prev, k) >= 0 {
			t.Fatalf("key for seq %d does not sort after its predecessor", seq)
		}
		if MessageSeqFromKey(k) != seq {
			t.Fatalf("extracted seq %d, want %d", MessageSeqFromKey(k), seq)
		}
		prev = k
	}

	// A different log's keys never fall inside this log's prefix range.
	other := KeyMessage(8, 0)
	if bytes.HasPrefix(other, KeyMessagePrefix(7)) {
		t.Fatal("prefix for log 7 matches keys of log 8")
	}
}
