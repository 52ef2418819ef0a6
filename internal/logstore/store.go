package logstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/pebble"

	"github.com/sampsyo/loglet/pkg/id"
	pebblestore "github.com/sampsyo/loglet/internal/storage/pebble"
)

// ErrNotFound is returned when an external log identifier resolves to nothing.
var ErrNotFound = errors.New("log not found")

// DefaultTitle is the title assigned to freshly created logs.
const DefaultTitle = "A Loglet Log"

// createRetries bounds identifier regeneration on the (astronomically
// unlikely) collision of a fresh external id with an existing one.
const createRetries = 5

// Limits bound per-log retention and input normalization.
type Limits struct {
	// MaxMessages is the per-log retention cap. Appending beyond it evicts
	// the oldest messages in the same commit.
	MaxMessages int
	// MinLevel and MaxLevel bound stored severity levels.
	MinLevel int
	MaxLevel int
	// MaxBodyBytes, MaxTitleBytes, MaxNotifyBytes truncate oversized input
	// rather than rejecting it.
	MaxBodyBytes   int
	MaxTitleBytes  int
	MaxNotifyBytes int
}

// DefaultLimits mirrors the hosted service's defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxMessages:    512,
		MinLevel:       0,
		MaxLevel:       100,
		MaxBodyBytes:   4096,
		MaxTitleBytes:  256,
		MaxNotifyBytes: 128,
	}
}

// ClampLevel forces v into [MinLevel, MaxLevel].
func (l Limits) ClampLevel(v int) int {
	if v < l.MinLevel {
		return l.MinLevel
	}
	if v > l.MaxLevel {
		return l.MaxLevel
	}
	return v
}

// ParseLevel interprets raw severity input. Empty or non-numeric input
// yields MinLevel; numeric input is clamped. Normalization happens here,
// at ingestion, so stored values are always in range.
func (l Limits) ParseLevel(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return l.MinLevel
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return l.MinLevel
	}
	return l.ClampLevel(v)
}

// Message is one retained entry of a log.
type Message struct {
	Seq   uint64
	Body  string
	Level int
	Time  int64 // unix seconds, assigned by the store at insert
}

// Meta is the mutable metadata of a log.
type Meta struct {
	Title  string
	Notify string
}

// MetaUpdate is a partial metadata update: nil leaves a field unchanged,
// a pointer to "" clears it.
type MetaUpdate struct {
	Title  *string
	Notify *string
}

// metaRecord is the persisted shape; LastSeq rides along with the metadata
// so one point read recovers everything a log handle needs.
type metaRecord struct {
	Title   string `json:"title"`
	Notify  string `json:"notify"`
	LastSeq uint64 `json:"lastSeq"`
}

// Options configures a Store.
type Options struct {
	Limits Limits
	// Clock returns the current unix time in seconds. Tests override it.
	Clock func() int64
}

// Store is the bounded log store. It owns the mapping from external log
// identifiers to message history and enforces the retention cap on insert.
type Store struct {
	db     *pebblestore.DB
	limits Limits
	clock  func() int64

	mu      sync.Mutex
	handles map[string]*logHandle
}

// logHandle serializes writers of one log. Handles for different logs are
// independent, so appends to different logs never contend.
type logHandle struct {
	mu  sync.Mutex
	key uint64
}

// Open builds a Store over db.
func Open(db *pebblestore.DB, opts Options) *Store {
	limits := opts.Limits
	if limits.MaxMessages <= 0 {
		limits = DefaultLimits()
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() int64 { return time.Now().Unix() }
	}
	return &Store{
		db:      db,
		limits:  limits,
		clock:   clock,
		handles: make(map[string]*logHandle),
	}
}

// Limits returns the store's configured limits.
func (s *Store) Limits() Limits { return s.limits }

// CreateLog allocates a new external identifier, writes the log's index
// entry and default metadata atomically, and returns the identifier.
func (s *Store) CreateLog(ctx context.Context) (string, error) {
	for i := 0; i < createRetries; i++ {
		extID, err := id.New()
		if err != nil {
			return "", err
		}
		if _, err := s.db.Get(KeyLogID(extID)); err == nil {
			continue // collision; regenerate
		} else if !errors.Is(err, pebblestore.ErrNotFound) {
			return "", err
		}

		s.mu.Lock()
		key, err := s.nextKeyLocked(ctx, extID)
		if err == nil {
			s.handles[extID] = &logHandle{key: key}
		}
		s.mu.Unlock()
		if err != nil {
			return "", err
		}
		return extID, nil
	}
	return "", errors.New("logstore: exhausted identifier retries")
}

// nextKeyLocked allocates the next internal key and commits the counter,
// index, and default metadata as one batch. Caller holds s.mu.
func (s *Store) nextKeyLocked(ctx context.Context, extID string) (uint64, error) {
	var key uint64 = 1
	if cur, err := s.db.Get(KeyCounter()); err == nil && len(cur) >= 8 {
		key = binary.BigEndian.Uint64(cur[:8]) + 1
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return 0, err
	}

	b := s.db.NewBatch()
	defer b.Close()

	var cnt [8]byte
	binary.BigEndian.PutUint64(cnt[:], key)
	if err := b.Set(KeyCounter(), cnt[:], nil); err != nil {
		return 0, err
	}
	if err := b.Set(KeyLogID(extID), cnt[:], nil); err != nil {
		return 0, err
	}
	meta, err := json.Marshal(metaRecord{Title: DefaultTitle})
	if err != nil {
		return 0, err
	}
	if err := b.Set(KeyLogMeta(key), meta, nil); err != nil {
		return 0, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return 0, err
	}
	return key, nil
}

// handle resolves an external id to its write handle, caching the result.
func (s *Store) handle(extID string) (*logHandle, error) {
	s.mu.Lock()
	h, ok := s.handles[extID]
	s.mu.Unlock()
	if ok {
		return h, nil
	}

	raw, err := s.db.Get(KeyLogID(extID))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(raw) < 8 {
		return nil, fmt.Errorf("logstore: corrupt id index for %q", extID)
	}
	key := binary.BigEndian.Uint64(raw[:8])

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.handles[extID]; ok {
		return h, nil
	}
	h = &logHandle{key: key}
	s.handles[extID] = h
	return h, nil
}

// Append inserts a message and evicts everything beyond the MaxMessages
// newest entries, ordered by (time desc, seq desc) — the same ordering
// Messages returns. Insert and eviction commit as one batch: a crash can
// never leave the log over capacity or the append half-applied.
func (s *Store) Append(ctx context.Context, extID, body string, level int) (Message, error) {
	h, err := s.handle(extID)
	if err != nil {
		return Message{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	meta, err := s.readMeta(h.key)
	if err != nil {
		return Message{}, err
	}

	level = s.limits.ClampLevel(level)
	body = truncate(body, s.limits.MaxBodyBytes)
	now := s.clock()
	seq := meta.LastSeq + 1

	existing, err := s.scan(h.key)
	if err != nil {
		return Message{}, err
	}

	msg := Message{Seq: seq, Body: body, Level: level, Time: now}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set(KeyMessage(h.key, seq), EncodeRecord(now, level, []byte(body)), nil); err != nil {
		return Message{}, err
	}
	meta.LastSeq = seq
	raw, err := json.Marshal(meta)
	if err != nil {
		return Message{}, err
	}
	if err := b.Set(KeyLogMeta(h.key), raw, nil); err != nil {
		return Message{}, err
	}

	// Evict: keep only the MaxMessages newest of existing+new.
	all := append(existing, msg)
	sortNewestFirst(all)
	for _, old := range all[min(len(all), s.limits.MaxMessages):] {
		if err := b.Delete(KeyMessage(h.key, old.Seq), nil); err != nil {
			return Message{}, err
		}
	}

	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Message{}, err
	}
	return msg, nil
}

// Messages returns every retained message of a log, newest first. The
// ordering is exactly the eviction ordering: time desc, sequence desc.
func (s *Store) Messages(ctx context.Context, extID string) ([]Message, error) {
	h, err := s.handle(extID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	msgs, err := s.scan(h.key)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(msgs)
	return msgs, nil
}

// Metadata returns a log's title and notify handle.
func (s *Store) Metadata(ctx context.Context, extID string) (Meta, error) {
	h, err := s.handle(extID)
	if err != nil {
		return Meta{}, err
	}
	if err := ctx.Err(); err != nil {
		return Meta{}, err
	}
	rec, err := s.readMeta(h.key)
	if err != nil {
		return Meta{}, err
	}
	return Meta{Title: rec.Title, Notify: rec.Notify}, nil
}

// UpdateMetadata applies a partial update. Omitted (nil) fields keep their
// value; supplied empty strings clear the field. Oversized input truncates.
func (s *Store) UpdateMetadata(ctx context.Context, extID string, upd MetaUpdate) error {
	h, err := s.handle(extID)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	rec, err := s.readMeta(h.key)
	if err != nil {
		return err
	}
	if upd.Title != nil {
		rec.Title = truncate(strings.TrimSpace(*upd.Title), s.limits.MaxTitleBytes)
	}
	if upd.Notify != nil {
		rec.Notify = truncate(strings.TrimSpace(*upd.Notify), s.limits.MaxNotifyBytes)
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyLogMeta(h.key), raw, nil); err != nil {
		return err
	}
	return s.db.CommitBatch(ctx, b)
}

func (s *Store) readMeta(key uint64) (metaRecord, error) {
	raw, err := s.db.Get(KeyLogMeta(key))
	if err != nil {
		if errors.Is(err, pebblestore.ErrNotFound) {
			return metaRecord{}, ErrNotFound
		}
		return metaRecord{}, err
	}
	var rec metaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return metaRecord{}, fmt.Errorf("logstore: corrupt metadata: %w", err)
	}
	return rec, nil
}

// scan reads every message of a log in key (sequence) order.
func (s *Store) scan(key uint64) ([]Message, error) {
	low := KeyMessage(key, 0)
	hi := KeyMessage(key, ^uint64(0))
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: append(hi, 0x00)})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var msgs []Message
	for ok := iter.First(); ok; ok = iter.Next() {
		seq := MessageSeqFromKey(iter.Key())
		ts, level, body, okDec := DecodeRecord(iter.Value())
		if !okDec {
			continue
		}
		msgs = append(msgs, Message{Seq: seq, Body: string(body), Level: level, Time: ts})
	}
	return msgs, nil
}

// sortNewestFirst orders by time desc, breaking sub-second ties by
// sequence desc. Eviction and reads share this so the newest MaxMessages
// a reader observes are exactly the entries eviction keeps.
func sortNewestFirst(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].Time != msgs[j].Time {
			return msgs[i].Time > msgs[j].Time
		}
		return msgs[i].Seq > msgs[j].Seq
	})
}

// truncate limits s to max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
