package loglet

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRegistryBaseModes(t *testing.T) {
	r := NewRegistry()
	for _, mode := range []string{ModeSync, ModeGoroutine, ModePool} {
		if _, err := r.Resolve(mode); err != nil {
			t.Errorf("mode %q should always be available: %v", mode, err)
		}
	}
	// Empty mode is the documented default.
	d, err := r.Resolve("")
	if err != nil {
		t.Fatalf("resolve default: %v", err)
	}
	if _, ok := d.(syncDispatcher); !ok {
		t.Fatalf("default mode resolved to %T, want sync", d)
	}
}

func TestUnknownModeListsAvailable(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve("carrier-pigeon")
	if err == nil {
		t.Fatal("expected error")
	}
	var ume *UnknownModeError
	if !errors.As(err, &ume) {
		t.Fatalf("error type %T", err)
	}
	if ume.Mode != "carrier-pigeon" {
		t.Fatalf("mode %q", ume.Mode)
	}
	// The listed names are exactly the registered ones.
	if len(ume.Available) != len(r.Modes()) {
		t.Fatalf("available %v vs modes %v", ume.Available, r.Modes())
	}
	for _, name := range ume.Available {
		if _, err := r.Resolve(name); err != nil {
			t.Errorf("advertised mode %q does not resolve: %v", name, err)
		}
	}
	if !strings.Contains(err.Error(), ModeSync) {
		t.Fatalf("message does not enumerate modes: %v", err)
	}
}

func TestProcessModeRequiresHelper(t *testing.T) {
	// With PATH pointing at an empty directory the helper cannot be found,
	// so the process mode must not be registered.
	t.Setenv("PATH", t.TempDir())
	r := NewRegistry()
	if _, err := r.Resolve(ModeProcess); err == nil {
		t.Fatal("process mode registered without helper on PATH")
	}

	// With a fake helper on PATH it appears.
	dir := t.TempDir()
	helper := filepath.Join(dir, processHelper)
	if err := os.WriteFile(helper, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write helper: %v", err)
	}
	t.Setenv("PATH", dir)
	r = NewRegistry()
	if _, err := r.Resolve(ModeProcess); err != nil {
		t.Fatalf("process mode missing with helper on PATH: %v", err)
	}
}

func TestSyncDispatchPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	err := syncDispatcher{}.Dispatch(func(Submission) error { return boom }, Submission{})
	if !errors.Is(err, boom) {
		t.Fatalf("sync dispatch returned %v, want boom", err)
	}
}

func TestGoroutineDispatchSwallowsErrors(t *testing.T) {
	done := make(chan struct{})
	err := goroutineDispatcher{}.Dispatch(func(Submission) error {
		close(done)
		return errors.New("lost")
	}, Submission{})
	if err != nil {
		t.Fatalf("goroutine dispatch returned %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("post never ran")
	}
}

func TestDefaultRegistryShared(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Fatal("DefaultRegistry built more than once")
	}
	d1, err := DefaultRegistry().Resolve(ModePool)
	if err != nil {
		t.Fatalf("resolve pool: %v", err)
	}
	d2, err := DefaultRegistry().Resolve(ModePool)
	if err != nil {
		t.Fatalf("resolve pool: %v", err)
	}
	if d1 != d2 {
		t.Fatal("pool dispatcher is not shared across resolutions")
	}
}

func TestPoolSharedAcrossClients(t *testing.T) {
	// Two independently resolved pool dispatchers must drain through one
	// process-wide pool, so total in-flight sends stay under the default
	// size no matter how many clients submit.
	const posts = 40

	d1, err := DefaultRegistry().Resolve(ModePool)
	if err != nil {
		t.Fatalf("resolve pool: %v", err)
	}
	d2, err := DefaultRegistry().Resolve(ModePool)
	if err != nil {
		t.Fatalf("resolve pool: %v", err)
	}

	var inFlight, peak int64
	var wg sync.WaitGroup
	wg.Add(posts)
	post := func(Submission) error {
		defer wg.Done()
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	}

	for i := 0; i < posts; i++ {
		d := d1
		if i%2 == 1 {
			d = d2
		}
		if err := d.Dispatch(post, Submission{}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}

	waited := make(chan struct{})
	go func() { wg.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(10 * time.Second):
		t.Fatal("pool never drained")
	}

	if got := atomic.LoadInt64(&peak); got > DefaultPoolSize {
		t.Fatalf("peak concurrency %d exceeds process-wide pool size %d", got, DefaultPoolSize)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	const posts = 24

	d := &poolDispatcher{pool: newWorkerPool(size)}

	var inFlight, peak int64
	var wg sync.WaitGroup
	wg.Add(posts)
	post := func(Submission) error {
		defer wg.Done()
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if cur <= old || atomic.CompareAndSwapInt64(&peak, old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return nil
	}

	for i := 0; i < posts; i++ {
		if err := d.Dispatch(post, Submission{}); err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
	}

	waited := make(chan struct{})
	go func() { wg.Wait(); close(waited) }()
	select {
	case <-waited:
	case <-time.After(10 * time.Second):
		t.Fatal("pool never drained")
	}

	if got := atomic.LoadInt64(&peak); got > size {
		t.Fatalf("peak concurrency %d exceeds pool size %d", got, size)
	}
}
