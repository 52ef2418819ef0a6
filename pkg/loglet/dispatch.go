package loglet

import (
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Delivery mode names.
const (
	ModeSync      = "sync"
	ModeGoroutine = "goroutine"
	ModeProcess   = "process"
	ModePool      = "pool"
)

// DefaultPoolSize bounds concurrent sends under ModePool.
const DefaultPoolSize = 15

// processHelper is the binary the process mode spawns per send. The mode
// is only registered when it can be found on PATH.
const processHelper = "loglet"

// Submission carries everything a detached worker needs to perform one
// message post, so it can cross a process boundary.
type Submission struct {
	BaseURL string
	LogID   string
	Message string
	Level   int
}

// PostFunc performs one submission.
type PostFunc func(Submission) error

// Dispatcher executes a submission under one delivery discipline.
// Implementations other than the synchronous one are fire-and-forget:
// Dispatch returns once the work is scheduled, and send failures are
// dropped. There is no join, cancellation, or timeout on scheduled work.
type Dispatcher interface {
	Dispatch(post PostFunc, sub Submission) error
}

// UnknownModeError reports a delivery mode name that is not registered in
// the current environment.
type UnknownModeError struct {
	Mode      string
	Available []string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("loglet: no such mode %q; choose one of %s",
		e.Mode, strings.Join(e.Available, ", "))
}

// Registry maps delivery mode names to dispatchers. It is built once from
// capability checks and immutable afterwards.
type Registry struct {
	modes map[string]Dispatcher
	names []string
}

// defaultRegistry is built on first use and shared by every Client, so
// the pool mode's backpressure bounds in-flight sends for the whole
// process rather than per client.
var defaultRegistry = sync.OnceValue(NewRegistry)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry { return defaultRegistry() }

// NewRegistry builds the registry for the current environment. Sync,
// goroutine, and pool modes are always available; the process mode is
// registered only when the helper binary is on PATH.
func NewRegistry() *Registry {
	modes := map[string]Dispatcher{
		ModeSync:      syncDispatcher{},
		ModeGoroutine: goroutineDispatcher{},
		ModePool:      &poolDispatcher{pool: newWorkerPool(DefaultPoolSize)},
	}
	if helper, err := exec.LookPath(processHelper); err == nil {
		modes[ModeProcess] = &processDispatcher{helper: helper}
	}

	names := make([]string, 0, len(modes))
	for name := range modes {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{modes: modes, names: names}
}

// Resolve returns the dispatcher for name. The empty name resolves to the
// sync mode. Unknown names fail with an UnknownModeError enumerating the
// registered modes.
func (r *Registry) Resolve(name string) (Dispatcher, error) {
	if name == "" {
		name = ModeSync
	}
	d, ok := r.modes[name]
	if !ok {
		return nil, &UnknownModeError{Mode: name, Available: r.Modes()}
	}
	return d, nil
}

// Modes returns the registered mode names, sorted.
func (r *Registry) Modes() []string {
	return append([]string(nil), r.names...)
}

// syncDispatcher runs the post in the caller's control flow; failures
// propagate.
type syncDispatcher struct{}

func (syncDispatcher) Dispatch(post PostFunc, sub Submission) error {
	return post(sub)
}

// goroutineDispatcher runs each post on its own goroutine.
type goroutineDispatcher struct{}

func (goroutineDispatcher) Dispatch(post PostFunc, sub Submission) error {
	go func() { _ = post(sub) }()
	return nil
}

// processDispatcher spawns the helper binary for each post. Highest
// isolation, highest per-send cost; the child is never waited on.
type processDispatcher struct {
	helper string
}

func (d *processDispatcher) Dispatch(_ PostFunc, sub Submission) error {
	cmd := exec.Command(d.helper, "post", sub.LogID,
		"--url", sub.BaseURL,
		"--level", strconv.Itoa(sub.Level),
		"--message", sub.Message,
	)
	_ = cmd.Start()
	if cmd.Process != nil {
		// Reap in the background so the child doesn't linger as a zombie.
		go func() { _ = cmd.Wait() }()
	}
	return nil
}

// poolDispatcher schedules posts onto a shared fixed-size worker pool.
// This is the one mode with backpressure: past the pool size, submissions
// queue for a free worker instead of spawning more concurrency.
type poolDispatcher struct {
	pool *workerPool
}

func (d *poolDispatcher) Dispatch(post PostFunc, sub Submission) error {
	d.pool.submit(task{post: post, sub: sub})
	return nil
}

type task struct {
	post PostFunc
	sub  Submission
}

// workerPool is a lazily started pool of send workers. Workers run for
// the life of the process once started.
type workerPool struct {
	size  int
	once  sync.Once
	tasks chan task
}

func newWorkerPool(size int) *workerPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &workerPool{size: size, tasks: make(chan task, 4*size)}
}

func (p *workerPool) submit(t task) {
	p.once.Do(func() {
		for i := 0; i < p.size; i++ {
			go func() {
				for t := range p.tasks {
					_ = t.post(t.sub)
				}
			}()
		}
	})
	p.tasks <- t
}
