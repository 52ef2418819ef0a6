// Package loglet is the client library for the loglet logging service.
//
// A Client submits messages to one log:
//
//	c, err := loglet.New(loglet.Options{Mode: loglet.ModeGoroutine})
//	if err != nil { /* handle */ }
//	_ = c.Submit("deploy finished", 20)
//	fmt.Println(c.URL())
//
// Leaving Options.LogID empty creates a fresh log with a blocking request
// during New. The delivery mode picks how sends execute: "sync" blocks and
// returns failures; "goroutine" spawns one goroutine per send; "process"
// spawns the loglet helper binary (registered only when it is on PATH);
// "pool" shares a fixed pool of 15 send workers and is the only mode with
// bounded concurrency. All asynchronous modes are best-effort: once a send
// is scheduled its failure is dropped.
//
// The library also integrates with the standard structured logger:
//
//	logger := slog.New(loglet.NewHandler(c, slog.LevelInfo))
//	logger.Warn("disk filling", "free_gb", 3)
package loglet
