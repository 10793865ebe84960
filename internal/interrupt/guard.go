// Package interrupt defers termination signals while a multi-step write
// sequence is running, so the secret store, launcher and shell profile are
// never left half-updated relative to each other.
package interrupt

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Guard tracks critical sections and the signal that arrived during one.
type Guard struct {
	mu      sync.Mutex
	depth   int
	pending os.Signal
	exit    func(code int)
	out     io.Writer
}

// New returns a Guard that calls exit to terminate and writes notices to
// out. Pass os.Exit and os.Stderr outside tests.
func New(exit func(code int), out io.Writer) *Guard {
	if out == nil {
		out = io.Discard
	}
	return &Guard{exit: exit, out: out}
}

// Install traps SIGINT and SIGTERM until ctx is cancelled or the returned
// stop function is called.
func (g *Guard) Install(ctx context.Context) (stop func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Listen(ctx, sigCh)
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}

// Listen handles signals from sigs until ctx is done.
func (g *Guard) Listen(ctx context.Context, sigs <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigs:
			g.Handle(sig)
		}
	}
}

// Handle exits immediately outside a critical section. Inside one, the
// signal is remembered and the exit happens when the section ends.
func (g *Guard) Handle(sig os.Signal) {
	g.mu.Lock()
	if g.depth > 0 {
		first := g.pending == nil
		g.pending = sig
		g.mu.Unlock()
		if first {
			fmt.Fprintln(g.out, "interrupt received; finishing the current update before exiting")
		}
		slog.Warn("signal deferred during critical operation", "signal", sig)
		return
	}
	g.mu.Unlock()
	g.exit(ExitCode(sig))
}

// Run executes fn as a critical section. Sections nest; a deferred signal
// is acted on when the outermost one returns.
func (g *Guard) Run(fn func() error) error {
	g.mu.Lock()
	g.depth++
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.depth--
		sig := g.pending
		if g.depth == 0 {
			g.pending = nil
		}
		depth := g.depth
		g.mu.Unlock()

		if depth == 0 && sig != nil {
			g.exit(ExitCode(sig))
		}
	}()

	return fn()
}

// InCritical reports whether a critical section is running.
func (g *Guard) InCritical() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.depth > 0
}

// ExitCode follows the shell convention of 128 + signal number.
func ExitCode(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
