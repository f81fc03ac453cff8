// Package lifecycle coordinates startup and shutdown hooks across systems
// and aggregates their readiness.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ReadinessChecker reports whether a subsystem can serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator runs startup hooks concurrently, then reports ready once they
// finish and every required checker agrees. Shutdown cancels Context and
// waits for shutdown hooks.
type Coordinator struct {
	ctx      context.Context
	cancel   context.CancelFunc
	startup  sync.WaitGroup
	shutdown sync.WaitGroup
	started  atomic.Bool

	mu       sync.Mutex
	checkers []ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{ctx: ctx, cancel: cancel}
}

// Context is cancelled when Shutdown begins.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup runs fn in its own goroutine.
func (c *Coordinator) OnStartup(fn func()) {
	c.startup.Go(fn)
}

// OnShutdown runs fn in its own goroutine. Hooks block on Context().Done()
// before cleaning up.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdown.Go(fn)
}

// Require adds checkers consulted by Ready.
func (c *Coordinator) Require(checkers ...ReadinessChecker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkers = append(c.checkers, checkers...)
}

// Ready reports whether startup finished and all required checkers are ready.
func (c *Coordinator) Ready() bool {
	if !c.started.Load() {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rc := range c.checkers {
		if !rc.Ready() {
			return false
		}
	}
	return true
}

// WaitForStartup blocks until every startup hook returns.
func (c *Coordinator) WaitForStartup() {
	c.startup.Wait()
	c.started.Store(true)
}

// Shutdown cancels Context and waits up to timeout for shutdown hooks.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdown.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return fmt.Errorf("shutdown timed out after %s", timeout)
	}
}
