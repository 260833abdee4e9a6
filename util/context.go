package util

import (
	"context"
	"sync"
	"time"
)

// ShutdownGrace yields a context that survives its canceled parent for a
// bounded window, so teardown work (final telemetry flush, socket close)
// can finish after the process got its stop signal.
type ShutdownGrace struct {
	ctx      context.Context
	cancel   context.CancelFunc
	finished chan struct{}
	once     sync.Once
}

func NewShutdownGrace(parent context.Context, maxDelay time.Duration) *ShutdownGrace {
	g := &ShutdownGrace{
		finished: make(chan struct{}),
	}
	g.ctx, g.cancel = context.WithCancel(context.Background())

	go func() {
		<-parent.Done()

		timer := time.NewTimer(maxDelay)
		defer timer.Stop()
		select {
		case <-g.finished:
		case <-timer.C:
		}
		g.cancel()
	}()

	return g
}

// Context is canceled maxDelay after the parent dies, or as soon as Finish
// is called following the parent's death.
func (g *ShutdownGrace) Context() context.Context {
	return g.ctx
}

// Finish marks the teardown work complete. Safe to call more than once.
func (g *ShutdownGrace) Finish() {
	g.once.Do(func() {
		close(g.finished)
	})
}
