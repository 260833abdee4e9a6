// Package telemetry buffers game telemetry in memory and delivers it to the
// hub backend in order-preserving batches. Delivery is best effort: batches
// are retried with exponential backoff a bounded number of times and then
// dropped, so telemetry can never become a cause of gameplay failure.
package telemetry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"iruka-hub/applog"
	"iruka-hub/protocol"
)

const (
	DefaultMaxBatch   = 50
	DefaultFlushEvery = 8 * time.Second
	DefaultMaxRetry   = 3
	DefaultRetryBase  = time.Second
)

type Config struct {
	MaxBatch   int
	FlushEvery time.Duration
	MaxRetry   int
	RetryBase  time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxBatch <= 0 {
		c.MaxBatch = DefaultMaxBatch
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = DefaultFlushEvery
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = DefaultMaxRetry
	}
	if c.RetryBase <= 0 {
		c.RetryBase = DefaultRetryBase
	}
	return c
}

// Sender delivers one batch to the backend.
type Sender interface {
	SendBatch(ctx context.Context, events []protocol.TelemetryEvent) error
}

type Queue struct {
	cfg    Config
	sender Sender

	mu         sync.Mutex
	events     []protocol.TelemetryEvent
	flushTimer *time.Timer
	retryTimer *time.Timer
	retryCount int
	inFlight   bool
	closed     bool
	wg         sync.WaitGroup
}

func New(cfg Config, sender Sender) *Queue {
	return &Queue{
		cfg:    cfg.withDefaults(),
		sender: sender,
	}
}

// Push appends an event to the queue. Reaching MaxBatch forces an immediate
// flush; otherwise a single flush timer is armed. Push never blocks on
// delivery.
func (q *Queue) Push(event protocol.TelemetryEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.events = append(q.events, event)

	if len(q.events) >= q.cfg.MaxBatch {
		q.stopFlushTimerLocked()
		q.startFlushLocked()
		return
	}

	if q.flushTimer == nil && q.retryTimer == nil {
		q.flushTimer = time.AfterFunc(q.cfg.FlushEvery, q.onFlushTimer)
	}
}

// Flush forces delivery of the currently queued events.
func (q *Queue) Flush() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopFlushTimerLocked()
	q.startFlushLocked()
}

// Clear empties the queue and disarms all timers. Used on session teardown.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = nil
	q.retryCount = 0
	q.stopFlushTimerLocked()
	q.stopRetryTimerLocked()
}

// Len reports how many events are currently queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// Close attempts one final delivery of whatever is queued and waits for any
// in-flight flush to settle. The queue accepts no events afterwards.
func (q *Queue) Close(ctx context.Context) {
	q.mu.Lock()
	q.closed = true
	q.stopFlushTimerLocked()
	q.stopRetryTimerLocked()
	remaining := q.events
	q.events = nil
	q.mu.Unlock()

	if len(remaining) > 0 {
		if err := q.sender.SendBatch(ctx, remaining); err != nil {
			applog.Warn("Dropping telemetry batch on close",
				zap.Int("events", len(remaining)),
				zap.Error(err),
			)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (q *Queue) onFlushTimer() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.flushTimer = nil
	q.startFlushLocked()
}

func (q *Queue) onRetryTimer() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retryTimer = nil
	q.startFlushLocked()
}

func (q *Queue) stopFlushTimerLocked() {
	if q.flushTimer != nil {
		q.flushTimer.Stop()
		q.flushTimer = nil
	}
}

func (q *Queue) stopRetryTimerLocked() {
	if q.retryTimer != nil {
		q.retryTimer.Stop()
		q.retryTimer = nil
	}
}

func (q *Queue) startFlushLocked() {
	if q.inFlight || q.closed || len(q.events) == 0 {
		return
	}

	n := len(q.events)
	if n > q.cfg.MaxBatch {
		n = q.cfg.MaxBatch
	}

	batch := make([]protocol.TelemetryEvent, n)
	copy(batch, q.events)
	q.events = q.events[n:]

	q.inFlight = true
	q.wg.Add(1)
	go q.deliver(batch)
}

func (q *Queue) deliver(batch []protocol.TelemetryEvent) {
	defer q.wg.Done()

	err := q.sender.SendBatch(context.Background(), batch)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.inFlight = false

	if err == nil {
		q.retryCount = 0
		if q.closed {
			return
		}
		if len(q.events) >= q.cfg.MaxBatch {
			q.startFlushLocked()
		} else if len(q.events) > 0 && q.flushTimer == nil && q.retryTimer == nil {
			q.flushTimer = time.AfterFunc(q.cfg.FlushEvery, q.onFlushTimer)
		}
		return
	}

	q.retryCount++
	if q.retryCount >= q.cfg.MaxRetry {
		applog.Warn("Dropping telemetry batch after exhausting retries",
			zap.Int("events", len(batch)),
			zap.Int("attempts", q.retryCount),
			zap.Error(err),
		)
		q.retryCount = 0
		return
	}

	// Put the failed batch back in front so delivery order survives retries.
	merged := make([]protocol.TelemetryEvent, 0, len(batch)+len(q.events))
	merged = append(merged, batch...)
	merged = append(merged, q.events...)
	q.events = merged

	if q.closed {
		return
	}

	delay := q.cfg.RetryBase << (q.retryCount - 1)
	applog.Debug("Telemetry batch delivery failed, scheduling retry",
		zap.Int("attempt", q.retryCount),
		zap.Duration("delay", delay),
		zap.Error(err),
	)
	q.retryTimer = time.AfterFunc(delay, q.onRetryTimer)
}
