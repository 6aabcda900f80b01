package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"travelagency/pkg/logger"
)

var (
	ErrQueueFull = errors.New("event queue full")
	ErrClosed    = errors.New("event publisher closed")
)

// Async queues events for a single background sender so a slow or
// unreachable broker never holds up the request that produced them. When
// the queue is full the event is dropped and Publish reports ErrQueueFull.
type Async struct {
	next    Publisher
	log     logger.Logger
	timeout time.Duration
	queue   chan any
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync starts the sender. Each event gets at most timeout to reach next.
func NewAsync(next Publisher, log logger.Logger, size int, timeout time.Duration) *Async {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	a := &Async{
		next:    next,
		log:     log,
		timeout: timeout,
		queue:   make(chan any, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish never blocks. ctx is not used because the event outlives the
// request that produced it.
func (a *Async) Publish(_ context.Context, v any) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrClosed
	}
	select {
	case a.queue <- v:
		return nil
	default:
		return ErrQueueFull
	}
}

func (a *Async) run() {
	defer close(a.done)
	for v := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		if err := a.next.Publish(ctx, v); err != nil {
			a.log.Warn("deliver event failed", "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits until the queue drains or ctx ends.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
