package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"travelagency/pkg/logger"
)

// stalledBroker blocks every Publish until release is closed or the
// per-event deadline passes.
type stalledBroker struct {
	started chan struct{}
	release chan struct{}

	mu   sync.Mutex
	errs []error
}

func newStalledBroker() *stalledBroker {
	return &stalledBroker{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *stalledBroker) Publish(ctx context.Context, _ any) error {
	b.started <- struct{}{}
	var err error
	select {
	case <-b.release:
	case <-ctx.Done():
		err = ctx.Err()
	}
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
	return err
}

func (b *stalledBroker) results() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]error(nil), b.errs...)
}

func within(t *testing.T, d time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("call did not return within %s", d)
	}
}

func TestNotify_DoesNotWaitForStalledBroker(t *testing.T) {
	b := newStalledBroker()
	a := NewAsync(b, logger.Nop(), 4, time.Minute)
	defer func() {
		close(b.release)
		_ = a.Close(context.Background())
	}()

	within(t, time.Second, func() {
		Notify(context.Background(), a, logger.Nop(), StatusChanged{RecordKind: KindBooking, RecordID: "b-1", Field: "bookingStatus", To: "CONFIRMED"})
	})
	<-b.started
}

func TestAsync_FullQueueDropsEvent(t *testing.T) {
	b := newStalledBroker()
	a := NewAsync(b, logger.Nop(), 1, time.Minute)
	defer func() {
		close(b.release)
		_ = a.Close(context.Background())
	}()

	if err := a.Publish(context.Background(), "first"); err != nil {
		t.Fatalf("first: %v", err)
	}
	<-b.started
	if err := a.Publish(context.Background(), "second"); err != nil {
		t.Fatalf("second: %v", err)
	}
	var err error
	within(t, time.Second, func() { err = a.Publish(context.Background(), "third") })
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}

func TestAsync_EachEventHasDeadline(t *testing.T) {
	b := newStalledBroker()
	a := NewAsync(b, logger.Nop(), 4, 20*time.Millisecond)

	for i := 0; i < 2; i++ {
		if err := a.Publish(context.Background(), i); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}

	errs := b.results()
	if len(errs) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(errs))
	}
	for _, err := range errs {
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	}
}

func TestAsync_CloseDrainsQueue(t *testing.T) {
	b := newStalledBroker()
	close(b.release)
	a := NewAsync(b, logger.Nop(), 8, time.Minute)
	for i := 0; i < 5; i++ {
		if err := a.Publish(context.Background(), i); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := len(b.results()); n != 5 {
		t.Fatalf("expected 5 deliveries, got %d", n)
	}
	if err := a.Publish(context.Background(), "late"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestAsync_CloseGivesUpWithContext(t *testing.T) {
	b := newStalledBroker()
	a := NewAsync(b, logger.Nop(), 2, time.Minute)
	defer close(b.release)

	if err := a.Publish(context.Background(), "stuck"); err != nil {
		t.Fatalf("publish: %v", err)
	}
	<-b.started
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := a.Close(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
