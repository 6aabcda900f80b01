package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"travelagency/pkg/apperr"
)

func TestDelay_CappedExponential(t *testing.T) {
	p := Policy{MaxAttempts: 6, BaseDelay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond}

	want := []time.Duration{100, 200, 400, 500, 500}
	for i, w := range want {
		if got := p.Delay(i + 1); got != w*time.Millisecond {
			t.Fatalf("delay(%d): expected %s, got %s", i+1, w*time.Millisecond, got)
		}
	}
}

func TestDo_RetriesConnectionFailures(t *testing.T) {
	p := Policy{MaxAttempts: 3}
	calls := 0
	err := Do(context.Background(), p, "ping", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	p := Policy{MaxAttempts: 2}
	calls := 0
	err := Do(context.Background(), p, "ping", func(ctx context.Context) error {
		calls++
		return &apperr.TransientNetworkError{Op: "ping", Err: errors.New("timeout")}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDo_NeverRetriesServerOrValidationErrors(t *testing.T) {
	p := Policy{MaxAttempts: 5}
	for _, e := range []error{
		&apperr.ServerError{Status: 503, Message: "unavailable"},
		apperr.Invalid("status", "SHIPPED", "unknown booking status: SHIPPED"),
		apperr.Forbidden("CUSTOMER", "update booking status"),
	} {
		calls := 0
		_ = Do(context.Background(), p, "patch", func(ctx context.Context) error {
			calls++
			return e
		})
		if calls != 1 {
			t.Fatalf("%v: expected a single call, got %d", e, calls)
		}
	}
}

func TestDo_DisabledPolicyRunsOnce(t *testing.T) {
	calls := 0
	_ = Do(context.Background(), Policy{MaxAttempts: 0}, "ping", func(ctx context.Context) error {
		calls++
		return syscall.ECONNRESET
	})
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := Policy{MaxAttempts: 5, BaseDelay: time.Hour}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, p, "ping", func(ctx context.Context) error {
			calls++
			return syscall.ECONNREFUSED
		})
	}()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected error")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Do did not return after cancel")
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(fmt.Errorf("query: %w", context.DeadlineExceeded)) {
		t.Fatalf("deadline exceeded should be transient")
	}
	if IsTransient(context.Canceled) {
		t.Fatalf("cancellation should not be transient")
	}
	if IsTransient(errors.New("duplicate key value")) {
		t.Fatalf("plain errors should not be transient")
	}
}
