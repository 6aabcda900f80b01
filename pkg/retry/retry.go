package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"travelagency/pkg/apperr"
	"travelagency/pkg/config"
)

// Policy is a capped exponential backoff. MaxAttempts <= 1 disables retrying.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry is called before each wait; optional.
	OnRetry func(op string, attempt int, err error)
}

func FromConfig(c config.RetryConfig) Policy {
	return Policy{MaxAttempts: c.MaxAttempts, BaseDelay: c.BaseDelay, MaxDelay: c.MaxDelay}
}

// Delay returns the wait before attempt n+1, given n failed attempts (n >= 1).
func (p Policy) Delay(n int) time.Duration {
	if p.BaseDelay <= 0 || n < 1 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do runs fn until it succeeds, returns a non-transient error, the attempts
// are exhausted or ctx is done. The last error is returned.
func Do(ctx context.Context, p Policy, op string, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for n := 1; ; n++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if n >= attempts || ctx.Err() != nil || !IsTransient(err) {
			return err
		}

		if p.OnRetry != nil {
			p.OnRetry(op, n, err)
		}

		wait := p.Delay(n)
		if wait <= 0 {
			continue
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

// IsTransient reports whether err is a timeout or connection failure.
// HTTP status errors, validation and authorization errors are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var transErr *apperr.TransientNetworkError
	if errors.As(err, &transErr) {
		return true
	}

	var (
		valErr  *apperr.ValidationError
		authErr *apperr.AuthorizationError
		nfErr   *apperr.NotFoundError
		srvErr  *apperr.ServerError
	)
	if errors.As(err, &valErr) || errors.As(err, &authErr) || errors.As(err, &nfErr) || errors.As(err, &srvErr) {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
