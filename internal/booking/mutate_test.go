package booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"travelagency/internal/api"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/workflow"
	"travelagency/pkg/db/dbtest"
	"travelagency/pkg/logger"
)

type cacheSpy struct {
	mu          sync.Mutex
	invalidated []string
}

func (c *cacheSpy) Get(context.Context, string, string, any) bool { return false }
func (c *cacheSpy) Set(context.Context, string, string, any)      {}
func (c *cacheSpy) Invalidate(_ context.Context, kind, id string) {
	c.mu.Lock()
	c.invalidated = append(c.invalidated, kind+"/"+id)
	c.mu.Unlock()
}

type publisherSpy struct {
	mu   sync.Mutex
	sent []events.StatusChanged
}

func (p *publisherSpy) Publish(_ context.Context, v any) error {
	p.mu.Lock()
	p.sent = append(p.sent, v.(events.StatusChanged))
	p.mu.Unlock()
	return nil
}

// bookingRow returns the columns of a TOUR booking in the given states.
func bookingRow(status workflow.BookingStatus, payment workflow.PaymentStatus) []any {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []any{
		testID, "c-1", "Ada", "ada@example.com", string(PackageTour), "t-1", "Kyoto Spring",
		time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC), 2, "2400.00", "USD",
		string(status), string(payment), "", created, created,
	}
}

func newMutationFixture(status workflow.BookingStatus, payment workflow.PaymentStatus) (*dbtest.Pool, *cacheSpy, *publisherSpy, http.Handler) {
	updated := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	pool := dbtest.NewPool(func(sql string, _ []any) []any {
		switch {
		case strings.Contains(sql, "FOR UPDATE OF b"):
			return bookingRow(status, payment)
		case strings.Contains(sql, "UPDATE bookings"):
			return []any{updated}
		}
		return nil
	})
	c := &cacheSpy{}
	p := &publisherSpy{}
	h := Handlers{
		DB:        pool,
		Cache:     c,
		Log:       logger.Nop(),
		Publisher: p,
		Rules:     workflow.DefaultRules(),
	}
	r := chi.NewRouter()
	r.Patch("/bookings/{id}/status", h.PatchStatus)
	r.Patch("/bookings/{id}/payment-status", h.PatchPaymentStatus)
	return pool, c, p, r
}

func send(t *testing.T, h http.Handler, path, body string) (*httptest.ResponseRecorder, Booking, bool) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	req = req.WithContext(api.WithIdentity(req.Context(), &api.Identity{UserID: "a-1", Role: authz.RoleAdmin}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var resp struct {
		Booking Booking `json:"booking"`
		Changed bool    `json:"changed"`
	}
	if rr.Code == http.StatusOK {
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rr, resp.Booking, resp.Changed
}

func TestPatchStatus_SameStatusWritesNothing(t *testing.T) {
	pool, c, p, h := newMutationFixture(workflow.BookingConfirmed, workflow.PaymentPending)

	rr, b, changed := send(t, h, "/bookings/"+testID+"/status", `{"status":"CONFIRMED"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if changed {
		t.Fatalf("expected changed=false")
	}
	if b.BookingStatus != workflow.BookingConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", b.BookingStatus)
	}
	if got := pool.Tx.Matching("UPDATE bookings"); len(got) != 0 {
		t.Fatalf("expected no update, got %v", got)
	}
	if got := pool.Tx.Matching("INSERT INTO"); len(got) != 0 {
		t.Fatalf("expected no inserts, got %v", got)
	}
	if len(c.invalidated) != 0 {
		t.Fatalf("expected no cache invalidation, got %v", c.invalidated)
	}
	if len(p.sent) != 0 {
		t.Fatalf("expected no published events, got %d", len(p.sent))
	}
}

func TestPatchPaymentStatus_ChangeIsRecordedOnce(t *testing.T) {
	pool, c, p, h := newMutationFixture(workflow.BookingConfirmed, workflow.PaymentPending)

	rr, b, changed := send(t, h, "/bookings/"+testID+"/payment-status", `{"paymentStatus":"PAID"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !changed {
		t.Fatalf("expected changed=true")
	}
	if b.PaymentStatus != workflow.PaymentPaid || b.BookingStatus != workflow.BookingConfirmed {
		t.Fatalf("expected CONFIRMED/PAID, got %s/%s", b.BookingStatus, b.PaymentStatus)
	}
	if !pool.Tx.Committed {
		t.Fatalf("expected commit")
	}
	if len(pool.Tx.Matching("UPDATE bookings", "payment_status")) != 1 {
		t.Fatalf("expected one payment update, got %v", pool.Tx.Statements)
	}
	for _, table := range []string{"audit_logs", "record_events", "admin_actions"} {
		if n := len(pool.Tx.Matching("INSERT INTO " + table)); n != 1 {
			t.Fatalf("expected one insert into %s, got %d", table, n)
		}
	}
	if len(c.invalidated) != 1 || c.invalidated[0] != events.KindBooking+"/"+testID {
		t.Fatalf("expected one invalidation of the booking, got %v", c.invalidated)
	}
	if len(p.sent) != 1 {
		t.Fatalf("expected one published event, got %d", len(p.sent))
	}
	ev := p.sent[0]
	if ev.Field != "paymentStatus" || ev.From != "PENDING" || ev.To != "PAID" {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestPatchStatus_UnknownBookingRollsBack(t *testing.T) {
	pool, c, p, h := newMutationFixture(workflow.BookingPending, workflow.PaymentPending)
	pool.Tx.Rows = func(string, []any) []any { return nil }

	rr, _, _ := send(t, h, "/bookings/"+testID+"/status", `{"status":"CANCELLED"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if pool.Tx.Committed || !pool.Tx.RolledBack {
		t.Fatalf("expected rollback")
	}
	if len(c.invalidated) != 0 || len(p.sent) != 0 {
		t.Fatalf("expected no side effects")
	}
}
