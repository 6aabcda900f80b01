package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"travelagency/internal/authz"
	"travelagency/internal/booking"
	"travelagency/internal/events"
	"travelagency/internal/job"
	"travelagency/internal/review"
	"travelagency/internal/user"
	"travelagency/internal/workflow"
)

type bookingResp struct {
	Booking booking.Booking `json:"booking"`
	Changed bool            `json:"changed"`
}

type reviewResp struct {
	Review  review.Review `json:"review"`
	Changed bool          `json:"changed"`
}

type applicationResp struct {
	Application job.Application `json:"application"`
	Changed     bool            `json:"changed"`
}

type postingResp struct {
	Posting job.Posting `json:"job"`
	Changed bool        `json:"changed"`
}

type userResp struct {
	User    user.User `json:"user"`
	Changed bool      `json:"changed"`
}

type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func (c *Client) Bookings(ctx context.Context, q url.Values) (Page[booking.Booking], error) {
	var out Page[booking.Booking]
	err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/admin/bookings", q), nil, &out)
	return out, err
}

func (c *Client) Booking(ctx context.Context, id string) (*booking.Booking, error) {
	var b booking.Booking
	if c.Cache.Get(ctx, events.KindBooking, id, &b) {
		return &b, nil
	}
	var out bookingResp
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/bookings/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, record(err, events.KindBooking, id)
	}
	c.Cache.Set(ctx, events.KindBooking, id, out.Booking)
	return &out.Booking, nil
}

// SetBookingStatus rejects an unknown status before any request is made.
func (c *Client) SetBookingStatus(ctx context.Context, id, status string) (*booking.Booking, bool, error) {
	st, err := workflow.ParseBookingStatus(status)
	if err != nil {
		return nil, false, err
	}
	var out bookingResp
	err = c.doJSON(ctx, http.MethodPatch, "/v1/admin/bookings/"+url.PathEscape(id)+"/status", map[string]string{"status": string(st)}, &out)
	c.Cache.Invalidate(ctx, events.KindBooking, id)
	if err != nil {
		return nil, false, record(err, events.KindBooking, id)
	}
	return &out.Booking, out.Changed, nil
}

func (c *Client) SetPaymentStatus(ctx context.Context, id, status string) (*booking.Booking, bool, error) {
	st, err := workflow.ParsePaymentStatus(status)
	if err != nil {
		return nil, false, err
	}
	var out bookingResp
	err = c.doJSON(ctx, http.MethodPatch, "/v1/admin/bookings/"+url.PathEscape(id)+"/payment-status", map[string]string{"paymentStatus": string(st)}, &out)
	c.Cache.Invalidate(ctx, events.KindBooking, id)
	if err != nil {
		return nil, false, record(err, events.KindBooking, id)
	}
	return &out.Booking, out.Changed, nil
}

// ExportBookings returns the CSV export for the given filters.
func (c *Client) ExportBookings(ctx context.Context, q url.Values) ([]byte, error) {
	var raw []byte
	err := c.doRaw(ctx, http.MethodGet, withQuery("/v1/admin/bookings/export", q), &raw)
	return raw, err
}

// ModerateReview applies APPROVE, REJECT or DELETE to a review.
func (c *Client) ModerateReview(ctx context.Context, id, action string) (*review.Review, bool, error) {
	a, err := workflow.ParseReviewAction(action)
	if err != nil {
		return nil, false, err
	}
	if a == workflow.ReviewDelete {
		return nil, true, c.DeleteReview(ctx, id)
	}
	var out reviewResp
	err = c.doJSON(ctx, http.MethodPost, "/v1/admin/reviews/"+url.PathEscape(id)+"/"+strings.ToLower(string(a)), nil, &out)
	c.Cache.Invalidate(ctx, events.KindReview, id)
	if err != nil {
		return nil, false, record(err, events.KindReview, id)
	}
	return &out.Review, out.Changed, nil
}

func (c *Client) DeleteReview(ctx context.Context, id string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/v1/admin/reviews/"+url.PathEscape(id), nil, nil)
	c.Cache.Invalidate(ctx, events.KindReview, id)
	return record(err, events.KindReview, id)
}

func (c *Client) Application(ctx context.Context, id string) (*job.Application, error) {
	var a job.Application
	if c.Cache.Get(ctx, events.KindApplication, id, &a) {
		return &a, nil
	}
	var out applicationResp
	if err := c.doJSON(ctx, http.MethodGet, "/v1/admin/applications/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, record(err, events.KindApplication, id)
	}
	c.Cache.Set(ctx, events.KindApplication, id, out.Application)
	return &out.Application, nil
}

// UpdateApplication sends only the fields that are set.
func (c *Client) UpdateApplication(ctx context.Context, id string, status, notes *string) (*job.Application, bool, error) {
	body := map[string]string{}
	if status != nil {
		st, err := workflow.ParseApplicationStatus(*status)
		if err != nil {
			return nil, false, err
		}
		body["status"] = string(st)
	}
	if notes != nil {
		body["notes"] = *notes
	}
	var out applicationResp
	err := c.doJSON(ctx, http.MethodPatch, "/v1/admin/applications/"+url.PathEscape(id), body, &out)
	c.Cache.Invalidate(ctx, events.KindApplication, id)
	if err != nil {
		return nil, false, record(err, events.KindApplication, id)
	}
	return &out.Application, out.Changed, nil
}

func (c *Client) SetPostingActive(ctx context.Context, id string, active bool) (*job.Posting, bool, error) {
	var out postingResp
	err := c.doJSON(ctx, http.MethodPatch, "/v1/admin/jobs/"+url.PathEscape(id)+"/active", map[string]bool{"isActive": active}, &out)
	c.Cache.Invalidate(ctx, events.KindJobPosting, id)
	if err != nil {
		return nil, false, record(err, events.KindJobPosting, id)
	}
	return &out.Posting, out.Changed, nil
}

func (c *Client) ChangeRole(ctx context.Context, id, role string) (*user.User, bool, error) {
	r, err := authz.ParseRole(role)
	if err != nil {
		return nil, false, err
	}
	var out userResp
	err = c.doJSON(ctx, http.MethodPatch, "/v1/admin/users/"+url.PathEscape(id)+"/role", map[string]string{"role": string(r)}, &out)
	c.Cache.Invalidate(ctx, events.KindUser, id)
	if err != nil {
		return nil, false, record(err, events.KindUser, id)
	}
	return &out.User, out.Changed, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
