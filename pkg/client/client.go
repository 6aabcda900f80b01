package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travelagency/pkg/apperr"
	"travelagency/pkg/cache"
	"travelagency/pkg/retry"
)

// Client talks to the admin API. Single-record reads go through Cache and
// every mutation through the client invalidates the record it touched.
type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	Retry      retry.Policy
	Cache      cache.Records
}

func New(baseURL, token string, policy retry.Policy) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		Retry:      policy,
		Cache:      cache.NewMemory(),
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
		Value   string `json:"value"`
	} `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) error {
	var payload []byte
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		payload = b
	}

	var raw []byte
	op := method + " " + path
	err := retry.Do(ctx, c.Retry, op, func(ctx context.Context) error {
		b, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}
		raw = b
		return nil
	})
	if err != nil {
		return err
	}

	if respBody != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respBody); err != nil {
			return fmt.Errorf("decode %s response failed: %w", op, err)
		}
	}
	return nil
}

// doRaw is doJSON for non-JSON responses such as the CSV export.
func (c *Client) doRaw(ctx context.Context, method, path string, out *[]byte) error {
	return retry.Do(ctx, c.Retry, method+" "+path, func(ctx context.Context) error {
		b, err := c.send(ctx, method, path, nil)
		if err != nil {
			return err
		}
		*out = b
		return nil
	})
}

// send performs one attempt. Transport failures come back as
// TransientNetworkError; HTTP status failures never do.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	hc := c.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 20 * time.Second}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := hc.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, &apperr.TransientNetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransientNetworkError{Op: method + " " + path, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, statusError(method+" "+path, resp.StatusCode, b)
	}
	return b, nil
}

// statusError maps an error envelope back onto the typed error it came from.
func statusError(op string, status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)
	e := env.Error
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusUnauthorized:
		return apperr.Unauthenticated()
	case status == http.StatusForbidden:
		return &apperr.AuthorizationError{Action: op}
	case status == http.StatusNotFound:
		return &apperr.NotFoundError{Kind: "resource"}
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		return &apperr.ValidationError{Code: e.Code, Field: e.Field, Value: e.Value, Message: e.Message}
	default:
		return &apperr.ServerError{Status: status, Message: fmt.Sprintf("%s: status=%d %s", op, status, e.Message)}
	}
}

// record names a NotFoundError after the record that was asked for.
func record(err error, kind, id string) error {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return apperr.NotFound(kind, id)
	}
	return err
}
