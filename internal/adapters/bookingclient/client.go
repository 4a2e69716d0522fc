// Package bookingclient talks to the reservation HTTP API with client-side
// rate limiting and retries.
package bookingclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/domain"
)

type Client struct {
	base string
	hc   *http.Client
	rl   *rate.Limiter
}

func New(base string, rps int) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("API base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Wire types ----

type CreateRequest struct {
	GuestName  string `json:"guest_name" yaml:"guest_name"`
	GuestEmail string `json:"guest_email" yaml:"guest_email"`
	CheckIn    string `json:"check_in" yaml:"check_in"`
	CheckOut   string `json:"check_out" yaml:"check_out"`
	RoomType   string `json:"room_type" yaml:"room_type"`
}

type Reservation struct {
	ID         string `json:"id"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	Nights     int    `json:"nights"`
	RoomType   string `json:"room_type"`
	TotalPrice string `json:"total_price"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type Route struct {
	Path     []string `json:"path"`
	Distance float64  `json:"distance"`
}

// APIError is a problem response. It unwraps to the matching domain sentinel.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s", e.Status, e.Title)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Title == "No Path":
		return domain.ErrNoPath
	case e.Title == "Invalid Reservation":
		return domain.ErrInvalidReservation
	case e.Title == "Invalid Transition":
		return domain.ErrInvalidTransition
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusConflict:
		return domain.ErrDuplicate
	case e.Status == http.StatusBadRequest:
		return domain.ErrInvalidArgument
	}
	return nil
}

// ---- Public API ----

// Create books a reservation. POSTs are only retried when the server refused
// them outright (429), never after a 5xx.
func (c *Client) Create(ctx context.Context, req CreateRequest) (Reservation, error) {
	var out Reservation
	return out, c.do(ctx, http.MethodPost, "/v1/reservations", req, &out, false)
}

func (c *Client) Get(ctx context.Context, id string) (Reservation, error) {
	var out Reservation
	return out, c.do(ctx, http.MethodGet, "/v1/reservations/"+url.PathEscape(id), nil, &out, true)
}

// Transition runs one lifecycle action: confirm, check-in, complete or cancel.
func (c *Client) Transition(ctx context.Context, id, action string) (Reservation, error) {
	var out Reservation
	path := "/v1/reservations/" + url.PathEscape(id) + "/" + url.PathEscape(action)
	return out, c.do(ctx, http.MethodPost, path, nil, &out, false)
}

// Quote returns the plain-text price breakdown.
func (c *Client) Quote(ctx context.Context, roomType, checkIn, checkOut string) (string, error) {
	q := url.Values{"room_type": {roomType}, "check_in": {checkIn}, "check_out": {checkOut}, "format": {"text"}}
	var out string
	return out, c.do(ctx, http.MethodGet, "/v1/quotes?"+q.Encode(), nil, &out, true)
}

// AvailabilityReport returns the plain-text availability report.
func (c *Client) AvailabilityReport(ctx context.Context, checkIn, checkOut string) (string, error) {
	q := url.Values{"check_in": {checkIn}, "check_out": {checkOut}, "format": {"text"}}
	var out string
	return out, c.do(ctx, http.MethodGet, "/v1/availability?"+q.Encode(), nil, &out, true)
}

func (c *Client) ShortestPath(ctx context.Context, from, to string) (Route, error) {
	q := url.Values{"from": {from}, "to": {to}}
	var out Route
	return out, c.do(ctx, http.MethodGet, "/v1/routes/shortest?"+q.Encode(), nil, &out, true)
}

// ---- Internals ----

// do performs one call with client-side rate limiting and retries. A *string
// out receives the raw body; anything else is JSON-decoded. Retries on 429
// always, and on transient 5xx and network errors when idempotent, honoring
// Retry-After when provided.
func (c *Client) do(ctx context.Context, method, path string, in, out any, idempotent bool) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	var payload []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		payload = b
	}
	endpoint := method + " " + strings.SplitN(path, "?", 2)[0]

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
		if err != nil {
			return err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "bookingctl/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("bookingmx", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if idempotent && i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("bookingmx", endpoint, resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusNoContent || out == nil {
				_, _ = io.Copy(io.Discard, resp.Body)
				return nil
			}
			if s, ok := out.(*string); ok {
				b, err := io.ReadAll(resp.Body)
				*s = strings.TrimRight(string(b), "\n")
				return err
			}
			return json.NewDecoder(resp.Body).Decode(out)

		case resp.StatusCode == http.StatusTooManyRequests ||
			(idempotent && (resp.StatusCode == http.StatusBadGateway ||
				resp.StatusCode == http.StatusServiceUnavailable ||
				resp.StatusCode == http.StatusGatewayTimeout ||
				resp.StatusCode == http.StatusInternalServerError)):
			// prefer server-provided Retry-After; otherwise exponential backoff
			wait := retryAfter(resp)
			lastErr = readProblem(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return readProblem(resp)
		}
	}
	return lastErr
}

// readProblem turns an error response into an *APIError and closes the body.
func readProblem(resp *http.Response) error {
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	e := &APIError{Status: resp.StatusCode, Title: http.StatusText(resp.StatusCode)}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/problem+json") {
		_ = json.Unmarshal(b, e)
		e.Status = resp.StatusCode
	} else if s := strings.TrimSpace(string(b)); s != "" {
		e.Detail = s
	}
	return e
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 200ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}

// IsRetryable reports whether err is worth retrying at a higher level.
func IsRetryable(err error) bool {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status == http.StatusTooManyRequests || ae.Status >= 500
	}
	return err != nil && !errors.Is(err, context.Canceled)
}
