package bookingclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bookingmx/internal/adapters/bookingclient"
	"bookingmx/internal/domain"
)

func TestClient_Get_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(503)
		default:
			if r.URL.Path != "/v1/reservations/r-9" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "r-9", "status": "PENDING"})
		}
	}))
	defer ts.Close()

	cl, err := bookingclient.New(ts.URL+"/", 100) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	got, err := cl.Get(ctx, "r-9")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != "r-9" || got.Status != "PENDING" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) != 3 {
		t.Fatalf("expected 3 calls due to retries, got %d", hits)
	}
}

func TestClient_Create_NoRetryOn5xx(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(500)
	}))
	defer ts.Close()

	cl, _ := bookingclient.New(ts.URL, 100)
	_, err := cl.Create(context.Background(), bookingclient.CreateRequest{GuestName: "Ana"})
	var ae *bookingclient.APIError
	if !errors.As(err, &ae) || ae.Status != 500 {
		t.Fatalf("expected APIError 500, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("POST retried after 5xx: %d calls", hits)
	}
	if !bookingclient.IsRetryable(err) {
		t.Fatalf("5xx should be retryable at a higher level")
	}
}

func TestClient_Create_RetryAfter429(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		var req bookingclient.CreateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "new", "guest_name": req.GuestName})
	}))
	defer ts.Close()

	cl, _ := bookingclient.New(ts.URL, 100)
	got, err := cl.Create(context.Background(), bookingclient.CreateRequest{GuestName: "Ana"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.ID != "new" || got.GuestName != "Ana" {
		t.Fatalf("body not resent on retry: %+v", got)
	}
}

func TestClient_ProblemMapsToSentinel(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"type":"about:blank","title":"Invalid Transition","status":409,"detail":"Only pending reservations can be confirmed"}`)
	}))
	defer ts.Close()

	cl, _ := bookingclient.New(ts.URL, 100)
	_, err := cl.Transition(context.Background(), "r-1", "confirm")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err.Error() != "409 Invalid Transition: Only pending reservations can be confirmed" {
		t.Fatalf("message = %q", err.Error())
	}
	if bookingclient.IsRetryable(err) {
		t.Fatalf("409 must not be retryable")
	}
}

func TestClient_TextAndRoute(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/quotes":
			if r.URL.Query().Get("format") != "text" || r.URL.Query().Get("room_type") != "SUITE" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, "Price Quote\n")
		case "/v1/routes/shortest":
			_ = json.NewEncoder(w).Encode(map[string]any{"path": []string{"A", "B"}, "distance": 100})
		default:
			w.Header().Set("Content-Type", "application/problem+json")
			w.WriteHeader(404)
			_, _ = io.WriteString(w, `{"title":"No Path","status":404}`)
		}
	}))
	defer ts.Close()
	cl, _ := bookingclient.New(ts.URL, 100)
	ctx := context.Background()

	q, err := cl.Quote(ctx, "SUITE", "2026-06-20", "2026-06-22")
	if err != nil || q != "Price Quote" {
		t.Fatalf("quote = %q %v", q, err)
	}
	r, err := cl.ShortestPath(ctx, "A", "B")
	if err != nil || r.Distance != 100 || len(r.Path) != 2 {
		t.Fatalf("route = %+v %v", r, err)
	}
	if _, err := cl.AvailabilityReport(ctx, "x", "y"); !errors.Is(err, domain.ErrNoPath) {
		t.Fatalf("expected mapped sentinel, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := bookingclient.New(" ", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}
