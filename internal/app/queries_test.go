package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "bookingmx/internal/adapters/redis"
	"bookingmx/internal/app"
	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
	"bookingmx/internal/pricing"
	"bookingmx/internal/storage/memory"
)

type fakeCache struct {
	store map[string]any
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *pricing.Breakdown:
		*d = v.(pricing.Breakdown)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	c.sets++
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func populated(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.New()
	seed(t, s, "r3", domain.RoomSuite, domain.StatusConfirmed, 5, 8)
	seed(t, s, "r1", domain.RoomSingle, domain.StatusPending, 1, 3)
	seed(t, s, "r2", domain.RoomSingle, domain.StatusCancelled, 1, 2)
	seed(t, s, "r4", domain.RoomDouble, domain.StatusCheckedIn, 0, 2)
	return s
}

func ids(rs []domain.Reservation) string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return strings.Join(out, ",")
}

func TestSearches(t *testing.T) {
	q := app.NewQueryService(populated(t), nil, 0, clock())
	ctx := context.Background()

	all, err := q.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// ordered by check-in, then ID
	if got := ids(all); got != "r4,r1,r2,r3" {
		t.Fatalf("list order = %s", got)
	}

	cases := []struct {
		name string
		run  func() ([]domain.Reservation, error)
		want string
	}{
		{"name substring", func() ([]domain.Reservation, error) { return q.ByGuestName(ctx, "SEED R") }, "r4,r1,r2,r3"},
		{"name blank", func() ([]domain.Reservation, error) { return q.ByGuestName(ctx, " ") }, ""},
		{"email exact", func() ([]domain.Reservation, error) { return q.ByEmail(ctx, "R3@Example.com") }, "r3"},
		{"email partial", func() ([]domain.Reservation, error) { return q.ByEmail(ctx, "r3@") }, ""},
		{"status", func() ([]domain.Reservation, error) { return q.ByStatus(ctx, domain.StatusCancelled) }, "r2"},
		{"status blank", func() ([]domain.Reservation, error) { return q.ByStatus(ctx, "") }, ""},
		{"room type", func() ([]domain.Reservation, error) { return q.ByRoomType(ctx, domain.RoomSingle) }, "r1,r2"},
		{"range any status", func() ([]domain.Reservation, error) { return q.ByDateRange(ctx, day(1), day(2)) }, "r4,r1,r2"},
		{"range touching", func() ([]domain.Reservation, error) { return q.ByDateRange(ctx, day(8), day(9)) }, ""},
		{"range missing", func() ([]domain.Reservation, error) { return q.ByDateRange(ctx, time.Time{}, day(9)) }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.run()
			if err != nil {
				t.Fatalf("err: %v", err)
			}
			if got == nil {
				t.Fatalf("expected empty slice, got nil")
			}
			if ids(got) != tc.want {
				t.Fatalf("got %s, want %s", ids(got), tc.want)
			}
		})
	}

	if _, err := q.Get(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if n, _ := q.Count(ctx); n != 4 {
		t.Fatalf("count = %d", n)
	}
}

func TestAvailabilityQueries(t *testing.T) {
	q := app.NewQueryService(populated(t), nil, 0, clock())
	ctx := context.Background()

	n, err := q.AvailableRoomCount(ctx, domain.RoomSuite, day(6), day(7))
	if err != nil || n != 4 {
		t.Fatalf("suite count = %d %v", n, err)
	}
	// pending and cancelled do not hold rooms
	n, _ = q.AvailableRoomCount(ctx, domain.RoomSingle, day(1), day(2))
	if n != 10 {
		t.Fatalf("single count = %d", n)
	}
	ok, err := q.IsRoomAvailable(ctx, domain.RoomDouble, day(1), day(2))
	if err != nil || !ok {
		t.Fatalf("double available = %v %v", ok, err)
	}
	if _, err := q.IsRoomAvailable(ctx, "", day(1), day(2)); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}

	rep, err := q.AvailabilityReport(ctx, day(1), day(2))
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	dbl, _ := rep.Room(domain.RoomDouble)
	if dbl.Available != 7 || dbl.Capacity != 8 {
		t.Fatalf("double row = %+v", dbl)
	}
}

func TestPriceQuote_CacheMissThenHit(t *testing.T) {
	cache := &fakeCache{}
	q := app.NewQueryService(memory.New(), cache, 10*time.Minute, clock())
	ctx := context.Background()

	// Miss (first time, populates cache)
	b, err := q.PriceQuote(ctx, domain.RoomDouble, day(3), day(10))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.Nights != 7 || b.TotalPrice.StringFixed(2) != "617.12" {
		t.Fatalf("unexpected quote: %+v", b)
	}
	key := "quote:DOUBLE:2026-06-18:2026-06-25:2026-06-15"
	if _, ok := cache.store[key]; !ok {
		t.Fatalf("expected cache key %s, have %v", key, cache.store)
	}

	// Tamper with the cached value to prove the second read comes from cache
	tampered := b
	tampered.Nights = 99
	cache.store[key] = tampered

	b2, err := q.PriceQuote(ctx, domain.RoomDouble, day(3), day(10))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b2.Nights != 99 || cache.sets != 1 {
		t.Fatalf("expected cached quote, got %+v (sets=%d)", b2, cache.sets)
	}
}

func TestPriceQuote_Validation(t *testing.T) {
	q := app.NewQueryService(memory.New(), nil, 0, clock())
	ctx := context.Background()

	_, err := q.PriceQuote(ctx, "", day(1), day(2))
	wantReason(t, err, domain.ErrInvalidReservation, "Room type is required")

	_, err = q.PriceQuote(ctx, domain.RoomSuite, day(-2), day(2))
	wantReason(t, err, domain.ErrInvalidReservation, "Check-in date cannot be in the past")

	// no cache configured
	b, err := q.PriceQuote(ctx, domain.RoomSuite, day(1), day(16))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if b.TotalPrice.StringFixed(2) != "2349.00" {
		t.Fatalf("suite x15 total = %s", b.TotalPrice.StringFixed(2))
	}
}

func TestPriceQuote_Idempotent(t *testing.T) {
	q := app.NewQueryService(memory.New(), &fakeCache{}, time.Minute, clock())
	ctx := context.Background()
	a, _ := q.PriceQuote(ctx, domain.RoomDeluxe, day(1), day(31))
	b, _ := q.PriceQuote(ctx, domain.RoomDeluxe, day(1), day(31))
	if a.String() != b.String() {
		t.Fatalf("quotes differ:\n%s\n%s", a, b)
	}
}

func TestPriceQuote_ServedFromRedisMatchesFresh(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	q := app.NewQueryService(memory.New(), cache, time.Minute, clock())
	ctx := context.Background()

	fresh, err := q.PriceQuote(ctx, domain.RoomDeluxe, day(1), day(31))
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !mr.Exists("bookingmx:quote:DELUXE:2026-06-16:2026-07-16:2026-06-15") {
		t.Fatalf("quote not cached, keys = %v", mr.Keys())
	}
	cached, err := q.PriceQuote(ctx, domain.RoomDeluxe, day(1), day(31))
	if err != nil {
		t.Fatalf("cached quote: %v", err)
	}
	if !cached.Equal(fresh) {
		t.Fatalf("cached quote differs:\n%+v\n%+v", cached, fresh)
	}
	if cached.String() != fresh.String() {
		t.Fatalf("cached rendering differs:\n%s\n%s", cached, fresh)
	}
}

func TestSummary(t *testing.T) {
	q := app.NewQueryService(populated(t), nil, 0, dates.New(nil))
	sum, err := q.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.Total != 4 || sum.ByStatus[domain.StatusCompleted] != 0 || sum.ByStatus[domain.StatusPending] != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	want := "Reservation Summary:\n  Total: 4\n  Pending: 1\n  Confirmed: 1\n  Checked In: 1\n  Completed: 0\n  Cancelled: 1"
	if sum.String() != want {
		t.Fatalf("summary text:\n%s", sum.String())
	}
}
