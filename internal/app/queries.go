package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/availability"
	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
	"bookingmx/internal/pricing"
)

type QueryService struct {
	store    domain.ReservationStore
	cache    domain.Cache
	cacheTTL time.Duration
	dates    *dates.Validator
}

// NewQueryService: c may be nil to disable quote caching.
func NewQueryService(r domain.ReservationStore, c domain.Cache, ttl time.Duration, v *dates.Validator) *QueryService {
	if v == nil {
		v = dates.New(nil)
	}
	return &QueryService{store: r, cache: c, cacheTTL: ttl, dates: v}
}

func (s *QueryService) Get(ctx context.Context, id string) (domain.Reservation, error) {
	return s.store.FindByID(ctx, id)
}

func (s *QueryService) List(ctx context.Context) ([]domain.Reservation, error) {
	return s.filter(ctx, func(domain.Reservation) bool { return true })
}

func (s *QueryService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// filter runs keep over a snapshot; results are ordered by check-in, then ID.
func (s *QueryService) filter(ctx context.Context, keep func(domain.Reservation) bool) ([]domain.Reservation, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Reservation, 0, len(all))
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CheckIn.Equal(out[j].CheckIn) {
			return out[i].CheckIn.Before(out[j].CheckIn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// ByGuestName matches a case-insensitive substring of the guest name.
func (s *QueryService) ByGuestName(ctx context.Context, name string) ([]domain.Reservation, error) {
	if strings.TrimSpace(name) == "" {
		return []domain.Reservation{}, nil
	}
	term := strings.ToLower(name)
	return s.filter(ctx, func(r domain.Reservation) bool {
		return strings.Contains(strings.ToLower(r.GuestName), term)
	})
}

// ByEmail matches the whole address, ignoring case.
func (s *QueryService) ByEmail(ctx context.Context, email string) ([]domain.Reservation, error) {
	if strings.TrimSpace(email) == "" {
		return []domain.Reservation{}, nil
	}
	return s.filter(ctx, func(r domain.Reservation) bool {
		return strings.EqualFold(r.GuestEmail, email)
	})
}

func (s *QueryService) ByStatus(ctx context.Context, st domain.Status) ([]domain.Reservation, error) {
	if st == "" {
		return []domain.Reservation{}, nil
	}
	return s.filter(ctx, func(r domain.Reservation) bool { return r.Status == st })
}

func (s *QueryService) ByRoomType(ctx context.Context, rt domain.RoomType) ([]domain.Reservation, error) {
	if rt == "" {
		return []domain.Reservation{}, nil
	}
	return s.filter(ctx, func(r domain.Reservation) bool { return r.RoomType == rt })
}

// ByDateRange returns every reservation, whatever its status, sharing a night with [in, out).
func (s *QueryService) ByDateRange(ctx context.Context, in, out time.Time) ([]domain.Reservation, error) {
	if in.IsZero() || out.IsZero() {
		return []domain.Reservation{}, nil
	}
	return s.filter(ctx, func(r domain.Reservation) bool {
		ok, err := dates.RangesOverlap(r.CheckIn, r.CheckOut, in, out)
		return err == nil && ok
	})
}

func (s *QueryService) IsRoomAvailable(ctx context.Context, rt domain.RoomType, in, out time.Time) (bool, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return false, err
	}
	return availability.IsAvailable(all, rt, in, out)
}

func (s *QueryService) AvailableRoomCount(ctx context.Context, rt domain.RoomType, in, out time.Time) (int, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return availability.AvailableCount(all, rt, in, out)
}

func (s *QueryService) AvailabilityReport(ctx context.Context, in, out time.Time) (availability.Report, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return availability.Report{}, err
	}
	return availability.NewReport(all, in, out)
}

// PriceQuote prices a stay without booking it. Quotes only depend on their
// inputs and on today's date, so they are cached under both.
func (s *QueryService) PriceQuote(ctx context.Context, rt domain.RoomType, in, out time.Time) (pricing.Breakdown, error) {
	if err := validateRoomType(rt); err != nil {
		return pricing.Breakdown{}, err
	}
	if msg := s.dates.ValidationMessage(in, out); msg != "" {
		return pricing.Breakdown{}, invalid(msg)
	}

	key := fmt.Sprintf("quote:%s:%s:%s:%s", rt, dates.Format(in), dates.Format(out), dates.Format(s.dates.Today()))
	var b pricing.Breakdown
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &b)
		if ok {
			return b, nil
		}
		if err != nil {
			log.Warn().Err(err).Str("key", key).Str("err_type", observability.LabelErr(err)).Msg("quote cache read failed")
		}
	}

	nights, err := dates.NightsBetween(in, out)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	b, err = pricing.NewBreakdown(rt, nights)
	if err != nil {
		return pricing.Breakdown{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, b, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Str("err_type", observability.LabelErr(err)).Msg("quote cache write failed")
		}
	}
	return b, nil
}

type Summary struct {
	Total    int                   `json:"total"`
	ByStatus map[domain.Status]int `json:"by_status"`
}

func (s *QueryService) Summary(ctx context.Context) (Summary, error) {
	all, err := s.store.FindAll(ctx)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{Total: len(all), ByStatus: make(map[domain.Status]int, 5)}
	for _, st := range domain.Statuses() {
		sum.ByStatus[st] = 0
	}
	for _, r := range all {
		sum.ByStatus[r.Status]++
	}
	return sum, nil
}

func (s Summary) String() string {
	return fmt.Sprintf("Reservation Summary:\n"+
		"  Total: %d\n"+
		"  Pending: %d\n"+
		"  Confirmed: %d\n"+
		"  Checked In: %d\n"+
		"  Completed: %d\n"+
		"  Cancelled: %d",
		s.Total,
		s.ByStatus[domain.StatusPending],
		s.ByStatus[domain.StatusConfirmed],
		s.ByStatus[domain.StatusCheckedIn],
		s.ByStatus[domain.StatusCompleted],
		s.ByStatus[domain.StatusCancelled])
}
