package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"bookingmx/internal/adapters/observability"
	"bookingmx/internal/availability"
	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
	"bookingmx/internal/pricing"
)

type ReservationService struct {
	store   domain.ReservationStore
	events  domain.EventPublisher
	dates   *dates.Validator
	checker *availability.Checker
}

// NewReservationService wires the lifecycle. events may be nil; v may be nil
// to use the wall clock.
func NewReservationService(store domain.ReservationStore, events domain.EventPublisher, v *dates.Validator) *ReservationService {
	if v == nil {
		v = dates.New(nil)
	}
	return &ReservationService{store: store, events: events, dates: v, checker: availability.NewChecker(v)}
}

type CreateInput struct {
	GuestName  string
	GuestEmail string
	CheckIn    time.Time
	CheckOut   time.Time
	RoomType   domain.RoomType
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidReservation, reason)
}

func validateGuest(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("Guest name is required")
	}
	if strings.TrimSpace(email) == "" {
		return invalid("Guest email is required")
	}
	if !domain.ValidEmail(email) {
		return invalid("Invalid email format")
	}
	return nil
}

func validateRoomType(rt domain.RoomType) error {
	if rt == "" {
		return invalid("Room type is required")
	}
	if !rt.Valid() {
		return invalid(fmt.Sprintf("Unknown room type %q", string(rt)))
	}
	return nil
}

// admit runs the date ladder and then the capacity check against snapshot.
func (s *ReservationService) admit(snapshot []domain.Reservation, rt domain.RoomType, in, out time.Time) error {
	res, err := s.checker.ValidateNewReservation(snapshot, rt, in, out)
	if err != nil {
		return err
	}
	if !res.Valid {
		return invalid(res.Message)
	}
	return nil
}

// Create books a PENDING reservation. The availability check reads a
// snapshot and the save happens afterwards; two callers racing for the last
// room can both pass the check.
func (s *ReservationService) Create(ctx context.Context, in CreateInput) (domain.Reservation, error) {
	if err := validateGuest(in.GuestName, in.GuestEmail); err != nil {
		return domain.Reservation{}, err
	}
	if err := validateRoomType(in.RoomType); err != nil {
		return domain.Reservation{}, err
	}
	if msg := s.dates.ValidationMessage(in.CheckIn, in.CheckOut); msg != "" {
		return domain.Reservation{}, invalid(msg)
	}

	snapshot, err := s.store.FindAll(ctx)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("load reservations: %w", err)
	}
	if err := s.admit(snapshot, in.RoomType, in.CheckIn, in.CheckOut); err != nil {
		return domain.Reservation{}, err
	}

	total, err := pricing.TotalPriceForDates(in.RoomType, in.CheckIn, in.CheckOut, true)
	if err != nil {
		return domain.Reservation{}, err
	}
	r := domain.Reservation{
		ID:         uuid.NewString(),
		GuestName:  in.GuestName,
		GuestEmail: in.GuestEmail,
		CheckIn:    dates.Day(in.CheckIn),
		CheckOut:   dates.Day(in.CheckOut),
		RoomType:   in.RoomType,
		TotalPrice: total,
		Status:     domain.StatusPending,
		CreatedAt:  s.dates.Today(),
	}
	saved, err := s.store.Save(ctx, r)
	if err != nil {
		return domain.Reservation{}, err
	}

	log.Info().
		Str("reservation_id", saved.ID).
		Str("room_type", string(saved.RoomType)).
		Str("total", saved.TotalPrice.StringFixed(2)).
		Msg("reservation created")
	s.emit(ctx, domain.EventCreated, saved)
	return saved, nil
}

func (s *ReservationService) Confirm(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, (*domain.Reservation).Confirm, domain.EventConfirmed)
}

func (s *ReservationService) CheckIn(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, (*domain.Reservation).CheckInGuest, domain.EventCheckedIn)
}

func (s *ReservationService) Complete(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, (*domain.Reservation).Complete, domain.EventCompleted)
}

func (s *ReservationService) Cancel(ctx context.Context, id string) (domain.Reservation, error) {
	return s.transition(ctx, id, (*domain.Reservation).Cancel, domain.EventCancelled)
}

func (s *ReservationService) transition(ctx context.Context, id string, apply func(*domain.Reservation) error, ev domain.EventType) (domain.Reservation, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	from := r.Status
	if err := apply(&r); err != nil {
		return domain.Reservation{}, err
	}
	saved, err := s.store.Update(ctx, r)
	if err != nil {
		return domain.Reservation{}, err
	}
	log.Info().
		Str("reservation_id", saved.ID).
		Str("from", string(from)).
		Str("status", string(saved.Status)).
		Msg("reservation transition")
	s.emit(ctx, ev, saved)
	return saved, nil
}

// UpdateDates moves a stay. Availability is re-checked with the reservation's
// own entry left out of the snapshot; the same check-then-write gap as Create applies.
func (s *ReservationService) UpdateDates(ctx context.Context, id string, in, out time.Time) (domain.Reservation, error) {
	r, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Reservation{}, err
	}
	if r.Status.Terminal() {
		return domain.Reservation{}, fmt.Errorf("%w: Cannot change dates of a %s reservation", domain.ErrInvalidTransition, strings.ToLower(string(r.Status)))
	}
	if msg := s.dates.ValidationMessage(in, out); msg != "" {
		return domain.Reservation{}, invalid(msg)
	}

	all, err := s.store.FindAll(ctx)
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("load reservations: %w", err)
	}
	others := make([]domain.Reservation, 0, len(all))
	for _, o := range all {
		if o.ID != r.ID {
			others = append(others, o)
		}
	}
	if err := s.admit(others, r.RoomType, in, out); err != nil {
		return domain.Reservation{}, err
	}

	total, err := pricing.TotalPriceForDates(r.RoomType, in, out, true)
	if err != nil {
		return domain.Reservation{}, err
	}
	r.CheckIn, r.CheckOut, r.TotalPrice = dates.Day(in), dates.Day(out), total
	saved, err := s.store.Update(ctx, r)
	if err != nil {
		return domain.Reservation{}, err
	}
	log.Info().
		Str("reservation_id", saved.ID).
		Str("check_in", dates.Format(saved.CheckIn)).
		Str("check_out", dates.Format(saved.CheckOut)).
		Msg("reservation dates updated")
	s.emit(ctx, domain.EventDatesUpdated, saved)
	return saved, nil
}

// Delete purges a reservation regardless of status. It is not a cancellation.
func (s *ReservationService) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if removed {
		log.Warn().Str("reservation_id", id).Msg("reservation deleted")
		s.emit(ctx, domain.EventDeleted, domain.Reservation{ID: id})
	}
	return removed, nil
}

func (s *ReservationService) emit(ctx context.Context, t domain.EventType, r domain.Reservation) {
	observability.ObserveReservation(string(t))
	if s.events == nil {
		return
	}
	ev := domain.ReservationEvent{
		Type:          t,
		ReservationID: r.ID,
		GuestEmail:    r.GuestEmail,
		RoomType:      r.RoomType,
		Status:        r.Status,
		OccurredAt:    time.Now().UTC(),
	}
	if !r.CheckIn.IsZero() {
		ev.CheckIn, ev.CheckOut = dates.Format(r.CheckIn), dates.Format(r.CheckOut)
		ev.TotalPrice = r.TotalPrice.StringFixed(2)
	}
	// events are best-effort: the reservation is already stored
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Warn().Err(err).Str("event", string(t)).Str("reservation_id", r.ID).Msg("publish event failed")
	}
}
