// Package availability counts inventory against a snapshot of reservations.
// Only CONFIRMED and CHECKED_IN reservations hold a room; PENDING,
// COMPLETED and CANCELLED never block one.
package availability

import (
	"fmt"
	"time"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

func Capacity(rt domain.RoomType) (int, error) { return rt.Capacity() }

func IsActive(r domain.Reservation) bool {
	return r.Status == domain.StatusConfirmed || r.Status == domain.StatusCheckedIn
}

func ReservationsOverlap(a, b domain.Reservation) (bool, error) {
	return dates.RangesOverlap(a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut)
}

// ActiveForRoomType filters the snapshot to reservations holding a room of rt.
func ActiveForRoomType(all []domain.Reservation, rt domain.RoomType) []domain.Reservation {
	var out []domain.Reservation
	for _, r := range all {
		if r.RoomType == rt && IsActive(r) {
			out = append(out, r)
		}
	}
	return out
}

func checkArgs(rt domain.RoomType, in, out time.Time) error {
	if !rt.Valid() {
		return fmt.Errorf("%w: unknown room type %q", domain.ErrInvalidArgument, string(rt))
	}
	if in.IsZero() || out.IsZero() {
		return fmt.Errorf("%w: dates cannot be null", domain.ErrInvalidArgument)
	}
	return nil
}

// OverlapCount is the number of active reservations of rt whose stay shares
// a night with [in, out).
func OverlapCount(all []domain.Reservation, rt domain.RoomType, in, out time.Time) (int, error) {
	if err := checkArgs(rt, in, out); err != nil {
		return 0, err
	}
	n := 0
	for _, r := range ActiveForRoomType(all, rt) {
		ok, err := dates.RangesOverlap(r.CheckIn, r.CheckOut, in, out)
		if err != nil {
			return 0, fmt.Errorf("reservation %s: %w", r.ID, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func IsAvailable(all []domain.Reservation, rt domain.RoomType, in, out time.Time) (bool, error) {
	n, err := OverlapCount(all, rt, in, out)
	if err != nil {
		return false, err
	}
	capacity, _ := rt.Capacity()
	return n < capacity, nil
}

func AvailableCount(all []domain.Reservation, rt domain.RoomType, in, out time.Time) (int, error) {
	n, err := OverlapCount(all, rt, in, out)
	if err != nil {
		return 0, err
	}
	capacity, _ := rt.Capacity()
	return max(0, capacity-n), nil
}

type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

func (v ValidationResult) String() string {
	return fmt.Sprintf("Valid: %t - %s", v.Valid, v.Message)
}

// Checker validates new stays against "today" as seen by its date validator.
type Checker struct {
	dates *dates.Validator
}

func NewChecker(v *dates.Validator) *Checker {
	if v == nil {
		v = dates.New(nil)
	}
	return &Checker{dates: v}
}

// ValidateNewReservation checks the date range first and availability second;
// an invalid range is reported even when rooms are also short.
func (c *Checker) ValidateNewReservation(all []domain.Reservation, rt domain.RoomType, in, out time.Time) (ValidationResult, error) {
	if err := checkArgs(rt, in, out); err != nil {
		return ValidationResult{}, err
	}
	if msg := c.dates.ValidationMessage(in, out); msg != "" {
		return ValidationResult{Valid: false, Message: msg}, nil
	}
	ok, err := IsAvailable(all, rt, in, out)
	if err != nil {
		return ValidationResult{}, err
	}
	if !ok {
		left, _ := AvailableCount(all, rt, in, out)
		return ValidationResult{
			Valid:   false,
			Message: fmt.Sprintf("No %s rooms available for the selected dates. Available: %d", rt, left),
		}, nil
	}
	return ValidationResult{Valid: true, Message: "Reservation can be created"}, nil
}
