package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCheckedIn Status = "CHECKED_IN"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusCheckedIn, StatusCompleted, StatusCancelled}
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Statuses() {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, s)
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCheckedIn, StatusCancelled},
	StatusCheckedIn: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether the lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal statuses have no outgoing transitions.
func (s Status) Terminal() bool { return len(transitions[s]) == 0 }

var emailRE = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

func ValidEmail(email string) bool { return emailRE.MatchString(email) }

type Reservation struct {
	ID         string          `json:"id"`
	GuestName  string          `json:"guest_name"`
	GuestEmail string          `json:"guest_email"`
	CheckIn    time.Time       `json:"check_in"`
	CheckOut   time.Time       `json:"check_out"`
	RoomType   RoomType        `json:"room_type"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Status     Status          `json:"status"`
	CreatedAt  time.Time       `json:"created_at"` // date only
}

// Nights is the stay length in whole days, 0 when dates are unset.
func (r Reservation) Nights() int {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return 0
	}
	return int(r.CheckOut.Sub(r.CheckIn).Hours() / 24)
}

func (r *Reservation) Confirm() error {
	if r.Status != StatusPending {
		return fmt.Errorf("%w: Only pending reservations can be confirmed", ErrInvalidTransition)
	}
	r.Status = StatusConfirmed
	return nil
}

func (r *Reservation) CheckInGuest() error {
	if r.Status != StatusConfirmed {
		return fmt.Errorf("%w: Only confirmed reservations can be checked in", ErrInvalidTransition)
	}
	r.Status = StatusCheckedIn
	return nil
}

func (r *Reservation) Complete() error {
	if r.Status != StatusCheckedIn {
		return fmt.Errorf("%w: Only checked-in reservations can be completed", ErrInvalidTransition)
	}
	r.Status = StatusCompleted
	return nil
}

func (r *Reservation) Cancel() error {
	switch r.Status {
	case StatusCompleted:
		return fmt.Errorf("%w: Cannot cancel a completed reservation", ErrInvalidTransition)
	case StatusCancelled:
		return fmt.Errorf("%w: Reservation is already cancelled", ErrInvalidTransition)
	}
	r.Status = StatusCancelled
	return nil
}
