// Package dates validates stay date ranges. All dates are calendar days:
// values are truncated to midnight UTC before any comparison, and a zero
// time.Time means the date was not supplied.
package dates

import (
	"fmt"
	"time"

	"bookingmx/internal/domain"
)

const (
	MinimumNights      = 1
	MaximumAdvanceDays = 365
)

// Validator answers "relative to today" questions using its clock.
type Validator struct {
	now func() time.Time
}

// New returns a Validator; a nil clock means time.Now.
func New(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

// Today is the validator's current calendar day.
func (v *Validator) Today() time.Time { return Day(v.now()) }

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", domain.ErrInvalidArgument, s)
	}
	return t, nil
}

func Format(t time.Time) string { return Day(t).Format(time.DateOnly) }

func required(name string, ds ...time.Time) error {
	for _, d := range ds {
		if d.IsZero() {
			return fmt.Errorf("%w: %s cannot be null", domain.ErrInvalidArgument, name)
		}
	}
	return nil
}

func daysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

func (v *Validator) IsPastDate(d time.Time) (bool, error) {
	if err := required("date", d); err != nil {
		return false, err
	}
	return Day(d).Before(v.Today()), nil
}

func (v *Validator) IsToday(d time.Time) (bool, error) {
	if err := required("date", d); err != nil {
		return false, err
	}
	return Day(d).Equal(v.Today()), nil
}

func (v *Validator) IsFutureDate(d time.Time) (bool, error) {
	if err := required("date", d); err != nil {
		return false, err
	}
	return Day(d).After(v.Today()), nil
}

// IsValidCheckIn: not in the past and at most MaximumAdvanceDays ahead.
func (v *Validator) IsValidCheckIn(d time.Time) (bool, error) {
	if err := required("check-in date", d); err != nil {
		return false, err
	}
	ahead := daysBetween(v.Today(), d)
	return ahead >= 0 && ahead <= MaximumAdvanceDays, nil
}

func IsValidCheckOut(in, out time.Time) (bool, error) {
	if err := required("check-in date", in); err != nil {
		return false, err
	}
	if err := required("check-out date", out); err != nil {
		return false, err
	}
	return Day(out).After(Day(in)), nil
}

func MeetsMinimumNights(in, out time.Time) (bool, error) {
	if err := required("dates", in, out); err != nil {
		return false, err
	}
	return daysBetween(in, out) >= MinimumNights, nil
}

func (v *Validator) IsValidDateRange(in, out time.Time) (bool, error) {
	if err := required("dates", in, out); err != nil {
		return false, err
	}
	okIn, _ := v.IsValidCheckIn(in)
	okOut, _ := IsValidCheckOut(in, out)
	okNights, _ := MeetsMinimumNights(in, out)
	return okIn && okOut && okNights, nil
}

// NightsBetween counts whole nights; check-out before check-in is an error.
func NightsBetween(in, out time.Time) (int, error) {
	if err := required("dates", in, out); err != nil {
		return 0, err
	}
	if Day(out).Before(Day(in)) {
		return 0, fmt.Errorf("%w: check-out date cannot be before check-in date", domain.ErrInvalidArgument)
	}
	return daysBetween(in, out), nil
}

// RangesOverlap uses half-open [start, end) ranges: touching ends do not overlap.
func RangesOverlap(s1, e1, s2, e2 time.Time) (bool, error) {
	if err := required("dates", s1, e1, s2, e2); err != nil {
		return false, err
	}
	return Day(s1).Before(Day(e2)) && Day(s2).Before(Day(e1)), nil
}

// ValidationMessage returns the first reason the range is unacceptable,
// or "" when it is valid. The order of the checks is part of the contract.
func (v *Validator) ValidationMessage(in, out time.Time) string {
	switch {
	case in.IsZero():
		return "Check-in date is required"
	case out.IsZero():
		return "Check-out date is required"
	}
	ahead := daysBetween(v.Today(), in)
	switch {
	case ahead < 0:
		return "Check-in date cannot be in the past"
	case ahead > MaximumAdvanceDays:
		return fmt.Sprintf("Check-in date cannot be more than %d days in advance", MaximumAdvanceDays)
	case !Day(out).After(Day(in)):
		return "Check-out date must be after check-in date"
	case daysBetween(in, out) < MinimumNights:
		return fmt.Sprintf("Reservation must be for at least %d night(s)", MinimumNights)
	}
	return ""
}

// FormatRange renders "2026-01-01 to 2026-01-03 (2 nights)".
func FormatRange(in, out time.Time) (string, error) {
	n, err := NightsBetween(in, out)
	if err != nil {
		return "", err
	}
	suffix := "s"
	if n == 1 {
		suffix = ""
	}
	return fmt.Sprintf("%s to %s (%d night%s)", Format(in), Format(out), n, suffix), nil
}
