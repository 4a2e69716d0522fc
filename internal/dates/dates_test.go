package dates_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

var today = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func fixed() *dates.Validator {
	// mid-afternoon so truncation is exercised
	return dates.New(func() time.Time { return today.Add(15 * time.Hour) })
}

func day(offset int) time.Time { return today.AddDate(0, 0, offset) }

func TestPastTodayFuture(t *testing.T) {
	v := fixed()

	past, err := v.IsPastDate(day(-1))
	require.NoError(t, err)
	assert.True(t, past)

	isToday, err := v.IsToday(day(0).Add(23 * time.Hour))
	require.NoError(t, err)
	assert.True(t, isToday)

	future, err := v.IsFutureDate(day(1))
	require.NoError(t, err)
	assert.True(t, future)

	past, _ = v.IsPastDate(day(0))
	assert.False(t, past)

	_, err = v.IsPastDate(time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = v.IsToday(time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = v.IsFutureDate(time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIsValidCheckIn(t *testing.T) {
	v := fixed()
	cases := map[int]bool{-1: false, 0: true, 1: true, 365: true, 366: false}
	for offset, want := range cases {
		got, err := v.IsValidCheckIn(day(offset))
		require.NoError(t, err)
		assert.Equal(t, want, got, "offset %d", offset)
	}
	_, err := v.IsValidCheckIn(time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCheckOutAndMinimumNights(t *testing.T) {
	ok, err := dates.IsValidCheckOut(day(1), day(2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = dates.IsValidCheckOut(day(2), day(2))
	assert.False(t, ok)
	ok, _ = dates.IsValidCheckOut(day(3), day(2))
	assert.False(t, ok)

	ok, _ = dates.MeetsMinimumNights(day(1), day(2))
	assert.True(t, ok)
	ok, _ = dates.MeetsMinimumNights(day(1), day(1))
	assert.False(t, ok)

	_, err = dates.IsValidCheckOut(day(1), time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = dates.MeetsMinimumNights(time.Time{}, day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestIsValidDateRange(t *testing.T) {
	v := fixed()
	ok, err := v.IsValidDateRange(day(1), day(4))
	require.NoError(t, err)
	assert.True(t, ok)

	for _, r := range [][2]int{{-1, 2}, {400, 402}, {3, 3}, {5, 4}} {
		ok, err := v.IsValidDateRange(day(r[0]), day(r[1]))
		require.NoError(t, err)
		assert.False(t, ok, "range %v", r)
	}

	_, err = v.IsValidDateRange(time.Time{}, day(1))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNightsBetween(t *testing.T) {
	n, err := dates.NightsBetween(day(0), day(5))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = dates.NightsBetween(day(2), day(2))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// crossing a month boundary
	n, err = dates.NightsBetween(time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = dates.NightsBetween(day(3), day(2))
	assert.True(t, errors.Is(err, domain.ErrInvalidArgument))
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{"identical", 1, 5, 1, 5, true},
		{"partial", 1, 5, 3, 8, true},
		{"contained", 1, 10, 3, 4, true},
		{"touching end to start", 1, 5, 5, 8, false},
		{"disjoint", 1, 3, 6, 8, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := dates.RangesOverlap(day(c.s1), day(c.e1), day(c.s2), day(c.e2))
			require.NoError(t, err)
			b, err := dates.RangesOverlap(day(c.s2), day(c.e2), day(c.s1), day(c.e1))
			require.NoError(t, err)
			assert.Equal(t, c.want, a)
			assert.Equal(t, a, b, "overlap must be symmetric")
		})
	}

	_, err := dates.RangesOverlap(day(1), time.Time{}, day(1), day(2))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestValidationMessage_Ladder(t *testing.T) {
	v := fixed()
	cases := []struct {
		name    string
		in, out time.Time
		want    string
	}{
		{"missing check-in", time.Time{}, day(2), "Check-in date is required"},
		{"missing check-out", day(1), time.Time{}, "Check-out date is required"},
		{"both missing", time.Time{}, time.Time{}, "Check-in date is required"},
		{"past", day(-2), day(3), "Check-in date cannot be in the past"},
		{"past and inverted", day(-2), day(-5), "Check-in date cannot be in the past"},
		{"too far", day(366), day(370), "Check-in date cannot be more than 365 days in advance"},
		{"same day", day(4), day(4), "Check-out date must be after check-in date"},
		{"inverted", day(4), day(2), "Check-out date must be after check-in date"},
		{"valid", day(0), day(1), ""},
		{"horizon edge", day(365), day(366), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, v.ValidationMessage(c.in, c.out))
		})
	}
}

func TestFormatRangeAndParse(t *testing.T) {
	in, err := dates.Parse("2026-01-01")
	require.NoError(t, err)
	out, err := dates.Parse("2026-01-03")
	require.NoError(t, err)

	s, err := dates.FormatRange(in, out)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01 to 2026-01-03 (2 nights)", s)

	s, err = dates.FormatRange(in, in.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01 to 2026-01-02 (1 night)", s)

	_, err = dates.Parse("01/02/2026")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
