package pricing_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookingmx/internal/domain"
	"bookingmx/internal/pricing"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func TestDiscountRate_Ladder(t *testing.T) {
	cases := []struct {
		from, to int
		rate     string
	}{
		{0, 6, "0"},
		{7, 13, "0.05"},
		{14, 29, "0.10"},
		{30, 90, "0.15"},
	}
	for _, c := range cases {
		for n := c.from; n <= c.to; n++ {
			got, err := pricing.DiscountRate(n)
			require.NoError(t, err)
			assertDec(t, c.rate, got)
		}
	}
	_, err := pricing.DiscountRate(-1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBasePrice(t *testing.T) {
	got, err := pricing.BasePrice(domain.RoomDouble, 3)
	require.NoError(t, err)
	assertDec(t, "240", got)

	got, err = pricing.BasePrice(domain.RoomDeluxe, 0)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = pricing.BasePrice(domain.RoomSingle, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = pricing.BasePrice(domain.RoomType("CLOSET"), 2)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestDiscountAmountAndTax(t *testing.T) {
	got, err := pricing.DiscountAmount(dec("1000"), 14)
	require.NoError(t, err)
	assertDec(t, "100", got)

	_, err = pricing.DiscountAmount(dec("-1"), 3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	tax, err := pricing.Tax(dec("250"))
	require.NoError(t, err)
	assertDec(t, "40", tax)

	_, err = pricing.Tax(dec("-0.01"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTotalPrice(t *testing.T) {
	got, err := pricing.TotalPrice(domain.RoomSingle, 5, true)
	require.NoError(t, err)
	assertDec(t, "290.00", got)

	got, err = pricing.TotalPrice(domain.RoomSuite, 15, true)
	require.NoError(t, err)
	assertDec(t, "2349.00", got)

	got, err = pricing.TotalPrice(domain.RoomSuite, 15, false)
	require.NoError(t, err)
	assertDec(t, "2025", got)

	// 30 nights deluxe: 6000 base, 15% off = 5100, +16% = 5916
	got, err = pricing.TotalPrice(domain.RoomDeluxe, 30, true)
	require.NoError(t, err)
	assertDec(t, "5916", got)

	_, err = pricing.TotalPrice(domain.RoomSingle, -1, true)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestTaxAppliesAfterDiscount(t *testing.T) {
	// 7 nights double: base 560, discount 28, net 532, tax 85.12
	b, err := pricing.NewBreakdown(domain.RoomDouble, 7)
	require.NoError(t, err)
	assertDec(t, "85.12", b.Tax)
	assertDec(t, "617.12", b.TotalPrice)

	taxOnBase, _ := pricing.Tax(b.BasePrice)
	assert.False(t, taxOnBase.Equal(b.Tax))
}

func TestTotalPriceForDates(t *testing.T) {
	in := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	got, err := pricing.TotalPriceForDates(domain.RoomSingle, in, in.AddDate(0, 0, 5), true)
	require.NoError(t, err)
	assertDec(t, "290", got)

	_, err = pricing.TotalPriceForDates(domain.RoomSingle, in, in.AddDate(0, 0, -1), true)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestBreakdown(t *testing.T) {
	b, err := pricing.NewBreakdown(domain.RoomSuite, 15)
	require.NoError(t, err)
	assertDec(t, "2250", b.BasePrice)
	assertDec(t, "0.10", b.DiscountRate)
	assertDec(t, "225", b.DiscountAmount)
	assertDec(t, "2025", b.PriceAfterDiscount)
	assertDec(t, "324", b.Tax)
	assertDec(t, "2349", b.TotalPrice)

	again, err := pricing.NewBreakdown(domain.RoomSuite, 15)
	require.NoError(t, err)
	assert.Equal(t, b.String(), again.String())

	s := b.String()
	assert.Contains(t, s, "Base Price:         $2250.00")
	assert.Contains(t, s, "Discount (10%)")
	assert.Contains(t, s, "Total:              $2349.00")

	short, err := pricing.NewBreakdown(domain.RoomSingle, 2)
	require.NoError(t, err)
	assert.False(t, strings.Contains(short.String(), "Discount"))

	_, err = pricing.NewBreakdown(domain.RoomSingle, -3)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$290.00", pricing.FormatPrice(dec("290")))
	assert.Equal(t, "$10.13", pricing.FormatPrice(dec("10.125")))
	assert.Equal(t, "$0.00", pricing.FormatPrice(decimal.Zero))
	assert.Equal(t, "$1.00", pricing.FormatPrice(dec("0.995")))
}

func TestBreakdown_EqualAcrossJSON(t *testing.T) {
	b, err := pricing.NewBreakdown(domain.RoomDeluxe, 30)
	require.NoError(t, err)

	raw, err := json.Marshal(b)
	require.NoError(t, err)
	var back pricing.Breakdown
	require.NoError(t, json.Unmarshal(raw, &back))

	assert.True(t, back.Equal(b))
	assert.Equal(t, b.String(), back.String())

	other, _ := pricing.NewBreakdown(domain.RoomDeluxe, 29)
	assert.False(t, other.Equal(b))
}
