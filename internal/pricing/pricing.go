// Package pricing turns a room type and a night count into a quote.
// Discounts come off the base price first; tax is charged on what remains.
package pricing

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

var TaxRate = decimal.RequireFromString("0.16")

type tier struct {
	minNights int
	rate      decimal.Decimal
}

// ladder is checked from the top; the first tier whose lower bound is met wins.
var ladder = []tier{
	{30, decimal.RequireFromString("0.15")},
	{14, decimal.RequireFromString("0.10")},
	{7, decimal.RequireFromString("0.05")},
}

func negativeNights(n int) error {
	return fmt.Errorf("%w: number of nights cannot be negative (%d)", domain.ErrInvalidArgument, n)
}

func BasePrice(rt domain.RoomType, nights int) (decimal.Decimal, error) {
	if nights < 0 {
		return decimal.Zero, negativeNights(nights)
	}
	unit, err := rt.NightlyPrice()
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(nights))), nil
}

func DiscountRate(nights int) (decimal.Decimal, error) {
	if nights < 0 {
		return decimal.Zero, negativeNights(nights)
	}
	for _, t := range ladder {
		if nights >= t.minNights {
			return t.rate, nil
		}
	}
	return decimal.Zero, nil
}

func DiscountAmount(base decimal.Decimal, nights int) (decimal.Decimal, error) {
	if base.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: base price cannot be negative", domain.ErrInvalidArgument)
	}
	rate, err := DiscountRate(nights)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Mul(rate), nil
}

func PriceAfterDiscount(rt domain.RoomType, nights int) (decimal.Decimal, error) {
	base, err := BasePrice(rt, nights)
	if err != nil {
		return decimal.Zero, err
	}
	discount, err := DiscountAmount(base, nights)
	if err != nil {
		return decimal.Zero, err
	}
	return base.Sub(discount), nil
}

func Tax(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: price cannot be negative", domain.ErrInvalidArgument)
	}
	return price.Mul(TaxRate), nil
}

func TotalPrice(rt domain.RoomType, nights int, includeTax bool) (decimal.Decimal, error) {
	net, err := PriceAfterDiscount(rt, nights)
	if err != nil {
		return decimal.Zero, err
	}
	if !includeTax {
		return net, nil
	}
	tax, err := Tax(net)
	if err != nil {
		return decimal.Zero, err
	}
	return net.Add(tax), nil
}

func TotalPriceForDates(rt domain.RoomType, in, out time.Time, includeTax bool) (decimal.Decimal, error) {
	nights, err := dates.NightsBetween(in, out)
	if err != nil {
		return decimal.Zero, err
	}
	return TotalPrice(rt, nights, includeTax)
}

// Breakdown is a customer-facing quote. It is a value; nothing mutates it.
type Breakdown struct {
	RoomType           domain.RoomType `json:"room_type"`
	Nights             int             `json:"nights"`
	BasePrice          decimal.Decimal `json:"base_price"`
	DiscountRate       decimal.Decimal `json:"discount_rate"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	PriceAfterDiscount decimal.Decimal `json:"price_after_discount"`
	Tax                decimal.Decimal `json:"tax"`
	TotalPrice         decimal.Decimal `json:"total_price"`
}

func NewBreakdown(rt domain.RoomType, nights int) (Breakdown, error) {
	base, err := BasePrice(rt, nights)
	if err != nil {
		return Breakdown{}, err
	}
	rate, _ := DiscountRate(nights)
	discount := base.Mul(rate)
	net := base.Sub(discount)
	tax := net.Mul(TaxRate)
	return Breakdown{
		RoomType:           rt,
		Nights:             nights,
		BasePrice:          base,
		DiscountRate:       rate,
		DiscountAmount:     discount,
		PriceAfterDiscount: net,
		Tax:                tax,
		TotalPrice:         net.Add(tax),
	}, nil
}

// Equal compares amounts by value. Decimals decoded from JSON keep the
// exponent of their text form, so == and reflect.DeepEqual are not reliable.
func (b Breakdown) Equal(o Breakdown) bool {
	return b.RoomType == o.RoomType &&
		b.Nights == o.Nights &&
		b.BasePrice.Equal(o.BasePrice) &&
		b.DiscountRate.Equal(o.DiscountRate) &&
		b.DiscountAmount.Equal(o.DiscountAmount) &&
		b.PriceAfterDiscount.Equal(o.PriceAfterDiscount) &&
		b.Tax.Equal(o.Tax) &&
		b.TotalPrice.Equal(o.TotalPrice)
}

// FormatPrice renders "$1234.50"; two decimals, halves round up.
func FormatPrice(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func percent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}

func (b Breakdown) String() string {
	var sb strings.Builder
	sb.WriteString("Price Breakdown:\n")
	fmt.Fprintf(&sb, "  Base Price:         %s\n", FormatPrice(b.BasePrice))
	if b.DiscountRate.IsPositive() {
		fmt.Fprintf(&sb, "  Discount (%s):      -%s\n", percent(b.DiscountRate), FormatPrice(b.DiscountAmount))
		fmt.Fprintf(&sb, "  Subtotal:           %s\n", FormatPrice(b.PriceAfterDiscount))
	}
	fmt.Fprintf(&sb, "  Tax (%s):          %s\n", percent(TaxRate), FormatPrice(b.Tax))
	fmt.Fprintf(&sb, "  Total:              %s\n", FormatPrice(b.TotalPrice))
	return sb.String()
}
