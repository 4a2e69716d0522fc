package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type RoomType string

const (
	RoomSingle RoomType = "SINGLE"
	RoomDouble RoomType = "DOUBLE"
	RoomSuite  RoomType = "SUITE"
	RoomDeluxe RoomType = "DELUXE"
)

type roomSpec struct {
	nightly  int64 // whole currency units
	capacity int
}

// rooms is the only place a room type is defined; price and inventory
// live on the same row so they cannot drift apart.
var rooms = map[RoomType]roomSpec{
	RoomSingle: {nightly: 50, capacity: 10},
	RoomDouble: {nightly: 80, capacity: 8},
	RoomSuite:  {nightly: 150, capacity: 5},
	RoomDeluxe: {nightly: 200, capacity: 3},
}

// RoomTypes lists every room type in declaration order.
func RoomTypes() []RoomType {
	return []RoomType{RoomSingle, RoomDouble, RoomSuite, RoomDeluxe}
}

func ParseRoomType(s string) (RoomType, error) {
	rt := RoomType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := rooms[rt]; !ok {
		return "", fmt.Errorf("%w: unknown room type %q", ErrInvalidArgument, s)
	}
	return rt, nil
}

func (rt RoomType) Valid() bool {
	_, ok := rooms[rt]
	return ok
}

// NightlyPrice is the immutable base price for one night.
func (rt RoomType) NightlyPrice() (decimal.Decimal, error) {
	spec, ok := rooms[rt]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: unknown room type %q", ErrInvalidArgument, string(rt))
	}
	return decimal.NewFromInt(spec.nightly), nil
}

// Capacity is the fixed number of rooms of this type.
func (rt RoomType) Capacity() (int, error) {
	spec, ok := rooms[rt]
	if !ok {
		return 0, fmt.Errorf("%w: unknown room type %q", ErrInvalidArgument, string(rt))
	}
	return spec.capacity, nil
}

func (rt RoomType) String() string { return string(rt) }
