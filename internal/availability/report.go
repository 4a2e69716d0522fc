package availability

import (
	"fmt"
	"strings"
	"time"

	"bookingmx/internal/dates"
	"bookingmx/internal/domain"
)

type RoomAvailability struct {
	RoomType  domain.RoomType `json:"room_type"`
	Available int             `json:"available"`
	Capacity  int             `json:"capacity"`
	Status    string          `json:"status"` // Available | Fully Booked
}

// Report is a point-in-time snapshot; it is not kept up to date.
type Report struct {
	CheckIn  time.Time          `json:"check_in"`
	CheckOut time.Time          `json:"check_out"`
	Rooms    []RoomAvailability `json:"rooms"`
}

func NewReport(all []domain.Reservation, in, out time.Time) (Report, error) {
	if in.IsZero() || out.IsZero() {
		return Report{}, fmt.Errorf("%w: dates cannot be null", domain.ErrInvalidArgument)
	}
	rep := Report{CheckIn: dates.Day(in), CheckOut: dates.Day(out)}
	for _, rt := range domain.RoomTypes() {
		left, err := AvailableCount(all, rt, in, out)
		if err != nil {
			return Report{}, err
		}
		capacity, _ := rt.Capacity()
		status := "Fully Booked"
		if left > 0 {
			status = "Available"
		}
		rep.Rooms = append(rep.Rooms, RoomAvailability{RoomType: rt, Available: left, Capacity: capacity, Status: status})
	}
	return rep, nil
}

// Room returns the row for rt.
func (r Report) Room(rt domain.RoomType) (RoomAvailability, bool) {
	for _, ra := range r.Rooms {
		if ra.RoomType == rt {
			return ra, true
		}
	}
	return RoomAvailability{}, false
}

func (r Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Availability Report for %s to %s:\n\n", dates.Format(r.CheckIn), dates.Format(r.CheckOut))
	for _, ra := range r.Rooms {
		fmt.Fprintf(&sb, "  %-10s: %d/%d rooms available - %s\n", ra.RoomType, ra.Available, ra.Capacity, ra.Status)
	}
	return sb.String()
}
