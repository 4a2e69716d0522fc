package domain

import (
	"context"
	"time"
)

// ReservationStore is a keyed store with per-key atomicity. FindAll returns a
// snapshot copy; nothing else is transactional.
type ReservationStore interface {
	// Write paths
	Save(ctx context.Context, r Reservation) (Reservation, error)
	Update(ctx context.Context, r Reservation) (Reservation, error)
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error

	// Read paths
	FindByID(ctx context.Context, id string) (Reservation, error)
	FindAll(ctx context.Context) ([]Reservation, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev ReservationEvent) error
}

type EventType string

const (
	EventCreated      EventType = "reservation.created"
	EventConfirmed    EventType = "reservation.confirmed"
	EventCheckedIn    EventType = "reservation.checked_in"
	EventCompleted    EventType = "reservation.completed"
	EventCancelled    EventType = "reservation.cancelled"
	EventDatesUpdated EventType = "reservation.dates_updated"
	EventDeleted      EventType = "reservation.deleted"
)

// ReservationEvent carries enough for downstream consumers to act without
// reading the store.
type ReservationEvent struct {
	Type          EventType `json:"type"`
	ReservationID string    `json:"reservation_id"`
	GuestEmail    string    `json:"guest_email,omitempty"`
	RoomType      RoomType  `json:"room_type,omitempty"`
	Status        Status    `json:"status,omitempty"`
	CheckIn       string    `json:"check_in,omitempty"`
	CheckOut      string    `json:"check_out,omitempty"`
	TotalPrice    string    `json:"total_price,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
