package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"bookingmx/internal/domain"
)

// Store keeps reservations in a mutex-guarded map. Each call is atomic on
// its own; sequences of calls are not.
type Store struct {
	mu   sync.RWMutex
	byID map[string]domain.Reservation
}

func New() *Store { return &Store{byID: make(map[string]domain.Reservation)} }

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: reservation ID cannot be empty", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if err := checkID(r.ID); err != nil {
		return domain.Reservation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; ok {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s already exists", domain.ErrDuplicate, r.ID)
	}
	s.byID[r.ID] = r
	return r, nil
}

func (s *Store) Update(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	if err := checkID(r.ID); err != nil {
		return domain.Reservation{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[r.ID]; !ok {
		return domain.Reservation{}, fmt.Errorf("%w: cannot update reservation %s", domain.ErrNotFound, r.ID)
	}
	s.byID[r.ID] = r
	return r, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (domain.Reservation, error) {
	if err := checkID(id); err != nil {
		return domain.Reservation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("%w: reservation %s", domain.ErrNotFound, id)
	}
	return r, nil
}

// FindAll returns a copy; map iteration order means no ordering guarantee.
func (s *Store) FindAll(ctx context.Context) ([]domain.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Reservation, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	delete(s.byID, id)
	return ok, nil
}

func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID), nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.byID)
	return nil
}
