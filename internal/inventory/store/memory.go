// Package store provides tour persistence with an atomic spot-reservation
// operation. Both implementations guarantee the available-spots counter is
// checked and decremented as one step: the in-memory store holds its mutex
// across both, the Postgres store issues a single conditional UPDATE.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"toursales/internal/inventory/models"
	"toursales/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	tours  map[int64]*models.Tour
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID: 1,
		tours:  make(map[int64]*models.Tour),
	}
}

func (s *InMemory) List(_ context.Context) ([]*models.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tours := make([]*models.Tour, 0, len(s.tours))
	for _, t := range s.tours {
		tours = append(tours, copyTour(t))
	}
	sort.Slice(tours, func(i, j int) bool { return tours[i].ID < tours[j].ID })
	return tours, nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tour, ok := s.tours[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyTour(tour), nil
}

func (s *InMemory) Create(_ context.Context, tour *models.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tour.ID = s.nextID
	s.nextID++
	s.tours[tour.ID] = copyTour(tour)
	return nil
}

func (s *InMemory) Update(_ context.Context, tour *models.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[tour.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.tours[tour.ID] = copyTour(tour)
	return nil
}

func (s *InMemory) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tours[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tours, id)
	return nil
}

// ReserveSpots atomically takes quantity spots from the tour. The mutex is
// held across the check and the decrement, so two concurrent reservations can
// never both consume the last spot.
func (s *InMemory) ReserveSpots(_ context.Context, id int64, quantity int, now time.Time) (*models.Tour, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tour, ok := s.tours[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if tour.AvailableSpots < quantity {
		return nil, sentinel.ErrInvalidState
	}
	tour.ApplyReservation(quantity, now)
	return copyTour(tour), nil
}

// ReleaseSpots returns quantity spots to the tour, capped at capacity. Used
// as the compensating action when ticket persistence fails after a reserve.
func (s *InMemory) ReleaseSpots(_ context.Context, id int64, quantity int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tour, ok := s.tours[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	tour.AvailableSpots += quantity
	if tour.AvailableSpots > tour.Capacity {
		tour.AvailableSpots = tour.Capacity
	}
	tour.UpdatedAt = now
	return nil
}

func copyTour(t *models.Tour) *models.Tour {
	c := *t
	return &c
}
