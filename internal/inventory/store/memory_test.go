package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"toursales/internal/inventory/models"
	"toursales/pkg/platform/sentinel"
)

type TourStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *TourStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestTourStoreSuite(t *testing.T) {
	suite.Run(t, new(TourStoreSuite))
}

func (s *TourStoreSuite) seedTour(capacity, spots int) *models.Tour {
	tour := &models.Tour{
		Title:          "Lost City Trek",
		Price:          decimal.NewFromInt(100000),
		Capacity:       capacity,
		AvailableSpots: spots,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	s.Require().NoError(s.store.Create(s.ctx, tour))
	return tour
}

func (s *TourStoreSuite) TestCRUD() {
	s.Run("create assigns sequential IDs", func() {
		t1 := s.seedTour(10, 10)
		t2 := s.seedTour(10, 10)
		s.Less(t1.ID, t2.ID)
	})

	s.Run("find returns a copy", func() {
		tour := s.seedTour(10, 10)
		found, err := s.store.FindByID(s.ctx, tour.ID)
		s.Require().NoError(err)

		found.AvailableSpots = 0
		again, err := s.store.FindByID(s.ctx, tour.ID)
		s.Require().NoError(err)
		s.Equal(10, again.AvailableSpots, "mutating a returned tour must not affect the store")
	})

	s.Run("delete removes the row", func() {
		tour := s.seedTour(10, 10)
		s.Require().NoError(s.store.Delete(s.ctx, tour.ID))
		_, err := s.store.FindByID(s.ctx, tour.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("update of missing tour fails", func() {
		err := s.store.Update(s.ctx, &models.Tour{ID: 9999})
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *TourStoreSuite) TestReserveSpots() {
	s.Run("decrements on success", func() {
		tour := s.seedTour(20, 5)
		updated, err := s.store.ReserveSpots(s.ctx, tour.ID, 3, time.Now())
		s.Require().NoError(err)
		s.Equal(2, updated.AvailableSpots)
	})

	s.Run("insufficient spots leaves the counter untouched", func() {
		tour := s.seedTour(20, 2)
		_, err := s.store.ReserveSpots(s.ctx, tour.ID, 3, time.Now())
		s.Require().ErrorIs(err, sentinel.ErrInvalidState)

		found, err := s.store.FindByID(s.ctx, tour.ID)
		s.Require().NoError(err)
		s.Equal(2, found.AvailableSpots)
	})

	s.Run("missing tour", func() {
		_, err := s.store.ReserveSpots(s.ctx, 9999, 1, time.Now())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *TourStoreSuite) TestReleaseSpotsCapsAtCapacity() {
	tour := s.seedTour(20, 18)
	s.Require().NoError(s.store.ReleaseSpots(s.ctx, tour.ID, 5, time.Now()))

	found, err := s.store.FindByID(s.ctx, tour.ID)
	s.Require().NoError(err)
	s.Equal(20, found.AvailableSpots)
}

// TestConcurrentReservations checks the core inventory property: N buyers
// racing for k spots produce exactly k successes and the counter ends at
// zero, never negative.
func (s *TourStoreSuite) TestConcurrentReservations() {
	const (
		spots      = 5
		goroutines = 50
	)
	tour := s.seedTour(20, spots)

	var wg sync.WaitGroup
	var successCount, soldOutCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.ReserveSpots(s.ctx, tour.ID, 1, time.Now())
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrInvalidState) {
				soldOutCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(spots), successCount.Load(), "exactly k reservations succeed")
	s.Equal(int32(goroutines-spots), soldOutCount.Load())

	found, err := s.store.FindByID(s.ctx, tour.ID)
	s.Require().NoError(err)
	s.Equal(0, found.AvailableSpots)
}
