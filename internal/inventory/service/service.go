// Package service implements the inventory ledger: tour catalog CRUD plus the
// atomic spot reservation used by the purchase flow.
package service

import (
	"context"
	"errors"
	"time"

	"toursales/internal/inventory/models"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/sentinel"
	"toursales/pkg/requestcontext"
)

// TourStore is the persistence contract the ledger depends on.
type TourStore interface {
	List(ctx context.Context) ([]*models.Tour, error)
	FindByID(ctx context.Context, id int64) (*models.Tour, error)
	Create(ctx context.Context, tour *models.Tour) error
	Update(ctx context.Context, tour *models.Tour) error
	Delete(ctx context.Context, id int64) error
	ReserveSpots(ctx context.Context, id int64, quantity int, now time.Time) (*models.Tour, error)
	ReleaseSpots(ctx context.Context, id int64, quantity int, now time.Time) error
}

// Ledger owns tour records and their seat accounting.
type Ledger struct {
	tours TourStore
}

func NewLedger(tours TourStore) *Ledger {
	return &Ledger{tours: tours}
}

func (l *Ledger) List(ctx context.Context) ([]*models.Tour, error) {
	tours, err := l.tours.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tours")
	}
	return tours, nil
}

func (l *Ledger) GetByID(ctx context.Context, id int64) (*models.Tour, error) {
	tour, err := l.tours.FindByID(ctx, id)
	if err != nil {
		return nil, wrapTourErr(err)
	}
	return tour, nil
}

func (l *Ledger) Create(ctx context.Context, dto models.CreateTour) (*models.Tour, error) {
	tour, err := models.NewTour(dto, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := l.tours.Create(ctx, tour); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tour")
	}
	return tour, nil
}

// Update merges a partial edit and re-validates the tour invariants against
// the merged state before persisting.
func (l *Ledger) Update(ctx context.Context, id int64, dto models.UpdateTour) (*models.Tour, error) {
	tour, err := l.tours.FindByID(ctx, id)
	if err != nil {
		return nil, wrapTourErr(err)
	}
	tour.ApplyUpdate(dto, requestcontext.Now(ctx))
	if err := tour.Validate(); err != nil {
		return nil, err
	}
	if err := l.tours.Update(ctx, tour); err != nil {
		return nil, wrapTourErr(err)
	}
	return tour, nil
}

// Delete removes the tour. Existing tickets keep their denormalized view of
// the tour, so no reference check is made here.
func (l *Ledger) Delete(ctx context.Context, id int64) error {
	if err := l.tours.Delete(ctx, id); err != nil {
		return wrapTourErr(err)
	}
	return nil
}

// Reserve atomically takes quantity spots from the tour. The store guarantees
// the capacity check and the decrement happen as one step, which is what
// keeps concurrent purchases from overselling.
func (l *Ledger) Reserve(ctx context.Context, id int64, quantity int) (*models.Tour, error) {
	if quantity <= 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	tour, err := l.tours.ReserveSpots(ctx, id, quantity, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tour not found")
		}
		if errors.Is(err, sentinel.ErrInvalidState) {
			return nil, dErrors.New(dErrors.CodeInsufficient, "not enough available spots")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reserve spots")
	}
	return tour, nil
}

// Release gives reserved spots back. It is the compensating action for a
// failed ticket write, so failures here are reported but not retried.
func (l *Ledger) Release(ctx context.Context, id int64, quantity int) error {
	if err := l.tours.ReleaseSpots(ctx, id, quantity, requestcontext.Now(ctx)); err != nil {
		return wrapTourErr(err)
	}
	return nil
}

func wrapTourErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tour not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "tour storage failure")
}
