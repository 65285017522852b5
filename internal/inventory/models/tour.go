package models

import (
	"time"

	"github.com/shopspring/decimal"

	dErrors "toursales/pkg/domain-errors"
)

// Tour is a catalog entry with a seat counter.
//
// Invariants:
//   - Title is non-empty
//   - Price is non-negative
//   - Capacity is a positive integer
//   - 0 <= AvailableSpots <= Capacity, at creation and after every mutation
//
// The purchase path never writes AvailableSpots directly; it goes through the
// store's conditional reserve so the counter can never go negative under
// concurrent purchases.
type Tour struct {
	ID             int64           `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Capacity       int             `json:"capacity"`
	AvailableSpots int             `json:"availableSpots"`
	ImageURL       string          `json:"imageUrl"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// CreateTour carries the attributes for a new catalog entry.
type CreateTour struct {
	Title          string
	Description    string
	Price          decimal.Decimal
	Capacity       int
	AvailableSpots int
	ImageURL       string
}

// UpdateTour carries a partial admin edit; nil fields are left untouched.
type UpdateTour struct {
	Title          *string
	Description    *string
	Price          *decimal.Decimal
	Capacity       *int
	AvailableSpots *int
	ImageURL       *string
}

// NewTour validates the creation attributes and builds the tour.
func NewTour(dto CreateTour, now time.Time) (*Tour, error) {
	t := &Tour{
		Title:          dto.Title,
		Description:    dto.Description,
		Price:          dto.Price,
		Capacity:       dto.Capacity,
		AvailableSpots: dto.AvailableSpots,
		ImageURL:       dto.ImageURL,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tour invariants. Called at creation and again on the
// merged state of every admin edit.
func (t *Tour) Validate() error {
	if t.Title == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "title is required")
	}
	if t.Price.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "price cannot be negative")
	}
	if t.Capacity <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "capacity must be a positive integer")
	}
	if t.AvailableSpots < 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "available spots cannot be negative")
	}
	if t.AvailableSpots > t.Capacity {
		return dErrors.New(dErrors.CodeInvariantViolation, "available spots cannot exceed capacity")
	}
	return nil
}

// ApplyUpdate merges a partial edit into the tour. The caller validates the
// result before persisting.
func (t *Tour) ApplyUpdate(dto UpdateTour, now time.Time) {
	if dto.Title != nil {
		t.Title = *dto.Title
	}
	if dto.Description != nil {
		t.Description = *dto.Description
	}
	if dto.Price != nil {
		t.Price = *dto.Price
	}
	if dto.Capacity != nil {
		t.Capacity = *dto.Capacity
	}
	if dto.AvailableSpots != nil {
		t.AvailableSpots = *dto.AvailableSpots
	}
	if dto.ImageURL != nil {
		t.ImageURL = *dto.ImageURL
	}
	t.UpdatedAt = now
}

// CanReserve checks whether quantity spots can be taken. Stores call this
// under their lock so the check and the decrement are one atomic step.
func (t *Tour) CanReserve(quantity int) error {
	if quantity <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	if t.AvailableSpots < quantity {
		return dErrors.New(dErrors.CodeInsufficient, "not enough available spots")
	}
	return nil
}

// ApplyReservation decrements the counter. Call CanReserve first, under the
// same lock.
func (t *Tour) ApplyReservation(quantity int, now time.Time) {
	t.AvailableSpots -= quantity
	t.UpdatedAt = now
}
