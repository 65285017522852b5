package models

import (
	"time"

	dErrors "toursales/pkg/domain-errors"
)

// User is a buyer identity keyed by cedula (national ID).
//
// Invariants:
//   - Cedula is non-empty, digits only, and unique across users
//   - Cedula is immutable after creation; lookups from the purchase flow are
//     always by cedula, never by internal ID
//   - Users are never updated or deleted by the purchase flow
type User struct {
	ID        int64     `json:"id"`
	Cedula    string    `json:"cedula"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser builds a user applying registration defaults: a missing name falls
// back to the cedula itself, a missing email to the empty string.
func NewUser(cedula, name, email string, now time.Time) (*User, error) {
	if err := ValidateCedula(cedula); err != nil {
		return nil, err
	}
	if name == "" {
		name = cedula
	}
	return &User{
		Cedula:    cedula,
		Name:      name,
		Email:     email,
		CreatedAt: now,
	}, nil
}

// ValidateCedula checks the natural-key format shared by lookups and creates.
func ValidateCedula(cedula string) error {
	if cedula == "" {
		return dErrors.New(dErrors.CodeBadRequest, "cedula is required")
	}
	for _, r := range cedula {
		if r < '0' || r > '9' {
			return dErrors.New(dErrors.CodeBadRequest, "cedula must contain only digits")
		}
	}
	return nil
}
