// Package service implements the identity registry: buyer lookup and
// find-or-create keyed by cedula.
package service

import (
	"context"
	"errors"

	"toursales/internal/identity/models"
	"toursales/internal/platform/metrics"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/sentinel"
	"toursales/pkg/requestcontext"
)

// UserStore is the persistence contract the registry depends on.
type UserStore interface {
	FindByCedula(ctx context.Context, cedula string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	CreateIfCedulaAvailable(ctx context.Context, user *models.User) error
}

// Registry resolves buyer identities. FindOrCreate is idempotent with respect
// to cedula; repeated calls never create duplicates.
type Registry struct {
	users   UserStore
	metrics *metrics.Metrics
}

func NewRegistry(users UserStore, m *metrics.Metrics) *Registry {
	return &Registry{users: users, metrics: m}
}

// FindByCedula returns the buyer registered under cedula.
func (r *Registry) FindByCedula(ctx context.Context, cedula string) (*models.User, error) {
	if err := models.ValidateCedula(cedula); err != nil {
		return nil, err
	}
	user, err := r.users.FindByCedula(ctx, cedula)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return user, nil
}

// FindOrCreate returns the existing buyer for cedula, or registers a new one.
// Supplied name and email never overwrite an existing record. A create that
// loses a uniqueness race falls back to reading the winner's row, so the
// result is the same buyer either way.
func (r *Registry) FindOrCreate(ctx context.Context, cedula, name, email string) (*models.User, error) {
	if err := models.ValidateCedula(cedula); err != nil {
		return nil, err
	}

	existing, err := r.users.FindByCedula(ctx, cedula)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}

	user, err := models.NewUser(cedula, name, email, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := r.users.CreateIfCedulaAvailable(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			winner, findErr := r.users.FindByCedula(ctx, cedula)
			if findErr != nil {
				return nil, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to look up user")
			}
			return winner, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	r.metrics.IncrementUsersCreated()
	return user, nil
}
