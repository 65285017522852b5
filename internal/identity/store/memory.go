// Package store provides user persistence. The in-memory implementation backs
// unit tests and dependency-free local runs; PostgresStore is the production
// path.
package store

import (
	"context"
	"sync"

	"toursales/internal/identity/models"
	"toursales/pkg/platform/sentinel"
)

// InMemory keeps users in a map guarded by a mutex. Cedula uniqueness is
// enforced under the same lock that assigns IDs, so concurrent registrations
// of one cedula yield exactly one user.
type InMemory struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]*models.User
	byCedula map[string]int64
}

func NewInMemory() *InMemory {
	return &InMemory{
		nextID:   1,
		byID:     make(map[int64]*models.User),
		byCedula: make(map[string]int64),
	}
}

func (s *InMemory) FindByCedula(_ context.Context, cedula string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCedula[cedula]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyUser(s.byID[id]), nil
}

func (s *InMemory) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyUser(user), nil
}

// CreateIfCedulaAvailable inserts the user unless the cedula is already
// registered, assigning the ID on success.
func (s *InMemory) CreateIfCedulaAvailable(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byCedula[user.Cedula]; exists {
		return sentinel.ErrAlreadyUsed
	}
	user.ID = s.nextID
	s.nextID++
	s.byID[user.ID] = copyUser(user)
	s.byCedula[user.Cedula] = user.ID
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}
