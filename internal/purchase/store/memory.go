// Package store provides ticket persistence and the denormalized history
// listing.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	identitymodels "toursales/internal/identity/models"
	inventorymodels "toursales/internal/inventory/models"
	"toursales/internal/purchase/models"
	"toursales/pkg/platform/sentinel"
)

// userLookup and tourLookup resolve the joined columns of a TicketView. The
// in-memory user and tour stores satisfy them directly.
type userLookup interface {
	FindByID(ctx context.Context, id int64) (*identitymodels.User, error)
	FindByCedula(ctx context.Context, cedula string) (*identitymodels.User, error)
}

type tourLookup interface {
	FindByID(ctx context.Context, id int64) (*inventorymodels.Tour, error)
}

// InMemory keeps tickets in insertion order and joins buyer and tour data at
// read time, mirroring the relational listing. A deleted tour leaves the view
// with an empty title; the row itself survives.
type InMemory struct {
	mu      sync.RWMutex
	nextID  int64
	tickets []*models.Ticket
	users   userLookup
	tours   tourLookup
}

func NewInMemory(users userLookup, tours tourLookup) *InMemory {
	return &InMemory{nextID: 1, users: users, tours: tours}
}

func (s *InMemory) Create(_ context.Context, ticket *models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket.ID = s.nextID
	s.nextID++
	c := *ticket
	s.tickets = append(s.tickets, &c)
	return nil
}

func (s *InMemory) ListViews(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, error) {
	s.mu.RLock()
	tickets := make([]*models.Ticket, len(s.tickets))
	copy(tickets, s.tickets)
	s.mu.RUnlock()

	views := make([]models.TicketView, 0, len(tickets))
	for _, t := range tickets {
		if filter.TicketID != 0 && t.ID != filter.TicketID {
			continue
		}

		var name, cedula string
		if user, err := s.users.FindByID(ctx, t.UserID); err == nil {
			name, cedula = user.Name, user.Cedula
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		if filter.Cedula != "" && cedula != filter.Cedula {
			continue
		}

		var title string
		if tour, err := s.tours.FindByID(ctx, t.TourID); err == nil {
			title = tour.Title
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}

		views = append(views, models.TicketView{
			ID:           t.ID,
			Name:         name,
			Cedula:       cedula,
			Tour:         title,
			Quantity:     t.Quantity,
			Total:        toAmount(t.Total),
			DatePurchase: t.CreatedAt,
		})
	}

	// Newest first; ties broken by ID so ordering is deterministic.
	sort.SliceStable(views, func(i, j int) bool {
		if views[i].DatePurchase.Equal(views[j].DatePurchase) {
			return views[i].ID > views[j].ID
		}
		return views[i].DatePurchase.After(views[j].DatePurchase)
	})
	return views, nil
}
