//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	identitymodels "toursales/internal/identity/models"
	identitystore "toursales/internal/identity/store"
	inventorymodels "toursales/internal/inventory/models"
	inventorystore "toursales/internal/inventory/store"
	"toursales/internal/purchase/models"
	"toursales/pkg/testutil/containers"
)

type PostgresTicketSuite struct {
	suite.Suite
	pg      *containers.PostgresContainer
	users   *identitystore.PostgresStore
	tours   *inventorystore.PostgresStore
	tickets *PostgresStore
	ctx     context.Context
	base    time.Time
}

func (s *PostgresTicketSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.users = identitystore.NewPostgres(s.pg.DB)
	s.tours = inventorystore.NewPostgres(s.pg.DB)
	s.tickets = NewPostgres(s.pg.DB)
}

func (s *PostgresTicketSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "tickets", "tours", "users"))
	s.base = time.Now().UTC().Truncate(time.Microsecond)
}

func TestPostgresTicketSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresTicketSuite))
}

func (s *PostgresTicketSuite) seedUser(cedula, name string) *identitymodels.User {
	user, err := identitymodels.NewUser(cedula, name, "", s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.users.CreateIfCedulaAvailable(s.ctx, user))
	return user
}

func (s *PostgresTicketSuite) seedTour(title string) *inventorymodels.Tour {
	tour := &inventorymodels.Tour{
		Title:          title,
		Price:          decimal.NewFromInt(100000),
		Capacity:       20,
		AvailableSpots: 20,
		CreatedAt:      s.base,
		UpdatedAt:      s.base,
	}
	s.Require().NoError(s.tours.Create(s.ctx, tour))
	return tour
}

func (s *PostgresTicketSuite) seedTicket(user *identitymodels.User, tour *inventorymodels.Tour, qty int, at time.Time) *models.Ticket {
	ticket := &models.Ticket{
		UserID:    user.ID,
		TourID:    tour.ID,
		Quantity:  qty,
		Total:     decimal.NewFromInt(int64(qty) * 100000),
		CreatedAt: at,
	}
	s.Require().NoError(s.tickets.Create(s.ctx, ticket))
	return ticket
}

func (s *PostgresTicketSuite) TestListViews() {
	ana := s.seedUser("1111111111", "Ana")
	luis := s.seedUser("2222222222", "Luis")
	trek := s.seedTour("Lost City Trek")

	first := s.seedTicket(ana, trek, 2, s.base)
	second := s.seedTicket(luis, trek, 1, s.base.Add(time.Hour))

	s.Run("newest first with joined columns", func() {
		views, err := s.tickets.ListViews(s.ctx, models.TicketFilter{})
		s.Require().NoError(err)
		s.Require().Len(views, 2)

		s.Equal(second.ID, views[0].ID)
		s.Equal("Luis", views[0].Name)
		s.Equal("Lost City Trek", views[0].Tour)
		s.True(decimal.NewFromInt(100000).Equal(views[0].Total), "got total %s", views[0].Total)

		s.Equal(first.ID, views[1].ID)
		s.Equal("1111111111", views[1].Cedula)
	})

	s.Run("filter by cedula", func() {
		views, err := s.tickets.ListViews(s.ctx, models.TicketFilter{Cedula: "1111111111"})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal("Ana", views[0].Name)
	})

	s.Run("filter by ticket id", func() {
		views, err := s.tickets.ListViews(s.ctx, models.TicketFilter{TicketID: second.ID})
		s.Require().NoError(err)
		s.Require().Len(views, 1)
		s.Equal(second.ID, views[0].ID)
	})

	s.Run("filters combine with AND", func() {
		views, err := s.tickets.ListViews(s.ctx, models.TicketFilter{TicketID: second.ID, Cedula: "1111111111"})
		s.Require().NoError(err)
		s.Empty(views)
	})
}

func (s *PostgresTicketSuite) TestListViewsSurvivesTourDeletion() {
	ana := s.seedUser("1111111111", "Ana")
	trek := s.seedTour("Lost City Trek")
	s.seedTicket(ana, trek, 2, s.base)

	s.Require().NoError(s.tours.Delete(s.ctx, trek.ID))

	views, err := s.tickets.ListViews(s.ctx, models.TicketFilter{})
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal("", views[0].Tour)
	s.Equal("Ana", views[0].Name)
}
