// Package service implements the purchase orchestrator and the ticket history
// query.
//
// A purchase converts "N spots of tour T for person P" into a durable ticket
// while guaranteeing inventory never goes negative and buyer identity is
// deduplicated by cedula. The ordering is reserve-then-record: spots are taken
// with an atomic conditional decrement first, and every later failure releases
// them, so a crash between steps can strand spots (recoverable) but can never
// oversell (not recoverable).
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	identitymodels "toursales/internal/identity/models"
	inventorymodels "toursales/internal/inventory/models"
	"toursales/internal/platform/metrics"
	"toursales/internal/purchase/models"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/requestcontext"
)

// InventoryLedger is the seat-accounting contract the orchestrator needs.
type InventoryLedger interface {
	Reserve(ctx context.Context, tourID int64, quantity int) (*inventorymodels.Tour, error)
	Release(ctx context.Context, tourID int64, quantity int) error
}

// IdentityRegistry resolves buyers by cedula.
type IdentityRegistry interface {
	FindOrCreate(ctx context.Context, cedula, name, email string) (*identitymodels.User, error)
}

// TicketStore persists tickets and serves the denormalized history.
type TicketStore interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	ListViews(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, error)
}

// IdempotencyGuard deduplicates client resubmits. Optional; a nil guard
// disables the check.
type IdempotencyGuard interface {
	Begin(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// PurchaseRequest is the buyer's intent as accepted by the API.
type PurchaseRequest struct {
	TourID   int64
	Quantity int
	Cedula   string
	Name     string
	Email    string
	// ClientTotal is accepted for API compatibility but never trusted: the
	// server recomputes the total and logs a divergence.
	ClientTotal *decimal.Decimal
	// IdempotencyKey, when present and a guard is configured, makes the
	// purchase safe to resubmit.
	IdempotencyKey string
}

// Receipt is the successful purchase result.
type Receipt struct {
	Ticket *models.Ticket       `json:"ticket"`
	User   *identitymodels.User `json:"user"`
}

// Service ties identity resolution, spot reservation and ticket persistence
// into one purchase flow, and serves the admin history read path.
type Service struct {
	inventory InventoryLedger
	identity  IdentityRegistry
	tickets   TicketStore
	guard     IdempotencyGuard
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(inventory InventoryLedger, identity IdentityRegistry, tickets TicketStore, guard IdempotencyGuard, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		inventory: inventory,
		identity:  identity,
		tickets:   tickets,
		guard:     guard,
		metrics:   m,
		logger:    logger,
	}
}

// Purchase runs the pipeline. Precondition failures are fast and mutate
// nothing; once spots are reserved, any later failure releases them before
// reporting.
func (s *Service) Purchase(ctx context.Context, req PurchaseRequest) (*Receipt, error) {
	if err := s.validate(req); err != nil {
		s.metrics.RecordPurchase("invalid")
		return nil, err
	}

	guardKey, err := s.claimIdempotency(ctx, req)
	if err != nil {
		return nil, err
	}

	receipt, err := s.purchase(ctx, req)
	if err != nil && guardKey != "" {
		// Free the key so the buyer can retry a failed purchase.
		if relErr := s.guard.Release(ctx, guardKey); relErr != nil {
			s.logger.WarnContext(ctx, "failed to release idempotency key",
				"request_id", requestcontext.RequestID(ctx), "error", relErr.Error())
		}
	}
	return receipt, err
}

func (s *Service) purchase(ctx context.Context, req PurchaseRequest) (*Receipt, error) {
	tour, err := s.inventory.Reserve(ctx, req.TourID, req.Quantity)
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeNotFound:
			s.metrics.RecordPurchase("not_found")
		case dErrors.CodeInsufficient:
			s.metrics.RecordPurchase("insufficient")
		default:
			s.metrics.RecordPurchase("error")
		}
		return nil, err
	}

	user, err := s.identity.FindOrCreate(ctx, req.Cedula, req.Name, req.Email)
	if err != nil {
		s.rollbackReservation(ctx, req)
		s.metrics.RecordPurchase("error")
		return nil, err
	}

	total := s.computeTotal(ctx, tour, req)

	ticket := &models.Ticket{
		UserID:    user.ID,
		TourID:    tour.ID,
		Quantity:  req.Quantity,
		Total:     total,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.rollbackReservation(ctx, req)
		s.metrics.RecordPurchase("error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create ticket")
	}

	s.metrics.RecordPurchase("success")
	s.metrics.RecordSale(req.Quantity)
	s.logger.InfoContext(ctx, "ticket purchased",
		"request_id", requestcontext.RequestID(ctx),
		"ticket_id", ticket.ID,
		"tour_id", tour.ID,
		"quantity", req.Quantity,
		"total", total.String(),
	)
	return &Receipt{Ticket: ticket, User: user}, nil
}

// ListTickets returns the purchase history, newest first, with AND-combined
// exact filters.
func (s *Service) ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, error) {
	views, err := s.tickets.ListViews(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tickets")
	}
	return views, nil
}

func (s *Service) validate(req PurchaseRequest) error {
	if req.TourID <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "tourId is required")
	}
	if req.Quantity <= 0 {
		return dErrors.New(dErrors.CodeBadRequest, "quantity must be a positive integer")
	}
	return identitymodels.ValidateCedula(req.Cedula)
}

// claimIdempotency returns the claimed guard key, or "" when the check is not
// in effect (no guard configured or no key supplied).
func (s *Service) claimIdempotency(ctx context.Context, req PurchaseRequest) (string, error) {
	if s.guard == nil || req.IdempotencyKey == "" {
		return "", nil
	}
	key := fmt.Sprintf("%s:%d:%s", req.Cedula, req.TourID, req.IdempotencyKey)
	ok, err := s.guard.Begin(ctx, key)
	if err != nil {
		s.metrics.RecordPurchase("error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "idempotency check failed")
	}
	if !ok {
		s.metrics.RecordPurchase("duplicate")
		return "", dErrors.New(dErrors.CodeConflict, "duplicate purchase request")
	}
	return key, nil
}

// computeTotal is authoritative on the server side: price at time of purchase
// times quantity, rounded to 2 decimal places. A diverging client-supplied
// total is logged and ignored.
func (s *Service) computeTotal(ctx context.Context, tour *inventorymodels.Tour, req PurchaseRequest) decimal.Decimal {
	total := tour.Price.Mul(decimal.NewFromInt(int64(req.Quantity))).Round(2)
	if req.ClientTotal != nil && !req.ClientTotal.Equal(total) {
		s.logger.WarnContext(ctx, "client total diverges from server total",
			"request_id", requestcontext.RequestID(ctx),
			"tour_id", tour.ID,
			"client_total", req.ClientTotal.String(),
			"server_total", total.String(),
		)
	}
	return total
}

func (s *Service) rollbackReservation(ctx context.Context, req PurchaseRequest) {
	if err := s.inventory.Release(ctx, req.TourID, req.Quantity); err != nil {
		// Spots stay stranded until an admin corrects the counter; log loudly.
		s.logger.ErrorContext(ctx, "failed to release reserved spots",
			"request_id", requestcontext.RequestID(ctx),
			"tour_id", req.TourID,
			"quantity", req.Quantity,
			"error", err.Error(),
		)
	}
}
