// Package handler exposes the purchase pipeline over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"toursales/internal/platform/middleware"
	"toursales/internal/purchase/models"
	"toursales/internal/purchase/service"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/platform/httputil"
)

// Service defines the purchase operations the handler delegates to.
type Service interface {
	Purchase(ctx context.Context, req service.PurchaseRequest) (*service.Receipt, error)
	ListTickets(ctx context.Context, filter models.TicketFilter) ([]models.TicketView, error)
}

// Handler handles ticket endpoints.
type Handler struct {
	purchases Service
	logger    *slog.Logger
}

func New(purchases Service, logger *slog.Logger) *Handler {
	return &Handler{purchases: purchases, logger: logger}
}

// Register mounts the ticket routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tickets", h.handleCreateTicket)
	r.Get("/tickets", h.handleListTickets)
}

type createTicketRequest struct {
	TourID         int64            `json:"tourId"`
	Quantity       int              `json:"quantity"`
	Cedula         string           `json:"cedula"`
	Name           string           `json:"name"`
	Email          string           `json:"email"`
	Total          *decimal.Decimal `json:"total"`
	IdempotencyKey string           `json:"idempotencyKey"`
}

func (h *Handler) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = r.Header.Get("X-Idempotency-Key")
	}

	receipt, err := h.purchases.Purchase(ctx, service.PurchaseRequest{
		TourID:         req.TourID,
		Quantity:       req.Quantity,
		Cedula:         req.Cedula,
		Name:           req.Name,
		Email:          req.Email,
		ClientTotal:    req.Total,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		if dErrors.CodeOf(err) == dErrors.CodeInternal {
			h.logger.ErrorContext(ctx, "purchase failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err.Error(),
			)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, receipt)
}

func (h *Handler) handleListTickets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.TicketFilter
	if raw := r.URL.Query().Get("ticketId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "ticketId must be a number"))
			return
		}
		filter.TicketID = id
	}
	filter.Cedula = r.URL.Query().Get("cedula")

	views, err := h.purchases.ListTickets(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list tickets",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"data": views})
}
