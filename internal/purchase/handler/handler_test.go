package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identitymodels "toursales/internal/identity/models"
	"toursales/internal/purchase/models"
	"toursales/internal/purchase/service"
	dErrors "toursales/pkg/domain-errors"
	"toursales/pkg/testutil"
)

// stubService records the last request and replies with canned results.
type stubService struct {
	lastPurchase *service.PurchaseRequest
	lastFilter   *models.TicketFilter
	receipt      *service.Receipt
	views        []models.TicketView
	err          error
}

func (s *stubService) Purchase(_ context.Context, req service.PurchaseRequest) (*service.Receipt, error) {
	s.lastPurchase = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.receipt, nil
}

func (s *stubService) ListTickets(_ context.Context, filter models.TicketFilter) ([]models.TicketView, error) {
	s.lastFilter = &filter
	if s.err != nil {
		return nil, s.err
	}
	return s.views, nil
}

func newRouter(svc Service) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return r
}

func TestCreateTicket(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubService{
			receipt: &service.Receipt{
				Ticket: &models.Ticket{ID: 1, TourID: 3, Quantity: 2, Total: decimal.NewFromInt(200000)},
				User:   &identitymodels.User{ID: 5, Cedula: "1234567890", Name: "Ana"},
			},
		}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId":   3,
			"quantity": 2,
			"cedula":   "1234567890",
			"name":     "Ana",
			"total":    "200000",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		require.NotNil(t, svc.lastPurchase)
		assert.Equal(t, int64(3), svc.lastPurchase.TourID)
		assert.Equal(t, 2, svc.lastPurchase.Quantity)
		require.NotNil(t, svc.lastPurchase.ClientTotal)
		assert.True(t, svc.lastPurchase.ClientTotal.Equal(decimal.NewFromInt(200000)))

		body := testutil.UnmarshalResponse[map[string]any](t, rr)
		assert.Contains(t, *body, "ticket")
		assert.Contains(t, *body, "user")
	})

	t.Run("insufficient spots maps to 400", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeInsufficient, "not enough available spots")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId": 3, "quantity": 99, "cedula": "1234567890",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(t, rr, "not enough available spots")
	})

	t.Run("unknown tour maps to 404", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeNotFound, "tour not found")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId": 999, "quantity": 1, "cedula": "1234567890",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorMessage(t, rr, "tour not found")
	})

	t.Run("duplicate submit maps to 409", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeConflict, "duplicate purchase request")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId": 3, "quantity": 1, "cedula": "1234567890", "idempotencyKey": "abc",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusConflict)
	})

	t.Run("malformed body", func(t *testing.T) {
		router := newRouter(&stubService{})

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", nil)
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(t, rr, "invalid request body")
	})

	t.Run("idempotency key falls back to header", func(t *testing.T) {
		svc := &stubService{receipt: &service.Receipt{
			Ticket: &models.Ticket{ID: 1},
			User:   &identitymodels.User{ID: 1},
		}}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId": 3, "quantity": 1, "cedula": "1234567890",
		})
		req.Header.Set("X-Idempotency-Key", "header-key")
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		require.NotNil(t, svc.lastPurchase)
		assert.Equal(t, "header-key", svc.lastPurchase.IdempotencyKey)
	})

	t.Run("internal error hides detail", func(t *testing.T) {
		svc := &stubService{err: dErrors.New(dErrors.CodeInternal, "pg: connection refused")}
		router := newRouter(svc)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/tickets", map[string]any{
			"tourId": 3, "quantity": 1, "cedula": "1234567890",
		})
		rr := testutil.DoRequest(router, req)

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		testutil.AssertErrorMessage(t, rr, "internal error")
	})
}

func TestListTickets(t *testing.T) {
	sampleViews := []models.TicketView{
		{ID: 2, Name: "Ana", Cedula: "1234567890", Tour: "Lost City Trek", Quantity: 2, Total: decimal.NewFromInt(200000), DatePurchase: time.Now()},
	}

	t.Run("wraps results in a data envelope", func(t *testing.T) {
		svc := &stubService{views: sampleViews}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/tickets", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		body := testutil.UnmarshalResponse[map[string][]models.TicketView](t, rr)
		require.Len(t, (*body)["data"], 1)
		assert.Equal(t, "Ana", (*body)["data"][0].Name)
	})

	t.Run("passes filters through", func(t *testing.T) {
		svc := &stubService{}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/tickets?ticketId=7&cedula=1234567890", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		require.NotNil(t, svc.lastFilter)
		assert.Equal(t, int64(7), svc.lastFilter.TicketID)
		assert.Equal(t, "1234567890", svc.lastFilter.Cedula)
	})

	t.Run("non-numeric ticketId is rejected", func(t *testing.T) {
		svc := &stubService{}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/tickets?ticketId=abc", nil))

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorMessage(t, rr, "ticketId must be a number")
		assert.Nil(t, svc.lastFilter, "the service must not be called")
	})

	t.Run("empty result is an empty array", func(t *testing.T) {
		svc := &stubService{views: []models.TicketView{}}
		router := newRouter(svc)

		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/tickets", nil))

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `{"data":[]}`, rr.Body.String())
	})
}
