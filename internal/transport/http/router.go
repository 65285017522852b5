// Package httptransport assembles the public HTTP surface: the purchase and
// history endpoints, the user registry, the tour catalog, health and metrics.
package httptransport

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"toursales/internal/platform/metrics"
	"toursales/internal/platform/middleware"
	platformredis "toursales/internal/platform/redis"
	purchasehandler "toursales/internal/purchase/handler"
	"toursales/pkg/platform/httputil"
)

// Deps carries everything the router wires together. DB and Redis are nil
// when unconfigured; health reporting degrades gracefully.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Tours    *TourHandler
	Users    *UserHandler
	Tickets  *purchasehandler.Handler
	DB       *sql.DB
	Redis    *platformredis.Client
	MediaDir string
}

// NewRouter builds the chi router with the shared middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		deps.Tickets.Register(r)
		deps.Users.Register(r)
		deps.Tours.Register(r)
		r.Get("/healthz", handleHealth(deps))
	})

	r.Handle("/metrics", promhttp.Handler())
	if deps.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(deps.MediaDir))))
	}
	return r
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				status["status"] = "degraded"
				status["postgres"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
				code = http.StatusServiceUnavailable
			}
		}
		httputil.WriteJSON(w, code, status)
	}
}
