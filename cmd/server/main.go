package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	identityservice "toursales/internal/identity/service"
	identitystore "toursales/internal/identity/store"
	inventoryservice "toursales/internal/inventory/service"
	inventorystore "toursales/internal/inventory/store"
	"toursales/internal/media"
	"toursales/internal/platform/config"
	"toursales/internal/platform/httpserver"
	"toursales/internal/platform/logger"
	"toursales/internal/platform/metrics"
	"toursales/internal/platform/postgres"
	platformredis "toursales/internal/platform/redis"
	purchasehandler "toursales/internal/purchase/handler"
	purchaseservice "toursales/internal/purchase/service"
	purchasestore "toursales/internal/purchase/store"
	httptransport "toursales/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres unavailable", "error", err.Error())
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("schema setup failed", "error", err.Error())
			os.Exit(1)
		}
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	m := metrics.New()

	// Postgres when configured, in-memory otherwise. The in-memory stores keep
	// local runs dependency free; semantics are identical.
	var (
		users   identityservice.UserStore
		tours   inventoryservice.TourStore
		tickets purchaseservice.TicketStore
	)
	if db != nil {
		users = identitystore.NewPostgres(db)
		tours = inventorystore.NewPostgres(db)
		tickets = purchasestore.NewPostgres(db)
	} else {
		memUsers := identitystore.NewInMemory()
		memTours := inventorystore.NewInMemory()
		users = memUsers
		tours = memTours
		tickets = purchasestore.NewInMemory(memUsers, memTours)
		log.Info("no postgres configured, using in-memory stores")
	}

	var guard purchaseservice.IdempotencyGuard
	if redisClient != nil {
		guard = purchasestore.NewRedisGuard(redisClient.Client)
	}

	registry := identityservice.NewRegistry(users, m)
	ledger := inventoryservice.NewLedger(tours)
	purchases := purchaseservice.New(ledger, registry, tickets, guard, m, log)
	images := media.NewFSStore(cfg.Media)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  m,
		Tours:    httptransport.NewTourHandler(ledger, images, log),
		Users:    httptransport.NewUserHandler(registry),
		Tickets:  purchasehandler.New(purchases, log),
		DB:       db,
		Redis:    redisClient,
		MediaDir: cfg.Media.Dir,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting toursales", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		os.Exit(1)
	}
}
