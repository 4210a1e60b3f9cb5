package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vendordesk/api/internal/config"
	"github.com/vendordesk/api/internal/handler"
	"github.com/vendordesk/api/internal/metrics"
	"github.com/vendordesk/api/internal/router"
	"github.com/vendordesk/api/internal/seed"
	"github.com/vendordesk/api/internal/service"
	"github.com/vendordesk/api/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	mgr := service.NewManager(
		service.WithArrivalInterval(cfg.FeedInterval),
		service.WithArrivalCap(cfg.FeedCap),
		service.WithArrivalLogging(cfg.FeedVerbose),
	)

	orders, err := loadOrders(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to load orders: %v", err)
	}
	if err := mgr.Seed(orders...); err != nil {
		log.Fatalf("Failed to seed orders: %v", err)
	}
	log.Printf("Loaded %d orders", len(orders))

	hub := ws.NewHub()
	go hub.Run(ctx)

	mgr.Subscribe(handler.EventRelay(hub))
	mgr.Subscribe(rec.ObserveEvent)

	if cfg.FeedEnabled {
		if err := mgr.Start(ctx); err != nil {
			log.Fatalf("Failed to start order feed: %v", err)
		}
		log.Printf("Order feed started (every %s, cap %d)", cfg.FeedInterval, cfg.FeedCap)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router.New(cfg, mgr, hub, rec, reg),
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown: %v", err)
	}

	mgr.Stop()
	log.Println("Server stopped")
}

// loadOrders reads the initial collection from Postgres when DATABASE_URL is
// set, and falls back to the built-in demo set otherwise.
func loadOrders(ctx context.Context, cfg *config.Config) ([]service.Order, error) {
	if cfg.DatabaseURL == "" {
		return seed.Demo(time.Now()), nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return seed.LoadPostgres(ctx, pool)
}
