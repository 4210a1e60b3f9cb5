package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/vendordesk/api/internal/config"
	"github.com/vendordesk/api/internal/handler"
	"github.com/vendordesk/api/internal/metrics"
	"github.com/vendordesk/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// rec and gatherer may be nil, in which case /metrics is not mounted.
func New(cfg *config.Config, mgr handler.OrderManager, hub *ws.Hub, rec *metrics.Recorder, gatherer prometheus.Gatherer) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if rec != nil {
		r.Use(rec.Middleware)
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	}

	// Dashboard live feed
	r.Get("/ws/orders", ws.Handler(hub, cfg.AllowedOrigins))

	orderHandler := handler.NewOrderHandler(mgr)
	r.Route("/orders", orderHandler.RegisterRoutes)

	log.Println("Router initialized with all handlers")
	return r
}
