package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vendordesk/api/internal/enum"
	"github.com/vendordesk/api/internal/service"
)

// Recorder holds the HTTP and order lifecycle instruments.
type Recorder struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	orderEvents         *prometheus.CounterVec
	orderTransitions    *prometheus.CounterVec
	ordersCreated       prometheus.Counter
}

// New registers the instruments on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendordesk_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "vendordesk_http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "path", "status"},
		),
		orderEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendordesk_order_events_total",
				Help: "Order collection changes by event type",
			},
			[]string{"type"},
		),
		orderTransitions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vendordesk_order_transitions_total",
				Help: "Orders moved into each status",
			},
			[]string{"status"},
		),
		ordersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vendordesk_orders_synthesized_total",
			Help: "Orders produced by the synthetic feed",
		}),
	}
}

const unmatchedRoute = "unmatched"

// Middleware records request count and latency per route pattern.
func (rec *Recorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// Unrouted paths share one label to keep cardinality bounded.
		path := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := []string{r.Method, path, strconv.Itoa(status)}

		rec.httpRequestsTotal.WithLabelValues(labels...).Inc()
		rec.httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	})
}

// ObserveEvent is a service.Listener counting lifecycle changes.
func (rec *Recorder) ObserveEvent(ev service.Event) {
	rec.orderEvents.WithLabelValues(ev.Type).Inc()

	switch ev.Type {
	case enum.EventOrderCreated:
		rec.ordersCreated.Add(float64(len(ev.Orders)))
	case enum.EventOrderStatusChanged, enum.EventOrdersBulk:
		for _, o := range ev.Orders {
			rec.orderTransitions.WithLabelValues(string(o.Status)).Inc()
		}
	}
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
