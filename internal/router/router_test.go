package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendordesk/api/internal/config"
	"github.com/vendordesk/api/internal/metrics"
	"github.com/vendordesk/api/internal/router"
	"github.com/vendordesk/api/internal/seed"
	"github.com/vendordesk/api/internal/service"
	"github.com/vendordesk/api/internal/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC))
	mgr := service.NewManager(service.WithClock(clock))
	require.NoError(t, mgr.Seed(seed.Demo(clock.Now())...))

	ctx, cancel := context.WithCancel(context.Background())
	hub := ws.NewHub()
	go hub.Run(ctx)

	reg := prometheus.NewRegistry()
	rec := metrics.New(reg)
	cfg := &config.Config{
		Port:           "0",
		AllowedOrigins: []string{"http://localhost:5173"},
	}

	srv := httptest.NewServer(router.New(cfg, mgr, hub, rec, reg))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0.0"}`, body)
}

func TestOrdersMounted(t *testing.T) {
	srv := newTestServer(t)

	code, body := get(t, srv.URL+"/orders?view=incoming")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"ORD-1001"`)
	assert.NotContains(t, body, `"ORD-1003"`)
}

func TestMetricsExposeRequests(t *testing.T) {
	srv := newTestServer(t)

	get(t, srv.URL+"/orders/overview")

	code, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "vendordesk_http_requests_total")
	assert.Contains(t, body, `path="/orders/overview"`)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/orders/ORD-1001/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
