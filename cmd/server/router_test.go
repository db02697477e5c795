package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compliance-panel/internal/platform/config"
	"compliance-panel/pkg/testutil"
)

func newTestServer(t *testing.T, requestsPerMinute int) http.Handler {
	t.Helper()
	cfg := config.Server{
		Environment: config.EnvironmentDev,
		AdminToken:  testutil.AdminToken,
		Geo:         config.GeoConfig{DeviceTimeout: time.Second, NetworkTimeout: time.Second},
		Widget:      config.WidgetConfig{SigningKey: "router-test-signing-key", TokenTTL: time.Hour},
		RateLimit:   config.RateLimitConfig{RequestsPerMinute: requestsPerMinute},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := buildApp(context.Background(), cfg, log, prometheus.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(a.close)
	return newRouter(cfg, log, a)
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, 60)
	rr := testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHealthReportsFailingDependency(t *testing.T) {
	h := healthHandler(map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	rr := testutil.DoRequest(h, testutil.NewRawRequest(t, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"postgres":"ok","redis":"connection refused"}}`, rr.Body.String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	router := newTestServer(t, 60)

	for _, path := range []string{"/api/policies", "/api/widgets", "/api/clients", "/api/dashboard/stats"} {
		rr := testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, path, ""))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)

		rr = testutil.DoRequest(router, testutil.WithAdminToken(testutil.NewRawRequest(t, http.MethodGet, path, "")))
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestWidgetDeployAndEmbed(t *testing.T) {
	router := newTestServer(t, 60)

	rr := testutil.DoRequest(router, testutil.WithAdminToken(testutil.NewJSONRequest(t, http.MethodPost, "/api/widgets",
		map[string]any{"name": "Banner", "type": "cookie-banner"})))
	require.Equal(t, http.StatusCreated, rr.Code)
	widgetID := testutil.DecodeJSON[map[string]any](t, rr)["id"].(string)

	rr = testutil.DoRequest(router, testutil.WithAdminToken(testutil.NewRawRequest(t, http.MethodPost, "/api/widgets/"+widgetID+"/deploy", "")))
	require.Equal(t, http.StatusOK, rr.Code)
	token := testutil.DecodeJSON[map[string]any](t, rr)["embed_token"].(string)

	rr = testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, "/embed/widgets/"+widgetID+"?token="+token, ""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, "/embed/widgets/"+widgetID+"?token=forged", ""))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := testutil.NewRawRequest(t, http.MethodPost, "/embed/widgets/"+widgetID+"/impressions?token="+token, "")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	rr = testutil.DoRequest(router, req)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.JSONEq(t, `{"device_class":"desktop"}`, rr.Body.String())
}

func TestPublicRoutesAreRateLimited(t *testing.T) {
	router := newTestServer(t, 2)

	for range 2 {
		rr := testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, "/public/jurisdiction/recommendations?country=de", ""))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	rr := testutil.DoRequest(router, testutil.NewRawRequest(t, http.MethodGet, "/public/jurisdiction/recommendations?country=de", ""))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Admin routes do not share the public budget.
	rr = testutil.DoRequest(router, testutil.WithAdminToken(testutil.NewRawRequest(t, http.MethodGet, "/api/policies", "")))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestForwardedHeadersDoNotResetRateLimit(t *testing.T) {
	router := newTestServer(t, 1)

	first := testutil.NewRawRequest(t, http.MethodGet, "/public/jurisdiction/recommendations?country=de", "")
	first.Header.Set("X-Forwarded-For", "203.0.113.1")
	require.Equal(t, http.StatusOK, testutil.DoRequest(router, first).Code)

	// Same socket peer, new claimed client: the peer is not a trusted proxy.
	second := testutil.NewRawRequest(t, http.MethodGet, "/public/jurisdiction/recommendations?country=de", "")
	second.Header.Set("X-Forwarded-For", "203.0.113.2")
	second.Header.Set("X-Real-IP", "203.0.113.3")
	assert.Equal(t, http.StatusTooManyRequests, testutil.DoRequest(router, second).Code)
}
