package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salesdash/salesdash/internal/source"
)

var _ source.Observer = (*Metrics)(nil)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	return rr.Body.String()
}

func TestMetricsHandlerExposesPrometheusMetrics(t *testing.T) {
	metrics := NewMetrics()
	metrics.CacheMiss("sul", "2021")

	body := scrape(t, metrics)
	if !strings.Contains(body, "salesdash_source_cache_lookups_total") {
		t.Fatalf("expected body to contain salesdash_source_cache_lookups_total, got: %s", body)
	}
}

func TestMetricsMiddlewareRecordsRequest(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	routeCtx := chi.NewRouteContext()
	routeCtx.RoutePatterns = append(routeCtx.RoutePatterns, "/test")

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	req = req.WithContext(ctx)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusTeapot {
		t.Fatalf("expected status %d, got %d", http.StatusTeapot, rr.Code)
	}

	metricsBody := scrape(t, metrics)
	if !strings.Contains(metricsBody, "http_requests_total{code=\"418\",route=\"/test\"} 1") {
		t.Fatalf("expected metrics to record request, got: %s", metricsBody)
	}
	if !strings.Contains(metricsBody, "http_request_duration_seconds_bucket{route=\"/test\"") {
		t.Fatalf("expected duration histogram to be present, got: %s", metricsBody)
	}
}

func TestMetricsObserveFetchCache(t *testing.T) {
	metrics := NewMetrics()
	metrics.CacheMiss("all", "all")
	metrics.CacheHit("all", "all")
	metrics.CacheHit("all", "all")
	metrics.FetchCompleted("all", "all", 250*time.Millisecond, nil)
	metrics.FetchCompleted("norte", "2020", time.Second, errors.New("offline"))

	body := scrape(t, metrics)
	for _, want := range []string{
		`salesdash_source_cache_lookups_total{region="all",result="hit",year="all"} 2`,
		`salesdash_source_cache_lookups_total{region="all",result="miss",year="all"} 1`,
		`salesdash_source_fetch_total{outcome="ok",region="all",year="all"} 1`,
		`salesdash_source_fetch_total{outcome="error",region="norte",year="2020"} 1`,
		`salesdash_source_fetch_duration_seconds_count{region="norte"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics, got: %s", want, body)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.CacheHit("all", "all")
	metrics.FetchCompleted("all", "all", time.Second, nil)

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics, got %d", rr.Code)
	}
}
