package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/bilanhub/internal/app/system/metrics"
	"github.com/go-chi/chi/v5"
)

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := metrics.New()
	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Post("/api/bilans/{proc}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/bilans/updateStatus", nil))
	m.ObserveExternal("gemini", errors.New("boom"))
	var nilMetrics *metrics.Metrics
	nilMetrics.ObserveExternal("gemini", nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()

	for _, want := range []string{
		`bilanhub_http_requests_total{method="POST",route="/api/bilans/{proc}",status="409"} 1`,
		`bilanhub_external_calls_total{outcome="error",service="gemini"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
