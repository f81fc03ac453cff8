package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/recon/internal/metrics"
)

func TestHandlerExposesRecordedSeries(t *testing.T) {
	metrics.IncRun("initiatives", "succeeded")
	metrics.IncStep("initiatives", "analyze_findings", "succeeded")
	metrics.ObserveStep("initiatives", "analyze_findings", 120*time.Millisecond)
	metrics.ObserveProviderCall("exa", "", 80*time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	text := string(body)

	for _, want := range []string{
		`recon_runs_total{agent="initiatives",status="succeeded"}`,
		`recon_steps_total{agent="initiatives",status="succeeded",step="analyze_findings"}`,
		`recon_provider_calls_total{outcome="ok",provider="exa"}`,
		`recon_step_duration_seconds_count{agent="initiatives",step="analyze_findings"}`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("metrics output missing %s", want)
		}
	}
}

func TestInitIdempotent(t *testing.T) {
	metrics.Init()
	metrics.Init()
}
