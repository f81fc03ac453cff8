// Package metrics exposes Prometheus instruments for workflow runs, steps,
// and external provider calls.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recon"

var (
	initOnce sync.Once

	runsTotal         *prometheus.CounterVec
	stepsTotal        *prometheus.CounterVec
	stepDuration      *prometheus.HistogramVec
	providerCalls     *prometheus.CounterVec
	providerDurations *prometheus.HistogramVec
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		runsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Workflow runs by agent and terminal status.",
			},
			[]string{"agent", "status"},
		)

		stepsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Workflow steps by agent, step, and terminal status.",
			},
			[]string{"agent", "step", "status"},
		)

		stepDuration = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Duration of workflow step execution in seconds.",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"agent", "step"},
		)

		providerCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_calls_total",
				Help:      "External provider calls by provider and outcome.",
			},
			[]string{"provider", "outcome"},
		)

		providerDurations = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_call_duration_seconds",
				Help:      "Latency of external provider calls in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		)

		prometheus.MustRegister(
			runsTotal,
			stepsTotal,
			stepDuration,
			providerCalls,
			providerDurations,
		)
	})
}

func IncRun(agent, status string) {
	Init()
	runsTotal.WithLabelValues(agent, status).Inc()
}

func IncStep(agent, step, status string) {
	Init()
	stepsTotal.WithLabelValues(agent, step, status).Inc()
}

func ObserveStep(agent, step string, d time.Duration) {
	Init()
	stepDuration.WithLabelValues(agent, step).Observe(d.Seconds())
}

// ObserveProviderCall records one provider call. An empty outcome is
// reported as "ok".
func ObserveProviderCall(provider, outcome string, d time.Duration) {
	Init()
	if outcome == "" {
		outcome = "ok"
	}
	providerCalls.WithLabelValues(provider, outcome).Inc()
	providerDurations.WithLabelValues(provider).Observe(d.Seconds())
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	Init()
	return promhttp.Handler()
}
