// Package metrics exposes the progress of a run to Prometheus.
package metrics

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"blazehammer/internal/runner"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is a runner.Observer backed by its own registry, so several runs in one
// process never collide on metric names.
type Collector struct {
	Registry *prometheus.Registry

	// RequestsTotal counts responses by status code.
	RequestsTotal *prometheus.CounterVec

	// FailuresTotal counts requests that got no response.
	FailuresTotal prometheus.Counter

	Inflight prometheus.Gauge

	// LatencySeconds observes successful requests only.
	LatencySeconds prometheus.Histogram
}

var _ runner.Observer = (*Collector)(nil)

// NewCollector registers the run metrics, labeled with the run id.
func NewCollector(runID string) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"run": runID}

	return &Collector{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "blazehammer_requests_total",
				Help:        "Requests that received a response, by status code",
				ConstLabels: constLabels,
			},
			[]string{"code"},
		),
		FailuresTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name:        "blazehammer_failures_total",
				Help:        "Requests that failed before a response arrived",
				ConstLabels: constLabels,
			},
		),
		Inflight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name:        "blazehammer_inflight_requests",
				Help:        "Requests currently executing",
				ConstLabels: constLabels,
			},
		),
		LatencySeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:        "blazehammer_request_duration_seconds",
				Help:        "Duration of successful requests",
				Buckets:     prometheus.ExponentialBuckets(0.001, 2, 16),
				ConstLabels: constLabels,
			},
		),
	}
}

func (c *Collector) ObserveInflight(n int64) {
	c.Inflight.Set(float64(n))
}

func (c *Collector) ObserveOutcome(o runner.Outcome) {
	if !o.Success {
		c.FailuresTotal.Inc()
		return
	}

	c.RequestsTotal.WithLabelValues(strconv.Itoa(o.StatusCode)).Inc()
	c.LatencySeconds.Observe(o.Elapsed.Seconds())
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}

// Serve exposes /metrics on addr in the background. Shut the returned server down
// when the run is over.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()

	return server
}
