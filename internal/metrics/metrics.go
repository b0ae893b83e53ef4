// Package metrics exposes Prometheus counters for generation attempts and
// calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/n0madic/go-genpipe/internal/types"
)

const namespace = "genpipe"

// Collector owns the pipeline's collectors and the registry they live on.
// A nil *Collector ignores every observation.
type Collector struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	callsTotal      *prometheus.CounterVec
}

// NewCollector registers the collectors on registry, creating a fresh one
// when registry is nil.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	c := &Collector{
		registry: registry,
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Candidate attempts by wire shape and outcome.",
		}, []string{"shape", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "attempt_duration_seconds",
			Help:      "Wall time of one candidate attempt.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"shape"}),
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Logical generation calls by path and outcome.",
		}, []string{"path", "outcome"}),
	}
	registry.MustRegister(c.attemptsTotal, c.attemptDuration, c.callsTotal)
	return c
}

// ObserveAttempt records one candidate attempt.
func (c *Collector) ObserveAttempt(a types.AttemptResult) {
	if c == nil {
		return
	}
	shape := string(a.Shape)
	if shape == "" {
		shape = string(types.ShapeUnknown)
	}
	c.attemptsTotal.WithLabelValues(shape, attemptOutcome(a)).Inc()
	c.attemptDuration.WithLabelValues(shape).Observe((time.Duration(a.ElapsedMs) * time.Millisecond).Seconds())
}

// ObserveCall records the end of one logical call.
func (c *Collector) ObserveCall(path types.Path, kind types.ErrorKind) {
	if c == nil {
		return
	}
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	c.callsTotal.WithLabelValues(string(path), outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

func attemptOutcome(a types.AttemptResult) string {
	if a.OK {
		return "ok"
	}
	if a.ErrorKind == "" {
		return "error"
	}
	return string(a.ErrorKind)
}
