// Package metrics exposes Prometheus metrics for the HTTP surface and the
// effect pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers in one
// process do not collide.
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	effectsApplied *prometheus.CounterVec
	effectsSkipped *prometheus.CounterVec
	applyDuration  *prometheus.HistogramVec
	applySamples   prometheus.Counter
}

// NewCollector registers every metric under namespace.
func NewCollector(namespace string) *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		effectsApplied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "effects_applied_total",
				Help:      "Effects that made it into an applied chain",
			},
			[]string{"effect"},
		),
		effectsSkipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "effects_skipped_total",
				Help:      "Requested effects dropped while building a chain",
			},
			[]string{"reason"},
		),
		applyDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "apply_duration_seconds",
				Help:      "Time spent building and running effect chains",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),
		applySamples: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "apply_samples_total",
			Help:      "Sample frames processed by effect chains",
		}),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordHTTPRequest counts one finished request. route is the matched
// pattern, not the raw path.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordEffectApplied counts one effect in an applied chain.
func (c *Collector) RecordEffectApplied(effect string) {
	c.effectsApplied.WithLabelValues(effect).Inc()
}

// RecordEffectSkipped counts one dropped effect by reason.
func (c *Collector) RecordEffectSkipped(reason string) {
	c.effectsSkipped.WithLabelValues(reason).Inc()
}

// ObserveApply records one apply call of frames sample frames.
func (c *Collector) ObserveApply(d time.Duration, frames int, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	c.applyDuration.WithLabelValues(outcome).Observe(d.Seconds())

	if err == nil {
		c.applySamples.Add(float64(frames))
	}
}
