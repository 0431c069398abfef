package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "upload_manager"

// Metrics bundles the collectors exported by the service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// StorageAttempts counts storage provider calls by operation and outcome.
	StorageAttempts *prometheus.CounterVec
	// StorageExhausted counts operations that failed on every attempt.
	StorageExhausted *prometheus.CounterVec
	// HTTPRequests counts served requests by method and status.
	HTTPRequests *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StorageAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "attempts_total",
			Help:      "Storage provider calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		StorageExhausted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "exhausted_total",
			Help:      "Storage operations that failed after all retry attempts.",
		}, []string{"op"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(
		m.StorageAttempts,
		m.StorageExhausted,
		m.HTTPRequests,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveAttempt records a single provider call.
func (m *Metrics) ObserveAttempt(op string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.StorageAttempts.WithLabelValues(op, outcome).Inc()
}

// ObserveExhausted records an operation that ran out of attempts.
func (m *Metrics) ObserveExhausted(op string) {
	if m == nil {
		return
	}
	m.StorageExhausted.WithLabelValues(op).Inc()
}

// Middleware counts every request once the handler chain returns.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if m == nil {
			return err
		}
		status := c.Response().StatusCode()
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		}
		m.HTTPRequests.WithLabelValues(c.Method(), strconv.Itoa(status)).Inc()
		return err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
