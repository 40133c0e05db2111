// Package metrics owns the service's Prometheus instruments. Instrument
// lookup is memoized inside the Metrics value itself rather than in package
// globals, so instrumentation stays a detachable decorator: components take
// a *Metrics (possibly nil) and the rest of the code never touches ambient
// state.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registers and memoizes business counters on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	mu       sync.Mutex
	counters map[string]*prometheus.CounterVec
}

// New returns a Metrics with a fresh registry (no default-registry globals).
func New() *Metrics {
	return &Metrics{
		registry: prometheus.NewRegistry(),
		counters: make(map[string]*prometheus.CounterVec),
	}
}

// IncBusinessOp bumps the counter for a business operation, e.g.
//
//	m.IncBusinessOp("orders_created_total", "create", "write")
//
// The CounterVec is created and registered on first use and cached for
// subsequent calls. Nil receivers are a no-op so callers need no guards.
func (m *Metrics) IncBusinessOp(name, operation, kind string) {
	if m == nil {
		return
	}
	m.counter(name).WithLabelValues(operation, kind).Inc()
}

func (m *Metrics) counter(name string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orderhub",
		Name:      name,
		Help:      "Business operation counter.",
	}, []string{"operation", "type"})
	m.registry.MustRegister(c)
	m.counters[name] = c
	return c
}

// Handler exposes the registry for a /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
