// Package metrics holds the Prometheus collectors of the storefront host.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics covers backend calls, placed orders and live sessions.
type StorefrontMetrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	ordersPlaced prometheus.Counter
	ordersFailed prometheus.Counter

	activeSessions  prometheus.Gauge
	sessionsExpired prometheus.Counter
}

func NewStorefrontMetrics() *StorefrontMetrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors on registerer. Collectors that
// are already registered are reused.
func NewWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		apiRequests: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of backend API requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		apiDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Duration of backend API requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders accepted by the backend",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_failed_total",
			Help: "Total number of orders the backend rejected or never answered",
		}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of live page sessions",
		}),
		sessionsExpired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_sessions_expired_total",
			Help: "Total number of page sessions dropped after the idle TTL",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordAPIRequest counts one backend call. A nil err is a success.
func (m *StorefrontMetrics) RecordAPIRequest(operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.apiRequests.WithLabelValues(operation, outcome).Inc()
	m.apiDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *StorefrontMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

func (m *StorefrontMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

func (m *StorefrontMetrics) RecordSessionStarted() {
	m.activeSessions.Inc()
}

// RecordSessionEnded lowers the live count; expired marks TTL eviction.
func (m *StorefrontMetrics) RecordSessionEnded(expired bool) {
	m.activeSessions.Dec()
	if expired {
		m.sessionsExpired.Inc()
	}
}
