package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the core lifecycle and transport metrics
type Metrics struct {
	// Entity lifecycle
	EntitiesCreated   *prometheus.CounterVec
	EntitiesDestroyed *prometheus.CounterVec
	EntitiesLive      *prometheus.GaugeVec
	CreateDuration    *prometheus.HistogramVec

	// Message flow
	MessagesPublished *prometheus.CounterVec
	MessagesTaken     *prometheus.CounterVec

	// Errors by classification
	ErrorsTotal *prometheus.CounterVec

	// Transport
	BackendConnected prometheus.Gauge
	BackendRTT       prometheus.Gauge
}

// NewMetrics creates a Metrics instance with all core metrics
func NewMetrics() *Metrics {
	return &Metrics{
		EntitiesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wirebus",
				Subsystem: "entities",
				Name:      "created_total",
				Help:      "Total number of entities created",
			},
			[]string{"kind", "backend"},
		),

		EntitiesDestroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wirebus",
				Subsystem: "entities",
				Name:      "destroyed_total",
				Help:      "Total number of entities destroyed",
			},
			[]string{"kind", "backend"},
		),

		EntitiesLive: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "wirebus",
				Subsystem: "entities",
				Name:      "live",
				Help:      "Number of currently live entities",
			},
			[]string{"kind"},
		),

		CreateDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "wirebus",
				Subsystem: "entities",
				Name:      "create_duration_seconds",
				Help:      "Entity creation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		MessagesPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wirebus",
				Subsystem: "messages",
				Name:      "published_total",
				Help:      "Total number of messages published",
			},
			[]string{"topic"},
		),

		MessagesTaken: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wirebus",
				Subsystem: "messages",
				Name:      "taken_total",
				Help:      "Total number of messages taken by subscriptions",
			},
			[]string{"topic"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "wirebus",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors by classification",
			},
			[]string{"class"},
		),

		BackendConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wirebus",
				Subsystem: "backend",
				Name:      "connected",
				Help:      "Backend connection status (0=disconnected, 1=connected)",
			},
		),

		BackendRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "wirebus",
				Subsystem: "backend",
				Name:      "rtt_milliseconds",
				Help:      "Backend round-trip time in milliseconds",
			},
		),
	}
}

// RecordEntityCreated increments the created counter and the live gauge
func (c *Metrics) RecordEntityCreated(kind, backend string) {
	if c == nil {
		return
	}
	c.EntitiesCreated.WithLabelValues(kind, backend).Inc()
	c.EntitiesLive.WithLabelValues(kind).Inc()
}

// RecordEntityDestroyed increments the destroyed counter and decrements
// the live gauge
func (c *Metrics) RecordEntityDestroyed(kind, backend string) {
	if c == nil {
		return
	}
	c.EntitiesDestroyed.WithLabelValues(kind, backend).Inc()
	c.EntitiesLive.WithLabelValues(kind).Dec()
}

// RecordCreateDuration records how long entity creation took
func (c *Metrics) RecordCreateDuration(kind string, duration time.Duration) {
	if c == nil {
		return
	}
	c.CreateDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordMessagePublished increments the published counter for a topic
func (c *Metrics) RecordMessagePublished(topic string) {
	if c == nil {
		return
	}
	c.MessagesPublished.WithLabelValues(topic).Inc()
}

// RecordMessageTaken increments the taken counter for a topic
func (c *Metrics) RecordMessageTaken(topic string) {
	if c == nil {
		return
	}
	c.MessagesTaken.WithLabelValues(topic).Inc()
}

// RecordError increments the error counter for a classification
func (c *Metrics) RecordError(class string) {
	if c == nil {
		return
	}
	c.ErrorsTotal.WithLabelValues(class).Inc()
}

// RecordBackendStatus updates the backend connection gauge
func (c *Metrics) RecordBackendStatus(connected bool) {
	if c == nil {
		return
	}
	value := 0.0
	if connected {
		value = 1.0
	}
	c.BackendConnected.Set(value)
}

// RecordBackendRTT updates the backend round-trip time gauge
func (c *Metrics) RecordBackendRTT(rtt time.Duration) {
	if c == nil {
		return
	}
	c.BackendRTT.Set(float64(rtt.Milliseconds()))
}
