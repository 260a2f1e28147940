// Package instrument adds Prometheus metrics and OpenTelemetry tracing to
// event delivery, plus an HTTP surface for scraping and health checks.
//
// Wrap an event source to count and time every handler invocation:
//
//	m := instrument.New(instrument.WithNamespace("myapp"))
//	src := m.Source(bus)
//	focus.Track(src, "search")
//
// and expose the numbers:
//
//	http.ListenAndServe(":9090", instrument.Handler(m, map[string]instrument.StatsSource{
//	    "main": loop,
//	}))
package instrument

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config configures metrics collection.
type Config struct {
	// Namespace is the metrics namespace (default: "use").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures metrics collection.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:   "use",
		Subsystem:   "",
		ConstLabels: nil,
		Buckets:     prometheus.DefBuckets,
		Registry:    prometheus.DefaultRegisterer,
	}
}

// Metrics holds the collectors for event delivery.
type Metrics struct {
	eventsTotal         *prometheus.CounterVec
	eventDuration       *prometheus.HistogramVec
	handlerPanics       *prometheus.CounterVec
	subscriptionsActive prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the event delivery metrics and registers them with the
// configured registry.
//
// Metrics collected:
//   - use_events_total: Counter of handled events by event name and status
//   - use_event_duration_seconds: Histogram of handler duration by event name
//   - use_handler_panics_total: Counter of recovered handler panics
//   - use_subscriptions_active: Gauge of live event subscriptions
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	m := &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of events handled",
			ConstLabels: config.ConstLabels,
		}, []string{"event", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event handler duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"event"}),

		handlerPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "handler_panics_total",
			Help:        "Total number of panics recovered from event handlers",
			ConstLabels: config.ConstLabels,
		}, []string{"event"}),

		subscriptionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "subscriptions_active",
			Help:        "Number of live event subscriptions",
			ConstLabels: config.ConstLabels,
		}),
	}

	// Scrape through the same registry the metrics were registered with,
	// when it can serve as one.
	if g, ok := config.Registry.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// HTTPHandler returns the scrape endpoint for these metrics.
func (m *Metrics) HTTPHandler() http.Handler {
	if m.gatherer != nil {
		return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}
