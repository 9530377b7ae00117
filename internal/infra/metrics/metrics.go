// Package metrics holds the Prometheus collectors for the photo wall.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eventwall/photowall/internal/domain/enums"
)

const namespace = "photowall"

// Poll results reported by the display wall.
const (
	PollResultOK    = "ok"
	PollResultError = "error"
	PollResultStale = "stale"
)

// Metrics groups every collector the API process and the display runner
// export. One instance is registered per registry.
type Metrics struct {
	moderationActions *prometheus.CounterVec
	reorderEntries    *prometheus.CounterVec
	promotions        prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	displayPolls *prometheus.CounterVec
}

// New creates the collectors and registers them with registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if registry != nil {
		if err := registry.Register(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.moderationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_actions_total",
			Help:      "Moderation actions applied, by action.",
		},
		[]string{"action"}, // approve, reject, archive
	)

	m.reorderEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reorder_entries_total",
			Help:      "Reorder batch entries, by result.",
		},
		[]string{"result"}, // applied, skipped
	)

	m.promotions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "promotions_total",
		Help:      "Photos promoted to the front of the display order.",
	})

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route pattern and status.",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.displayPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "display_polls_total",
			Help:      "Display wall polls of the ranked list, by result.",
		},
		[]string{"result"}, // ok, error, stale
	)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.moderationActions,
		m.reorderEntries,
		m.promotions,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.displayPolls,
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range m.collectors() {
		c.Describe(ch)
	}
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	for _, c := range m.collectors() {
		c.Collect(ch)
	}
}

func (m *Metrics) ObserveModeration(action enums.ModerationAction) {
	m.moderationActions.WithLabelValues(action.String()).Inc()
}

func (m *Metrics) ObserveReorder(applied, skipped int) {
	if applied > 0 {
		m.reorderEntries.WithLabelValues("applied").Add(float64(applied))
	}
	if skipped > 0 {
		m.reorderEntries.WithLabelValues("skipped").Add(float64(skipped))
	}
}

func (m *Metrics) ObservePromotion() {
	m.promotions.Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, seconds float64) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) ObserveDisplayPoll(result string) {
	m.displayPolls.WithLabelValues(result).Inc()
}
