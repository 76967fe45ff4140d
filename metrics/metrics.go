package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the service's Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "duashare",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duashare",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "duashare",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	prayerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duashare",
			Subsystem: "prayers",
			Name:      "events_total",
			Help:      "Prayer lifecycle events: submitted, viewed, ameen.",
		},
		[]string{"event"},
	)

	moderationActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duashare",
			Subsystem: "moderation",
			Name:      "actions_total",
			Help:      "Moderation actions performed by administrators.",
		},
		[]string{"action"},
	)

	adminLogins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duashare",
			Subsystem: "moderation",
			Name:      "logins_total",
			Help:      "Admin login attempts by outcome.",
		},
		[]string{"outcome"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "duashare",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Outbound submission notifications by channel and outcome.",
		},
		[]string{"channel", "outcome"},
	)
)

const (
	EventSubmitted = "submitted"
	EventViewed    = "viewed"
	EventAmeen     = "ameen"
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		prayerEvents,
		moderationActions,
		adminLogins,
		notifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted bumps the in-flight gauge and returns the func that records
// the finished request.
func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		method = strings.ToUpper(method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func RecordPrayerEvent(event string) {
	prayerEvents.WithLabelValues(event).Inc()
}

func RecordModeration(action string) {
	moderationActions.WithLabelValues(action).Inc()
}

func RecordAdminLogin(success bool) {
	outcome := "rejected"
	if success {
		outcome = "accepted"
	}
	adminLogins.WithLabelValues(outcome).Inc()
}

func RecordNotification(channel string, err error) {
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	notifications.WithLabelValues(channel, outcome).Inc()
}
