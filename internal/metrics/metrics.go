// Package metrics exposes Prometheus counters for social activity and HTTP
// traffic on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelfie"

// Metrics holds every collector the server records.
type Metrics struct {
	registry *prometheus.Registry

	Follows       prometheus.Counter
	Unfollows     prometheus.Counter
	Likes         *prometheus.CounterVec
	Comments      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
}

// New creates and registers the collectors, plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Follows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "follows_total",
			Help:      "Total number of successful follow requests",
		}),
		Unfollows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unfollows_total",
			Help:      "Total number of successful unfollow requests",
		}),
		Likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_total",
			Help:      "Like toggles by resulting action",
		}, []string{"action"}),
		Comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_total",
			Help:      "Comments and replies posted",
		}, []string{"kind"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Notifications created by type",
		}, []string{"type"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Follows,
		m.Unfollows,
		m.Likes,
		m.Comments,
		m.Notifications,
		m.Requests,
		m.Latency,
	)

	return m
}

// Registry returns the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records count and latency per chi route pattern. It must run
// inside a chi router so the pattern is known once the handler returns.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.Requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.Latency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Recorder is the subset of Metrics the services use. A nil *Metrics is not
// valid; use Nop in tests that do not care.
type Recorder interface {
	Follow()
	Unfollow()
	Like(liked bool)
	Comment(reply bool)
	NotificationCreated(kind string)
}

// Follow counts a follow.
func (m *Metrics) Follow() { m.Follows.Inc() }

// Unfollow counts an unfollow.
func (m *Metrics) Unfollow() { m.Unfollows.Inc() }

// Like counts a like toggle.
func (m *Metrics) Like(liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	m.Likes.WithLabelValues(action).Inc()
}

// Comment counts a comment or reply.
func (m *Metrics) Comment(reply bool) {
	kind := "comment"
	if reply {
		kind = "reply"
	}
	m.Comments.WithLabelValues(kind).Inc()
}

// NotificationCreated counts a notification of the given type.
func (m *Metrics) NotificationCreated(kind string) {
	m.Notifications.WithLabelValues(kind).Inc()
}

// Nop discards every recording.
var Nop Recorder = nop{}

type nop struct{}

func (nop) Follow()                    {}
func (nop) Unfollow()                  {}
func (nop) Like(bool)                  {}
func (nop) Comment(bool)               {}
func (nop) NotificationCreated(string) {}
