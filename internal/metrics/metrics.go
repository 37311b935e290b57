package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SwipesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_swipes_total",
		Help: "Total number of swipes recorded, by type",
	}, []string{"type"})
	PairsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_pairs_created_total",
		Help: "Total number of pairs created from reciprocal likes",
	})
	MessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "match_messages_total",
		Help: "Total number of conversation messages sent",
	})
	AvatarLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "match_avatar_lookups_total",
		Help: "External avatar lookups, by result",
	}, []string{"result"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		SwipesTotal, PairsCreatedTotal, MessagesTotal, AvatarLookupsTotal,
		HTTPRequestsTotal, HTTPRequestDuration,
	)
}

// Middleware records request count and latency labelled by the chi route pattern
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		labels := prometheus.Labels{"method": r.Method, "path": path, "status": strconv.Itoa(status)}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
