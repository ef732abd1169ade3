// Package metrics exposes Prometheus instrumentation for the resolution
// engine and the HTTP surface.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once
	registerErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	resolutionsTotal     *prometheus.CounterVec
	degradedLookupsTotal *prometheus.CounterVec
)

// Register initializes the collectors and returns the /metrics handler.
func Register(reg prometheus.Registerer) (http.Handler, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		resolutionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_resolutions_total",
			Help: "Account resolutions by branch and result",
		}, []string{"branch", "result"})

		degradedLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_lookups_degraded_total",
			Help: "Contact store sub-queries that failed and degraded to empty results",
		}, []string{"query"})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration,
			resolutionsTotal, degradedLookupsTotal,
		} {
			if err := register(reg, c); err != nil {
				registerErr = err
				return
			}
		}
	})
	if registerErr != nil {
		return nil, registerErr
	}

	return promhttp.Handler(), nil
}

func register(reg prometheus.Registerer, c prometheus.Collector) error {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// RecordResolution counts a finished resolution. branch is empty when
// resolution failed before a branch matched.
func RecordResolution(branch, result string) {
	if resolutionsTotal == nil {
		return
	}
	if branch == "" {
		branch = "none"
	}
	resolutionsTotal.WithLabelValues(branch, result).Inc()
}

// RecordDegradedLookup counts a store sub-query that failed and was
// recovered as an empty result.
func RecordDegradedLookup(query string) {
	if degradedLookupsTotal == nil {
		return
	}
	degradedLookupsTotal.WithLabelValues(query).Inc()
}

// WithMetrics instruments an HTTP handler.
func WithMetrics(next http.Handler) http.Handler {
	if next == nil {
		return nil
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}
		method := strings.ToUpper(r.Method)
		path := r.URL.Path
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		httpRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
