package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests that no chi route matched, keeping the
// route label bounded to the API's own patterns.
const unmatchedRoute = "unmatched"

// API traffic metrics, labelled by chi route pattern.
var (
	apiRequestSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ragdemo",
			Subsystem: "api",
			Name:      "request_seconds",
			Help:      "API request latency by route; ask and compare include the remote model call",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"method", "route", "code"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ragdemo",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	apiInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragdemo",
			Subsystem: "api",
			Name:      "requests_in_flight",
			Help:      "API requests currently being served",
		},
	)
)

var registerAPIOnce sync.Once

// Middleware records per-route latency, request counts and in-flight
// requests for the chi router it is mounted on. Metrics register with the
// default registry the first time it is called.
func Middleware() func(next http.Handler) http.Handler {
	registerAPIOnce.Do(func() {
		prometheus.MustRegister(apiRequestSeconds, apiRequests, apiInFlight)
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiInFlight.Inc()
			defer apiInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			labels := []string{r.Method, routeLabel(r), strconv.Itoa(code)}
			apiRequestSeconds.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			apiRequests.WithLabelValues(labels...).Inc()
		})
	}
}

// routeLabel returns the matched chi pattern, e.g. "/api/v1/samples/{index}".
func routeLabel(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
