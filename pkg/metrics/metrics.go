package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records a call count and a duration per API endpoint.
type Metrics struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	brokenErrors *prometheus.CounterVec
	gatherer     prometheus.Gatherer
}

// New registers the bookstore collectors, plus the Go runtime and process
// collectors, on reg.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookstore_endpoint_requests_total",
				Help: "Number of times an endpoint was called",
			},
			[]string{"endpoint"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookstore_endpoint_duration_seconds",
				Help:    "Time taken to serve an endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		brokenErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "error_on_return_review_broken_count",
				Help: "Number of injected failures returned by the broken review endpoint",
			},
			[]string{"endpoint"},
		),
		gatherer: reg,
	}
}

// Track returns middleware that counts and times the endpoint it is attached to.
func (m *Metrics) Track(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		m.requests.WithLabelValues(endpoint).Inc()
		m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) InjectedFailure(endpoint string) {
	m.brokenErrors.WithLabelValues(endpoint).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
