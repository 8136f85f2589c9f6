package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests and multiple servers never collide on registration.
type Collector struct {
	registry        *prometheus.Registry
	inFlight        prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	rateLimited     prometheus.Counter
	linksIssued     *prometheus.CounterVec
	uploads         *prometheus.CounterVec
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the rate limiter.",
		}),
		linksIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certificate_links_issued_total",
			Help: "Signed certificate links issued, by result.",
		}, []string{"result"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certificate_uploads_total",
			Help: "Certificate uploads, by result.",
		}, []string{"result"}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.inFlight, c.requestsTotal, c.requestDuration, c.rateLimited, c.linksIssued, c.uploads,
	)
	return c
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) InFlight(delta float64) {
	c.inFlight.Add(delta)
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	c.requestsTotal.WithLabelValues(method, route, code).Inc()
	c.requestDuration.WithLabelValues(method, route, code).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

// LinkIssued counts one signed link; signed=false means the entry was returned without a url.
func (c *Collector) LinkIssued(signed bool) {
	if signed {
		c.linksIssued.WithLabelValues("signed").Inc()
		return
	}
	c.linksIssued.WithLabelValues("unsigned").Inc()
}

func (c *Collector) Upload(result string) {
	c.uploads.WithLabelValues(result).Inc()
}
