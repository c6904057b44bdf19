package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec

	sweeps           *prometheus.CounterVec
	sweepDuration    prometheus.Histogram
	sweepTickets     *prometheus.CounterVec
	holidayRefreshes prometheus.Counter
}

// NewMetrics registers collectors on a dedicated registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"route", "method", "code"}),
		sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_sweeps_total",
			Help: "SLA sweeps by outcome.",
		}, []string{"outcome"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sla_sweep_duration_seconds",
			Help:    "Wall time of one SLA sweep.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		}),
		sweepTickets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sla_sweep_tickets_total",
			Help: "Tickets touched by SLA sweeps, by result.",
		}, []string{"result"}),
		holidayRefreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sla_holiday_refresh_failures_total",
			Help: "Failed holiday cache reloads.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.errors,
		m.sweeps, m.sweepDuration, m.sweepTickets, m.holidayRefreshes,
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordSweep records one finished sweep and its per-ticket tallies.
func (m *Metrics) RecordSweep(outcome string, duration time.Duration, evaluated, updated, notified, failed int) {
	if m == nil {
		return
	}
	m.sweeps.WithLabelValues(outcome).Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.sweepTickets.WithLabelValues("evaluated").Add(float64(evaluated))
	m.sweepTickets.WithLabelValues("updated").Add(float64(updated))
	m.sweepTickets.WithLabelValues("notified").Add(float64(notified))
	m.sweepTickets.WithLabelValues("failed").Add(float64(failed))
}

// RecordHolidayRefreshFailure counts a failed holiday reload.
func (m *Metrics) RecordHolidayRefreshFailure(error) {
	if m == nil {
		return
	}
	m.holidayRefreshes.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
