package metrics

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of one server. They are registered on the
// given registerer so tests can use their own registry.
type Metrics struct {
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
	ActiveConnections   prometheus.Gauge
	PageCacheLookups    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HttpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HttpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		ActiveConnections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "active_connections",
				Help: "Number of requests being served",
			},
		),
		PageCacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "page_cache_lookups_total",
				Help: "Page cache lookups by outcome",
			},
			[]string{"route", "result"},
		),
	}
	reg.MustRegister(m.HttpRequestsTotal, m.HttpRequestDuration, m.ActiveConnections, m.PageCacheLookups)
	return m
}

// Middleware records every request under its route pattern, not the raw
// path, to keep label cardinality bounded
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			m.ActiveConnections.Inc()
			defer m.ActiveConnections.Dec()

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			timer := prometheus.NewTimer(m.HttpRequestDuration.WithLabelValues(route))

			err := next(c)

			timer.ObserveDuration()
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			m.HttpRequestsTotal.WithLabelValues(route, c.Request().Method, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Hit and Miss make Metrics a page cache observer
func (m *Metrics) Hit(route string) {
	m.PageCacheLookups.WithLabelValues(route, "hit").Inc()
}

func (m *Metrics) Miss(route string) {
	m.PageCacheLookups.WithLabelValues(route, "miss").Inc()
}
