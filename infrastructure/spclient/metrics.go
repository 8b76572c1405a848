package spclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records request outcomes. A nil *Metrics records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	retries   *prometheus.CounterVec
	throttles prometheus.Counter
	latency   *prometheus.HistogramVec
}

// NewMetrics creates the client metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spshare",
			Subsystem: "sharepoint",
			Name:      "requests_total",
			Help:      "SharePoint REST requests by method and status code.",
		}, []string{"method", "status"}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "spshare",
			Subsystem: "sharepoint",
			Name:      "retries_total",
			Help:      "Retried SharePoint REST requests by method.",
		}, []string{"method"}),
		throttles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "spshare",
			Subsystem: "sharepoint",
			Name:      "throttled_total",
			Help:      "Throttled (429/503) SharePoint responses.",
		}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "spshare",
			Subsystem: "sharepoint",
			Name:      "request_duration_seconds",
			Help:      "SharePoint REST request latency.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"method"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.retries, m.throttles, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, label).Inc()
	m.latency.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) retry(method string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(method).Inc()
}

func (m *Metrics) throttled() {
	if m == nil {
		return
	}
	m.throttles.Inc()
}
