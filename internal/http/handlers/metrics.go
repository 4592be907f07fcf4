package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GatewayMetrics holds the Prometheus collectors of the proxy endpoint on a
// dedicated registry.
type GatewayMetrics struct {
	registry *prometheus.Registry

	Requests         *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
}

// NewGatewayMetrics creates and registers the gateway collectors.
func NewGatewayMetrics() *GatewayMetrics {
	reg := prometheus.NewRegistry()

	m := &GatewayMetrics{
		registry: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "catalog",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Gateway requests by method and response status",
		}, []string{"method", "status"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Subsystem: "gateway",
			Name:      "upstream_duration_seconds",
			Help:      "Latency of calls to the remote product store",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}

	reg.MustRegister(m.Requests, m.UpstreamDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *GatewayMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *GatewayMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
