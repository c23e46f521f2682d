package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var RequestCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "newsserve",
	Subsystem: "http",
	Name:      "requests",
}, []string{"route", "status"})

var RequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "newsserve",
	Subsystem: "http",
	Name:      "request_duration_ms",
	Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
}, []string{"route"})

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
