package suggest

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var BuildCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "builds",
}, []string{"field"})

var BuildFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "build_failures",
}, []string{"field"})

var BuildDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "build_duration_seconds",
	Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
}, []string{"field"})

var CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "cache_lookups",
}, []string{"field", "result"})

var IndexQueries = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "index_queries",
}, []string{"field"})

var ReadyState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "newsserve",
	Subsystem: "matcher",
	Name:      "ready",
}, []string{"field"})

// RegisterMetrics adds the matcher collectors to reg. Registering twice on the
// same registry is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{BuildCount, BuildFailures, BuildDuration, CacheLookups, IndexQueries, ReadyState} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
