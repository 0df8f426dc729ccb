package hotredis

import "github.com/prometheus/client_golang/prometheus"

var opCount = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "hotredis",
	Subsystem: "router",
	Name:      "ops",
}, []string{"op", "status"})

var opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "hotredis",
	Subsystem: "router",
	Name:      "op_duration_seconds",
	Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
}, []string{"op"})

var batchSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "hotredis",
	Subsystem: "router",
	Name:      "batch_size",
	Buckets:   []float64{1, 2, 5, 10, 20, 50, 100, 500},
}, []string{"status"})

// RegisterMetrics adds the package collectors to reg.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(opCount, opDuration, batchSize)
}
