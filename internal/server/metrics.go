package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type metrics struct {
	registry    *prometheus.Registry
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tada_invocations_total",
			Help: "Bridge invocations by command and outcome.",
		}, []string{"cmd", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tada_invocation_duration_seconds",
			Help:    "Time spent handling a bridge invocation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"cmd"}),
	}
	m.registry.MustRegister(m.invocations, m.duration)
	return m
}

func (m *metrics) observe(cmd, outcome string, took time.Duration) {
	m.invocations.WithLabelValues(cmd, outcome).Inc()
	m.duration.WithLabelValues(cmd).Observe(took.Seconds())
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
