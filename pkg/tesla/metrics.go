package tesla

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics 可选的请求指标，nil 时所有方法为空操作
type metrics struct {
	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	reauthentications prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tesla",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Owner API requests by endpoint and HTTP status code (0 for transport errors).",
		}, []string{"endpoint", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tesla",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Owner API request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		reauthentications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tesla",
			Subsystem: "client",
			Name:      "reauthentications_total",
			Help:      "Implicit re-authentications triggered by a missing or expired token.",
		}),
	}

	m.requests = register(reg, m.requests)
	m.duration = register(reg, m.duration)
	m.reauthentications = register(reg, m.reauthentications)
	return m
}

// register 注册 collector，已注册时复用已有实例
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(kind EndpointKind, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	endpoint := kind.String()
	m.requests.WithLabelValues(endpoint, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *metrics) reauthenticated() {
	if m == nil {
		return
	}
	m.reauthentications.Inc()
}
