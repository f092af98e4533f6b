package mockserver

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// serverMetrics mock 服务自身的指标
type serverMetrics struct {
	authRequests *prometheus.CounterVec
	faults       *prometheus.CounterVec
	commands     *prometheus.CounterVec
}

func newServerMetrics() *serverMetrics {
	return &serverMetrics{
		authRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tesla",
			Subsystem: "mock",
			Name:      "auth_requests_total",
			Help:      "Token requests by outcome (issued, rejected, invalid, fault).",
		}, []string{"outcome"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tesla",
			Subsystem: "mock",
			Name:      "injected_faults_total",
			Help:      "Responses replaced by an injected fault, by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "tesla",
			Subsystem: "mock",
			Name:      "commands_total",
			Help:      "Vehicle commands by name and result.",
		}, []string{"command", "result"}),
	}
}

// Register 在 reg 上注册 mock 服务的指标
func (s *Server) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{s.metrics.authRequests, s.metrics.faults, s.metrics.commands} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *serverMetrics) fault(endpoint string, status int) {
	m.faults.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

func (m *serverMetrics) command(name string, ok bool) {
	m.commands.WithLabelValues(name, strconv.FormatBool(ok)).Inc()
}
