package metrics

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics holds Prometheus metrics for the session runtime.
type SessionMetrics struct {
	Created         *prometheus.CounterVec
	Active          *prometheus.GaugeVec
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	MailboxFull     prometheus.Counter
	Stops           *prometheus.CounterVec
	Panics          prometheus.Counter
}

// NewSessionMetrics creates and registers session metrics on the given registry.
func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		Created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "created_total",
			Help:      "Total number of session creation attempts, by kind and result.",
		}, []string{"kind", "result"}),
		Active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of registered sessions, by kind.",
		}, []string{"kind"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "Total number of commands handled by sessions, by action and result.",
		}, []string{"action", "result"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "command_duration_seconds",
			Help:      "Time a session spent handling one command, by action.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"action"}),
		MailboxFull: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "mailbox_full_total",
			Help:      "Total number of commands rejected because a session mailbox was full.",
		}),
		Stops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "shutdown_stops_total",
			Help:      "Total number of stop commands sent during shutdown fan-out, by result.",
		}, []string{"result"}),
		Panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "backend_panics_total",
			Help:      "Total number of recovered backend panics.",
		}),
	}

	reg.MustRegister(m.Created, m.Active, m.Commands, m.CommandDuration, m.MailboxFull, m.Stops, m.Panics)
	return m
}
