package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Commands      *prometheus.CounterVec
	RoleMutations *prometheus.CounterVec
	Sessions      *prometheus.CounterVec
	Mutes         *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modbot",
			Name:      "commands_total",
			Help:      "Prefix commands dispatched, by command and outcome.",
		}, []string{"command", "outcome"}),
		RoleMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modbot",
			Name:      "autorole_mutations_total",
			Help:      "Role changes driven by autorole reactions.",
		}, []string{"action", "result"}),
		Sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modbot",
			Name:      "say_sessions_total",
			Help:      "Interactive say sessions, by how they ended.",
		}, []string{"result"}),
		Mutes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "modbot",
			Name:      "mute_outcomes_total",
			Help:      "Mute attempts by the path that executed.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{m.Commands, m.RoleMutations, m.Sessions, m.Mutes}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) CommandRun(command, outcome string) {
	if m != nil {
		m.Commands.WithLabelValues(command, outcome).Inc()
	}
}

func (m *Metrics) RoleMutation(action, result string) {
	if m != nil {
		m.RoleMutations.WithLabelValues(action, result).Inc()
	}
}

func (m *Metrics) SessionEnded(result string) {
	if m != nil {
		m.Sessions.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) MuteApplied(outcome string) {
	if m != nil {
		m.Mutes.WithLabelValues(outcome).Inc()
	}
}
