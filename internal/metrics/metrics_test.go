package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.CommandRun("kick", "ok")
	m.CommandRun("kick", "ok")
	m.RoleMutation("add", "error")
	m.SessionEnded("timeout")
	m.MuteApplied("fallback")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commands.WithLabelValues("kick", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RoleMutations.WithLabelValues("add", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutes.WithLabelValues("fallback")))

	assert.Error(t, m.Register(reg), "double registration")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CommandRun("ban", "ok")
		m.RoleMutation("remove", "ok")
		m.SessionEnded("done")
		m.MuteApplied("timeout")
	})
}
