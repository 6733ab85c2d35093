package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderRecordsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewPrometheusRecorderWith(reg)

	rec.IncCounter("gate_allowed", map[string]string{"network": "base-sepolia"})
	rec.ObserveLatency("verify", 25*time.Millisecond, map[string]string{"network": "base-sepolia"})

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "paygate_events_total")
	assert.Contains(t, names, "paygate_latency_seconds")
}

// Each recorder owns its registerer, so several instances coexist in
// one process.
func TestPrometheusRecorderIndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusRecorderWith(prometheus.NewRegistry())
		NewPrometheusRecorderWith(prometheus.NewRegistry())
	})
}
