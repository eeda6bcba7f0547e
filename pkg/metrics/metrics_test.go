package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/x", "200", 0.1)
		m.ObserveDBQuery("query", 0.01, errors.New("boom"))
		m.SetDBConnections(1, 1, 0)
		m.ObserveSlots("booking", 3)
		m.IncSlotUnavailable("already_booked")
		m.AddSkippedRecords(2)
		m.IncPolicyDecision("eligible")
		m.IncBookingConflict("create")
		m.IncAvailabilityCache("hit")
	})
}

func TestMetrics_Counters(t *testing.T) {
	m := NewWithRegisterer("test", prometheus.NewRegistry())

	m.ObserveSlots("booking", 8)
	m.ObserveSlots("booking", 2)
	m.IncPolicyDecision("blocked_standard")
	m.ObserveDBQuery("exec", 0.02, errors.New("boom"))
	m.AddSkippedRecords(0)

	assert.Equal(t, float64(10), testutil.ToFloat64(m.slotsGenerated.WithLabelValues("test", "booking")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.policyDecisions.WithLabelValues("test", "blocked_standard")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.dbQueryErrors.WithLabelValues("test", "exec")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.skippedRecords))
}
