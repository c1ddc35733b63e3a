package transition

import (
	"ApiMonitor/internal/monitor/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func outcome() domain.CheckOutcome {
	return domain.NewSuccessOutcome("api", 200, 0, "")
}

func TestDetector_ColdStartHealthy(t *testing.T) {
	d := NewDetector()

	event, ok := d.Detect("api", domain.VerdictHealthy, outcome())
	assert.False(t, ok)
	assert.Nil(t, event)

	state, ok := d.Last("api")
	require.True(t, ok)
	assert.Equal(t, domain.VerdictHealthy, state.Verdict)
}

func TestDetector_ColdStartUnhealthy(t *testing.T) {
	d := NewDetector()

	event, ok := d.Detect("api", domain.VerdictUnhealthy, domain.NewErrorOutcome("api", assert.AnError))
	require.True(t, ok)
	assert.Equal(t, domain.EventFailure, event.Kind)
	assert.Equal(t, domain.VerdictUnknown, event.Previous)
	assert.Equal(t, domain.VerdictUnhealthy, event.Current)
	assert.NotEmpty(t, event.ID)

	_, ok = d.Detect("api", domain.VerdictUnhealthy, domain.NewErrorOutcome("api", assert.AnError))
	assert.False(t, ok)
}

func TestDetector_ColdStartDegradedIsFailure(t *testing.T) {
	d := NewDetector()

	event, ok := d.Detect("api", domain.VerdictDegraded, outcome())
	require.True(t, ok)
	assert.Equal(t, domain.EventFailure, event.Kind)
	assert.Equal(t, domain.VerdictUnknown, event.Previous)
	assert.Equal(t, domain.VerdictDegraded, event.Current)

	event, ok = d.Detect("api", domain.VerdictHealthy, outcome())
	require.True(t, ok)
	assert.Equal(t, domain.EventRecovery, event.Kind)
}

func TestDetector_Transitions(t *testing.T) {
	d := NewDetector()

	sequence := []struct {
		verdict domain.Verdict
		kind    domain.EventKind
		emitted bool
	}{
		{domain.VerdictHealthy, "", false},
		{domain.VerdictHealthy, "", false},
		{domain.VerdictDegraded, domain.EventDegraded, true},
		{domain.VerdictUnhealthy, domain.EventFailure, true},
		{domain.VerdictUnhealthy, "", false},
		{domain.VerdictHealthy, domain.EventRecovery, true},
	}

	for i, step := range sequence {
		event, ok := d.Detect("api", step.verdict, outcome())
		assert.Equal(t, step.emitted, ok, "step %d", i)
		if step.emitted {
			require.NotNil(t, event)
			assert.Equal(t, step.kind, event.Kind, "step %d", i)
			assert.Equal(t, step.verdict, event.Current)
		}
	}
}

func TestDetector_ConsecutiveFailures(t *testing.T) {
	d := NewDetector()

	d.Detect("api", domain.VerdictUnhealthy, outcome())
	d.Detect("api", domain.VerdictUnhealthy, outcome())
	d.Detect("api", domain.VerdictUnhealthy, outcome())

	state, _ := d.Last("api")
	assert.Equal(t, 3, state.ConsecutiveFailures)

	d.Detect("api", domain.VerdictDegraded, outcome())
	state, _ = d.Last("api")
	assert.Equal(t, 0, state.ConsecutiveFailures)
}

func TestDetector_EndpointsAreIndependent(t *testing.T) {
	d := NewDetector()

	d.Detect("a", domain.VerdictHealthy, outcome())
	_, ok := d.Detect("b", domain.VerdictUnhealthy, outcome())
	assert.True(t, ok)

	_, ok = d.Detect("a", domain.VerdictHealthy, outcome())
	assert.False(t, ok)

	_, ok = d.Last("c")
	assert.False(t, ok)
}
