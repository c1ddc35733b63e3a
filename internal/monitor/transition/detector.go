package transition

import (
	"ApiMonitor/internal/monitor/domain"
	"sync"
	"time"
)

// State is the last known health of one endpoint.
type State struct {
	Verdict             domain.Verdict `json:"verdict"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	ChangedAt           time.Time      `json:"changed_at"`
}

type endpointState struct {
	mu      sync.Mutex
	state   State
	checked bool
}

// Detector turns a stream of verdicts into HealthEvents.
type Detector struct {
	mu     sync.RWMutex
	states map[string]*endpointState
}

func NewDetector() *Detector {
	return &Detector{
		states: make(map[string]*endpointState),
	}
}

func (d *Detector) entry(id string) *endpointState {
	d.mu.RLock()
	s, ok := d.states[id]
	d.mu.RUnlock()
	if ok {
		return s
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok = d.states[id]; !ok {
		s = &endpointState{}
		d.states[id] = s
	}
	return s
}

// Detect stores verdict and returns an event when it differs from the previous
// one. The first verdict only produces an event when it is not healthy, and
// that event is always a failure.
func (d *Detector) Detect(id string, verdict domain.Verdict, outcome domain.CheckOutcome) (*domain.HealthEvent, bool) {
	s := d.entry(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if verdict == domain.VerdictUnhealthy {
		s.state.ConsecutiveFailures++
	} else {
		s.state.ConsecutiveFailures = 0
	}

	previous := domain.VerdictUnknown
	if s.checked {
		previous = s.state.Verdict
	}

	changed := previous != verdict
	if !s.checked && verdict == domain.VerdictHealthy {
		changed = false
	}

	if !s.checked || previous != verdict {
		s.state.ChangedAt = outcome.Timestamp
	}
	s.checked = true
	s.state.Verdict = verdict

	if !changed {
		return nil, false
	}

	event := domain.NewHealthEvent(id, previous, verdict, outcome)
	if previous == domain.VerdictUnknown {
		event.Kind = domain.EventFailure
	}
	return event, true
}

// Last returns the stored state, false if the endpoint was never checked.
func (d *Detector) Last(id string) (State, bool) {
	d.mu.RLock()
	s, ok := d.states[id]
	d.mu.RUnlock()
	if !ok {
		return State{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.checked
}
