package domain

import (
	"ApiMonitor/pkg/uuidutil"
	"time"
)

type EventKind string

const (
	EventFailure  EventKind = "failure"
	EventDegraded EventKind = "degraded"
	EventRecovery EventKind = "recovery"
)

// HealthEvent is emitted when an endpoint's verdict changes.
type HealthEvent struct {
	ID         string       `json:"id"`
	EndpointID string       `json:"endpoint_id"`
	Kind       EventKind    `json:"kind"`
	Previous   Verdict      `json:"previous"`
	Current    Verdict      `json:"current"`
	Timestamp  time.Time    `json:"timestamp"`
	Outcome    CheckOutcome `json:"outcome"`

	// Reason is the classifier's explanation of Current.
	Reason string `json:"reason,omitempty"`
}

func NewHealthEvent(endpointID string, previous, current Verdict, outcome CheckOutcome) *HealthEvent {
	ts := outcome.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return &HealthEvent{
		ID:         uuidutil.New(),
		EndpointID: endpointID,
		Kind:       KindFor(current),
		Previous:   previous,
		Current:    current,
		Timestamp:  ts,
		Outcome:    outcome,
	}
}

func KindFor(v Verdict) EventKind {
	switch v {
	case VerdictHealthy:
		return EventRecovery
	case VerdictDegraded:
		return EventDegraded
	default:
		return EventFailure
	}
}
