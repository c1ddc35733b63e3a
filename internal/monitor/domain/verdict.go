package domain

type Verdict string

const (
	VerdictHealthy   Verdict = "healthy"
	VerdictDegraded  Verdict = "degraded"
	VerdictUnhealthy Verdict = "unhealthy"

	// only used as the previous verdict of a cold-start event
	VerdictUnknown Verdict = "unknown"
)

func (v Verdict) String() string {
	return string(v)
}

func (v Verdict) IsUp() bool {
	return v == VerdictHealthy || v == VerdictDegraded
}
