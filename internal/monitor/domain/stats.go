package domain

import "time"

// Stats is derived from an endpoint's history on every call.
// Latency fields are nil when there are no successful checks.
type Stats struct {
	EndpointID            string     `json:"endpoint_id"`
	TotalChecks           int        `json:"total_checks"`
	SuccessfulChecks      int        `json:"successful_checks"`
	FailedChecks          int        `json:"failed_checks"`
	UptimePercentage      float64    `json:"uptime_percentage"`
	AverageResponseTimeMs *float64   `json:"average_response_time_ms,omitempty"`
	MinResponseTimeMs     *float64   `json:"min_response_time_ms,omitempty"`
	MaxResponseTimeMs     *float64   `json:"max_response_time_ms,omitempty"`
	P95ResponseTimeMs     *float64   `json:"p95_response_time_ms,omitempty"`
	P99ResponseTimeMs     *float64   `json:"p99_response_time_ms,omitempty"`
	ConsecutiveFailures   int        `json:"consecutive_failures"`
	LastVerdict           Verdict    `json:"last_verdict,omitempty"`
	LastCheckedAt         *time.Time `json:"last_checked_at,omitempty"`
	SLAMet                *bool      `json:"sla_met,omitempty"`
}

type SummaryStatus string

const (
	SummaryHealthy   SummaryStatus = "healthy"
	SummaryDegraded  SummaryStatus = "degraded"
	SummaryUnhealthy SummaryStatus = "unhealthy"
)

type HealthSummary struct {
	Status         SummaryStatus `json:"status"`
	HealthyCount   int           `json:"healthy_count"`
	DegradedCount  int           `json:"degraded_count"`
	UnhealthyCount int           `json:"unhealthy_count"`
	EndpointCount  int           `json:"endpoint_count"`
	Timestamp      time.Time     `json:"timestamp"`
}
