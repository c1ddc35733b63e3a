package domain

import "time"

// CheckOutcome is the raw result of one probe, including all retry attempts.
type CheckOutcome struct {
	EndpointID string    `json:"endpoint_id"`
	Timestamp  time.Time `json:"timestamp"`
	Success    bool      `json:"success"`
	StatusCode *int      `json:"status_code,omitempty"`
	LatencyMs  *float64  `json:"latency_ms,omitempty"`
	Error      string    `json:"error,omitempty"`
	Attempts   int       `json:"attempts"`

	// bounded preview, only read by the classifier
	Body string `json:"-"`
}

func NewSuccessOutcome(endpointID string, statusCode int, latency time.Duration, body string) CheckOutcome {
	ms := float64(latency.Microseconds()) / 1000
	return CheckOutcome{
		EndpointID: endpointID,
		Timestamp:  time.Now(),
		Success:    true,
		StatusCode: &statusCode,
		LatencyMs:  &ms,
		Body:       body,
		Attempts:   1,
	}
}

func NewErrorOutcome(endpointID string, err error) CheckOutcome {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return CheckOutcome{
		EndpointID: endpointID,
		Timestamp:  time.Now(),
		Success:    false,
		Error:      msg,
		Attempts:   1,
	}
}
