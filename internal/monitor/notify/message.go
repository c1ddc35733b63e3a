package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"fmt"
	"strings"
	"time"
)

// Message is the channel-neutral content of a notification.
type Message struct {
	Title      string         `json:"title"`
	Text       string         `json:"text"`
	EventID    string         `json:"event_id"`
	Kind       string         `json:"kind"`
	EndpointID string         `json:"endpoint_id"`
	URL        string         `json:"url"`
	Previous   domain.Verdict `json:"previous"`
	Current    domain.Verdict `json:"current"`
	StatusCode *int           `json:"status_code,omitempty"`
	LatencyMs  *float64       `json:"latency_ms,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Error      string         `json:"error,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

func NewMessage(event *domain.HealthEvent, endpoint domain.EndpointSpec) Message {
	return Message{
		Title:      fmt.Sprintf("[%s] %s is %s", strings.ToUpper(string(event.Kind)), event.EndpointID, event.Current),
		Text:       messageText(event, endpoint),
		EventID:    event.ID,
		Kind:       string(event.Kind),
		EndpointID: event.EndpointID,
		URL:        endpoint.URL,
		Previous:   event.Previous,
		Current:    event.Current,
		StatusCode: event.Outcome.StatusCode,
		LatencyMs:  event.Outcome.LatencyMs,
		Reason:     event.Reason,
		Error:      event.Outcome.Error,
		Timestamp:  event.Timestamp.UTC(),
	}
}

func messageText(event *domain.HealthEvent, endpoint domain.EndpointSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Endpoint: %s\n", event.EndpointID)
	fmt.Fprintf(&b, "URL: %s\n", endpoint.URL)
	fmt.Fprintf(&b, "Status: %s -> %s\n", event.Previous, event.Current)
	if event.Reason != "" && event.Reason != event.Outcome.Error {
		fmt.Fprintf(&b, "Reason: %s\n", event.Reason)
	}
	if event.Outcome.StatusCode != nil {
		fmt.Fprintf(&b, "HTTP status: %d\n", *event.Outcome.StatusCode)
	}
	if event.Outcome.LatencyMs != nil {
		fmt.Fprintf(&b, "Response time: %.1fms\n", *event.Outcome.LatencyMs)
	}
	if event.Outcome.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", event.Outcome.Error)
	}
	fmt.Fprintf(&b, "Time: %s", event.Timestamp.UTC().Format(time.RFC3339))
	return b.String()
}
