package domain

import "time"

type DeliveryStatus string

const (
	DeliverySent       DeliveryStatus = "sent"
	DeliveryFailed     DeliveryStatus = "failed"
	DeliverySuppressed DeliveryStatus = "suppressed"
)

// Delivery records what the governor decided for one channel and event.
type Delivery struct {
	EventID    string         `json:"event_id"`
	ChannelID  string         `json:"channel_id"`
	EndpointID string         `json:"endpoint_id"`
	Status     DeliveryStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Error      string         `json:"error,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
