package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewMessage(t *testing.T) {
	outcome := domain.NewSuccessOutcome("api", 503, 120*time.Millisecond, "")
	event := domain.NewHealthEvent("api", domain.VerdictHealthy, domain.VerdictUnhealthy, outcome)

	msg := NewMessage(event, domain.EndpointSpec{ID: "api", URL: "https://api.example.com"})

	assert.Equal(t, "[FAILURE] api is unhealthy", msg.Title)
	assert.Equal(t, "failure", msg.Kind)
	assert.Contains(t, msg.Text, "Status: healthy -> unhealthy")
	assert.Contains(t, msg.Text, "HTTP status: 503")
	assert.Contains(t, msg.Text, "Response time: 120.0ms")
	assert.NotContains(t, msg.Text, "Error:")
	assert.NotContains(t, msg.Text, "Reason:")
}

func TestNewMessage_CarriesReason(t *testing.T) {
	outcome := domain.NewSuccessOutcome("api", 500, 20*time.Millisecond, "")
	event := domain.NewHealthEvent("api", domain.VerdictHealthy, domain.VerdictUnhealthy, outcome)
	event.Reason = "unexpected status code 500"

	msg := NewMessage(event, domain.EndpointSpec{ID: "api", URL: "https://api.example.com"})

	assert.Equal(t, "unexpected status code 500", msg.Reason)
	assert.Empty(t, msg.Error)
	assert.Contains(t, msg.Text, "Reason: unexpected status code 500")
}

func TestNewMessage_ReasonNotRepeatedForErrors(t *testing.T) {
	outcome := domain.NewErrorOutcome("api", errors.New("connection refused"))
	event := domain.NewHealthEvent("api", domain.VerdictHealthy, domain.VerdictUnhealthy, outcome)
	event.Reason = outcome.Error

	msg := NewMessage(event, domain.EndpointSpec{ID: "api"})

	assert.Contains(t, msg.Text, "Error: connection refused")
	assert.NotContains(t, msg.Text, "Reason:")
}
