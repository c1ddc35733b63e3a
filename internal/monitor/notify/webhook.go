package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/shared/constants"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"github.com/sony/gobreaker"
)

var ErrCircuitOpen = errors.New("circuit breaker open")

// HTTPNotifier posts JSON to slack, discord and generic webhooks. Every
// channel gets its own circuit breaker.
type HTTPNotifier struct {
	client   *http.Client
	breakers *xsync.Map[string, *gobreaker.CircuitBreaker]
	logger   *slog.Logger
}

func NewHTTPNotifier(client *http.Client, logger *slog.Logger) *HTTPNotifier {
	if client == nil {
		client = &http.Client{Timeout: constants.NotifierTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPNotifier{
		client:   client,
		breakers: xsync.NewMap[string, *gobreaker.CircuitBreaker](),
		logger:   logger.With("component", "http_notifier"),
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	req, err := n.buildRequest(ctx, channel, NewMessage(event, endpoint))
	if err != nil {
		return err
	}

	_, err = n.breaker(channel.ID).Execute(func() (interface{}, error) {
		return nil, n.do(req)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w for channel %s", ErrCircuitOpen, channel.ID)
	}
	return err
}

func (n *HTTPNotifier) do(req *http.Request) error {
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, constants.MaxBodyPreview))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (n *HTTPNotifier) buildRequest(ctx context.Context, channel *domain.ChannelConfig, msg Message) (*http.Request, error) {
	var (
		url     string
		method  = http.MethodPost
		headers map[string]string
		payload interface{}
	)

	switch s := channel.Settings.(type) {
	case domain.SlackSettings:
		url = s.WebhookURL
		payload = slackPayload(s, msg)
	case domain.DiscordSettings:
		url = s.WebhookURL
		payload = discordPayload(s, msg)
	case domain.WebhookSettings:
		url = s.URL
		if s.Method != "" {
			method = strings.ToUpper(s.Method)
		}
		headers = s.Headers
		payload = msg
	default:
		return nil, fmt.Errorf("unsupported settings %T for channel %s", channel.Settings, channel.ID)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", constants.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

func (n *HTTPNotifier) breaker(channelID string) *gobreaker.CircuitBreaker {
	if cb, ok := n.breakers.Load(channelID); ok {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        channelID,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			n.logger.Warn("circuit breaker state changed",
				"channel", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	cb, _ := n.breakers.LoadOrStore(channelID, gobreaker.NewCircuitBreaker(settings))
	return cb
}

func kindColor(kind string) (string, int) {
	switch domain.EventKind(kind) {
	case domain.EventRecovery:
		return "good", 0x2eb67d
	case domain.EventDegraded:
		return "warning", 0xecb22e
	default:
		return "danger", 0xe01e5a
	}
}

func slackPayload(s domain.SlackSettings, msg Message) map[string]interface{} {
	color, _ := kindColor(msg.Kind)
	payload := map[string]interface{}{
		"text": msg.Title,
		"attachments": []map[string]interface{}{{
			"color": color,
			"title": msg.Title,
			"text":  msg.Text,
			"ts":    msg.Timestamp.Unix(),
		}},
	}
	if s.Channel != "" {
		payload["channel"] = s.Channel
	}
	if s.Username != "" {
		payload["username"] = s.Username
	}
	return payload
}

func discordPayload(s domain.DiscordSettings, msg Message) map[string]interface{} {
	_, color := kindColor(msg.Kind)
	payload := map[string]interface{}{
		"content": msg.Title,
		"embeds": []map[string]interface{}{{
			"title":       msg.Title,
			"description": msg.Text,
			"color":       color,
			"timestamp":   msg.Timestamp.Format(time.RFC3339),
		}},
	}
	if s.Username != "" {
		payload["username"] = s.Username
	}
	return payload
}
