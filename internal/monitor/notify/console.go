package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"log/slog"
)

type ConsoleNotifier struct {
	logger *slog.Logger
}

func NewConsoleNotifier(logger *slog.Logger) *ConsoleNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleNotifier{logger: logger.With("component", "console_notifier")}
}

func (n *ConsoleNotifier) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	msg := NewMessage(event, endpoint)

	level := slog.LevelWarn
	if event.Kind == domain.EventRecovery {
		level = slog.LevelInfo
	}

	n.logger.Log(ctx, level, msg.Title,
		"channel", channel.ID,
		"endpoint_id", msg.EndpointID,
		"url", msg.URL,
		"previous", msg.Previous,
		"current", msg.Current,
		"reason", msg.Reason,
		"error", msg.Error,
	)
	return nil
}
