package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisNotifier publishes events as JSON on a pub/sub channel.
type RedisNotifier struct {
	client redis.UniversalClient
}

func NewRedisNotifier(client redis.UniversalClient) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func (n *RedisNotifier) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	s, ok := channel.Settings.(domain.RedisSettings)
	if !ok {
		return fmt.Errorf("unsupported settings %T for channel %s", channel.Settings, channel.ID)
	}

	data, err := json.Marshal(NewMessage(event, endpoint))
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := n.client.Publish(ctx, s.Channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}
