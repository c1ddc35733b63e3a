package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/shared/constants"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
)

// DeliveryObserver is told about every delivery decision.
type DeliveryObserver interface {
	ObserveDelivery(ctx context.Context, delivery domain.Delivery)
}

type Option func(*Governor)

func WithClock(now func() time.Time) Option {
	return func(g *Governor) { g.now = now }
}

func WithSendTimeout(timeout time.Duration) Option {
	return func(g *Governor) { g.sendTimeout = timeout }
}

func WithObserver(observer DeliveryObserver) Option {
	return func(g *Governor) { g.observers = append(g.observers, observer) }
}

// Governor decides which channels receive an event and sends it.
type Governor struct {
	channels    []domain.ChannelConfig
	registry    *Registry
	throttles   *xsync.Map[string, *throttle]
	observers   []DeliveryObserver
	now         func() time.Time
	sendTimeout time.Duration
	window      time.Duration
	logger      *slog.Logger
}

func NewGovernor(channels []domain.ChannelConfig, registry *Registry, logger *slog.Logger, opts ...Option) *Governor {
	if logger == nil {
		logger = slog.Default()
	}

	sorted := make([]domain.ChannelConfig, len(channels))
	copy(sorted, channels)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	g := &Governor{
		channels:    sorted,
		registry:    registry,
		throttles:   xsync.NewMap[string, *throttle](),
		now:         time.Now,
		sendTimeout: constants.NotifierTimeout,
		window:      constants.RateLimitWindow,
		logger:      logger.With("component", "governor"),
	}

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Governor) Channels() []domain.ChannelConfig {
	out := make([]domain.ChannelConfig, len(g.channels))
	copy(out, g.channels)
	return out
}

// Dispatch returns the ids of channels that accepted the event. Suppressed
// events are dropped. A failed send still counts against the limits.
func (g *Governor) Dispatch(ctx context.Context, event *domain.HealthEvent, endpoint domain.EndpointSpec) []string {
	delivered := make([]string, 0)

	for i := range g.channels {
		channel := &g.channels[i]

		if !channel.Enabled || !channel.Triggers(event.Kind) {
			continue
		}

		now := g.now()
		t := g.throttleFor(channel.ID, event.EndpointID)

		allowed, reason := t.admit(now, g.window, channel.Cooldown, channel.MaxNotificationsPerHour)
		if !allowed {
			g.logger.Debug("notification suppressed",
				"channel", channel.ID,
				"endpoint_id", event.EndpointID,
				"reason", reason,
			)
			g.observe(ctx, event, channel, domain.DeliverySuppressed, reason, nil, now)
			continue
		}

		if err := g.send(ctx, channel, event, endpoint); err != nil {
			g.logger.Error("notification failed",
				"channel", channel.ID,
				"type", channel.Type,
				"endpoint_id", event.EndpointID,
				"error", err,
			)
			g.observe(ctx, event, channel, domain.DeliveryFailed, "", err, now)
			continue
		}

		g.logger.Info("notification sent",
			"channel", channel.ID,
			"endpoint_id", event.EndpointID,
			"kind", event.Kind,
		)
		g.observe(ctx, event, channel, domain.DeliverySent, "", nil, now)
		delivered = append(delivered, channel.ID)
	}

	return delivered
}

func (g *Governor) send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) (err error) {
	notifier, ok := g.registry.Get(channel.Type)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoNotifier, channel.Type)
	}

	sendCtx, cancel := context.WithTimeout(ctx, g.sendTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()

	return notifier.Send(sendCtx, channel, event, endpoint)
}

func (g *Governor) throttleFor(channelID, endpointID string) *throttle {
	key := channelID + "\x00" + endpointID
	if t, ok := g.throttles.Load(key); ok {
		return t
	}
	t, _ := g.throttles.LoadOrStore(key, &throttle{})
	return t
}

// SentInWindow reports how many sends are counted for the pair right now.
func (g *Governor) SentInWindow(channelID, endpointID string) int {
	t, ok := g.throttles.Load(channelID + "\x00" + endpointID)
	if !ok {
		return 0
	}
	return t.count()
}

func (g *Governor) observe(ctx context.Context, event *domain.HealthEvent, channel *domain.ChannelConfig, status domain.DeliveryStatus, reason string, err error, now time.Time) {
	if len(g.observers) == 0 {
		return
	}

	delivery := domain.Delivery{
		EventID:    event.ID,
		ChannelID:  channel.ID,
		EndpointID: event.EndpointID,
		Status:     status,
		Reason:     reason,
		Timestamp:  now,
	}
	if err != nil {
		delivery.Error = err.Error()
	}

	for _, o := range g.observers {
		o.ObserveDelivery(ctx, delivery)
	}
}
