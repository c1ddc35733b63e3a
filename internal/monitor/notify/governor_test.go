package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (n *recordingNotifier) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, channel.ID+"/"+event.EndpointID)
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

type deliveryLog struct {
	mu         sync.Mutex
	deliveries []domain.Delivery
}

func (l *deliveryLog) ObserveDelivery(_ context.Context, d domain.Delivery) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliveries = append(l.deliveries, d)
}

func failureEvent(endpointID string) *domain.HealthEvent {
	return domain.NewHealthEvent(endpointID, domain.VerdictHealthy, domain.VerdictUnhealthy, domain.NewErrorOutcome(endpointID, errors.New("boom")))
}

func consoleChannel(id string) domain.ChannelConfig {
	return domain.ChannelConfig{
		ID:         id,
		Type:       domain.ChannelConsole,
		Enabled:    true,
		OnFailure:  true,
		OnRecovery: true,
		Settings:   domain.ConsoleSettings{},

		MaxNotificationsPerHour: 10,
	}
}

func newTestGovernor(channels []domain.ChannelConfig, notifier Notifier, clock *fakeClock, opts ...Option) *Governor {
	registry := NewRegistry()
	registry.Register(domain.ChannelConsole, notifier)
	opts = append(opts, WithClock(clock.Now))
	return NewGovernor(channels, registry, nil, opts...)
}

func TestGovernor_RateLimit(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}
	log := &deliveryLog{}

	channel := consoleChannel("ops")
	channel.MaxNotificationsPerHour = 2

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock, WithObserver(log))
	endpoint := domain.EndpointSpec{ID: "api"}

	assert.Equal(t, []string{"ops"}, g.Dispatch(context.Background(), failureEvent("api"), endpoint))
	clock.Advance(time.Minute)
	assert.Equal(t, []string{"ops"}, g.Dispatch(context.Background(), failureEvent("api"), endpoint))
	clock.Advance(time.Minute)
	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), endpoint))

	assert.Equal(t, 2, notifier.count())
	require.Len(t, log.deliveries, 3)
	assert.Equal(t, domain.DeliverySuppressed, log.deliveries[2].Status)
	assert.Equal(t, reasonRateLimit, log.deliveries[2].Reason)

	// the first send leaves the trailing hour
	clock.Advance(59 * time.Minute)
	assert.Equal(t, []string{"ops"}, g.Dispatch(context.Background(), failureEvent("api"), endpoint))
	assert.Equal(t, 3, notifier.count())
}

func TestGovernor_Cooldown(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channel := consoleChannel("ops")
	channel.Cooldown = 5 * time.Minute

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock)
	endpoint := domain.EndpointSpec{ID: "api"}

	assert.Len(t, g.Dispatch(context.Background(), failureEvent("api"), endpoint), 1)

	clock.Advance(4 * time.Minute)
	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), endpoint))

	clock.Advance(time.Minute)
	assert.Len(t, g.Dispatch(context.Background(), failureEvent("api"), endpoint), 1)
	assert.Equal(t, 2, notifier.count())
}

func TestGovernor_ThrottleIsPerEndpoint(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channel := consoleChannel("ops")
	channel.MaxNotificationsPerHour = 1

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock)

	assert.Len(t, g.Dispatch(context.Background(), failureEvent("a"), domain.EndpointSpec{ID: "a"}), 1)
	assert.Len(t, g.Dispatch(context.Background(), failureEvent("b"), domain.EndpointSpec{ID: "b"}), 1)
	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("a"), domain.EndpointSpec{ID: "a"}))
}

func TestGovernor_DisabledChannelTouchesNoState(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channel := consoleChannel("ops")
	channel.Enabled = false

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock)

	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, g.SentInWindow("ops", "api"))
}

func TestGovernor_TriggerFlags(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channel := consoleChannel("ops")
	channel.OnRecovery = false

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock)
	recovery := domain.NewHealthEvent("api", domain.VerdictUnhealthy, domain.VerdictHealthy, domain.NewSuccessOutcome("api", 200, 0, ""))
	degraded := domain.NewHealthEvent("api", domain.VerdictHealthy, domain.VerdictDegraded, domain.NewSuccessOutcome("api", 200, 0, ""))

	assert.Empty(t, g.Dispatch(context.Background(), recovery, domain.EndpointSpec{ID: "api"}))
	assert.Empty(t, g.Dispatch(context.Background(), degraded, domain.EndpointSpec{ID: "api"}))
	assert.Equal(t, 0, g.SentInWindow("ops", "api"))
}

func TestGovernor_FailedSendStillCounts(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	log := &deliveryLog{}

	channel := consoleChannel("ops")
	channel.MaxNotificationsPerHour = 1

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock, WithObserver(log))

	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	assert.Equal(t, 1, g.SentInWindow("ops", "api"))

	notifier.err = nil
	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	assert.Equal(t, 1, notifier.count())

	require.Len(t, log.deliveries, 2)
	assert.Equal(t, domain.DeliveryFailed, log.deliveries[0].Status)
	assert.Equal(t, "webhook down", log.deliveries[0].Error)
	assert.Equal(t, domain.DeliverySuppressed, log.deliveries[1].Status)
}

func TestGovernor_ZeroRateLimitSuppressesEverything(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}
	log := &deliveryLog{}

	channel := consoleChannel("ops")
	channel.MaxNotificationsPerHour = 0

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock, WithObserver(log))

	for i := 0; i < 3; i++ {
		assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
		clock.Advance(time.Minute)
	}

	assert.Zero(t, notifier.count())
	assert.Zero(t, g.SentInWindow("ops", "api"))
	require.Len(t, log.deliveries, 3)
	for _, d := range log.deliveries {
		assert.Equal(t, domain.DeliverySuppressed, d.Status)
		assert.Equal(t, reasonRateLimit, d.Reason)
	}
}

func TestGovernor_ChannelsInIDOrder(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channels := []domain.ChannelConfig{consoleChannel("zeta"), consoleChannel("alpha"), consoleChannel("mid")}
	g := newTestGovernor(channels, notifier, clock)

	delivered := g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"})
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, delivered)
}

func TestGovernor_MissingNotifier(t *testing.T) {
	clock := newFakeClock()
	log := &deliveryLog{}

	channel := consoleChannel("hook")
	channel.Type = domain.ChannelWebhook

	g := newTestGovernor([]domain.ChannelConfig{channel}, &recordingNotifier{}, clock, WithObserver(log))

	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	require.Len(t, log.deliveries, 1)
	assert.Equal(t, domain.DeliveryFailed, log.deliveries[0].Status)
	assert.Contains(t, log.deliveries[0].Error, ErrNoNotifier.Error())
}

func TestGovernor_SendTimeout(t *testing.T) {
	clock := newFakeClock()
	slow := NotifierFunc(func(ctx context.Context, _ *domain.ChannelConfig, _ *domain.HealthEvent, _ domain.EndpointSpec) error {
		<-ctx.Done()
		return ctx.Err()
	})

	g := newTestGovernor([]domain.ChannelConfig{consoleChannel("ops")}, slow, clock, WithSendTimeout(20*time.Millisecond))

	start := time.Now()
	assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGovernor_NotifierPanicIsContained(t *testing.T) {
	clock := newFakeClock()
	panicky := NotifierFunc(func(context.Context, *domain.ChannelConfig, *domain.HealthEvent, domain.EndpointSpec) error {
		panic("bad notifier")
	})

	g := newTestGovernor([]domain.ChannelConfig{consoleChannel("ops")}, panicky, clock)

	assert.NotPanics(t, func() {
		assert.Empty(t, g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"}))
	})
}

func TestGovernor_ConcurrentDispatch(t *testing.T) {
	clock := newFakeClock()
	notifier := &recordingNotifier{}

	channel := consoleChannel("ops")
	channel.MaxNotificationsPerHour = 5

	g := newTestGovernor([]domain.ChannelConfig{channel}, notifier, clock)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Dispatch(context.Background(), failureEvent("api"), domain.EndpointSpec{ID: "api"})
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, notifier.count())
}
