package notify

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"errors"
	"sync"
)

var ErrNoNotifier = errors.New("no notifier registered for channel type")

// Notifier delivers one event through one channel.
type Notifier interface {
	Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error
}

type NotifierFunc func(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error

func (f NotifierFunc) Send(ctx context.Context, channel *domain.ChannelConfig, event *domain.HealthEvent, endpoint domain.EndpointSpec) error {
	return f(ctx, channel, event, endpoint)
}

type Registry struct {
	mu        sync.RWMutex
	notifiers map[domain.ChannelType]Notifier
}

func NewRegistry() *Registry {
	return &Registry{
		notifiers: make(map[domain.ChannelType]Notifier),
	}
}

func (r *Registry) Register(channelType domain.ChannelType, notifier Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifiers[channelType] = notifier
}

func (r *Registry) Get(channelType domain.ChannelType) (Notifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifiers[channelType]
	return n, ok
}
