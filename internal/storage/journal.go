package storage

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"time"
)

// Journal is an audit log of health events and notification decisions.
type Journal interface {
	RecordEvent(ctx context.Context, event *domain.HealthEvent) error
	RecordDelivery(ctx context.Context, delivery domain.Delivery) error
	ListEvents(ctx context.Context, endpointID string, limit int) ([]*domain.HealthEvent, error)
	PruneEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

var _ Journal = (*EventStore)(nil)

// NopJournal is used when no database is configured.
type NopJournal struct{}

func (NopJournal) RecordEvent(context.Context, *domain.HealthEvent) error { return nil }

func (NopJournal) RecordDelivery(context.Context, domain.Delivery) error { return nil }

func (NopJournal) ListEvents(context.Context, string, int) ([]*domain.HealthEvent, error) {
	return nil, nil
}

func (NopJournal) PruneEvents(context.Context, time.Time) (int64, error) { return 0, nil }
