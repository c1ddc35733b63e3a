package services

import (
	"ApiMonitor/internal/metrics"
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/storage"
	"context"
	"log/slog"
)

// JournalObserver writes governor decisions to the journal.
type JournalObserver struct {
	journal storage.Journal
	metrics *metrics.Collector
	logger  *slog.Logger
}

func NewJournalObserver(journal storage.Journal, collector *metrics.Collector, logger *slog.Logger) *JournalObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &JournalObserver{
		journal: journal,
		metrics: collector,
		logger:  logger.With("component", "journal"),
	}
}

func (o *JournalObserver) ObserveDelivery(ctx context.Context, delivery domain.Delivery) {
	if err := o.journal.RecordDelivery(ctx, delivery); err != nil {
		if o.metrics != nil {
			o.metrics.RecordJournalError()
		}
		o.logger.Error("failed to record delivery",
			"channel", delivery.ChannelID,
			"endpoint_id", delivery.EndpointID,
			"error", err,
		)
	}
}
