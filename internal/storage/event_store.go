package storage

import (
	"ApiMonitor/internal/monitor/domain"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS health_events (
	id          UUID PRIMARY KEY,
	endpoint_id TEXT NOT NULL,
	kind        TEXT NOT NULL,
	previous    TEXT NOT NULL,
	current     TEXT NOT NULL,
	outcome     JSONB NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
ALTER TABLE health_events ADD COLUMN IF NOT EXISTS reason TEXT NOT NULL DEFAULT '';
CREATE INDEX IF NOT EXISTS idx_health_events_endpoint ON health_events (endpoint_id, created_at DESC);

CREATE TABLE IF NOT EXISTS notification_deliveries (
	id          BIGSERIAL PRIMARY KEY,
	event_id    UUID NOT NULL,
	channel_id  TEXT NOT NULL,
	endpoint_id TEXT NOT NULL,
	status      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notification_deliveries_event ON notification_deliveries (event_id);
`

type EventStore struct {
	pool *pgxpool.Pool
}

// NewEventStore returns a Postgres backed Journal. Call Migrate before use.
func NewEventStore(pool *pgxpool.Pool) *EventStore {
	return &EventStore{pool: pool}
}

func (s *EventStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate journal schema: %w", err)
	}
	return nil
}

func (s *EventStore) RecordEvent(ctx context.Context, event *domain.HealthEvent) error {
	outcomeJSON, err := json.Marshal(event.Outcome)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}

	query := `
		INSERT INTO health_events (id, endpoint_id, kind, previous, current, outcome, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		event.ID,
		event.EndpointID,
		string(event.Kind),
		string(event.Previous),
		string(event.Current),
		outcomeJSON,
		event.Reason,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record health event: %w", err)
	}

	return nil
}

func (s *EventStore) RecordDelivery(ctx context.Context, delivery domain.Delivery) error {
	query := `
		INSERT INTO notification_deliveries (event_id, channel_id, endpoint_id, status, reason, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		delivery.EventID,
		delivery.ChannelID,
		delivery.EndpointID,
		string(delivery.Status),
		delivery.Reason,
		delivery.Error,
		delivery.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	return nil
}

// ListEvents returns the newest events first. An empty endpointID lists all endpoints.
func (s *EventStore) ListEvents(ctx context.Context, endpointID string, limit int) ([]*domain.HealthEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT id::text, endpoint_id, kind, previous, current, outcome, reason, created_at
		FROM health_events
		WHERE ($1 = '' OR endpoint_id = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query health events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *EventStore) PruneEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin prune: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM notification_deliveries WHERE created_at < $1`, olderThan); err != nil {
		return 0, fmt.Errorf("failed to prune deliveries: %w", err)
	}

	result, err := tx.Exec(ctx, `DELETE FROM health_events WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune health events: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}

	return result.RowsAffected(), nil
}

func (s *EventStore) scanEvents(rows pgx.Rows) ([]*domain.HealthEvent, error) {
	var events []*domain.HealthEvent

	for rows.Next() {
		var (
			event       domain.HealthEvent
			kind        string
			previous    string
			current     string
			outcomeJSON []byte
		)

		err := rows.Scan(
			&event.ID,
			&event.EndpointID,
			&kind,
			&previous,
			&current,
			&outcomeJSON,
			&event.Reason,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}

		event.Kind = domain.EventKind(kind)
		event.Previous = domain.Verdict(previous)
		event.Current = domain.Verdict(current)

		if len(outcomeJSON) > 0 {
			if err := json.Unmarshal(outcomeJSON, &event.Outcome); err != nil {
				return nil, fmt.Errorf("failed to unmarshal outcome: %w", err)
			}
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}

	return events, nil
}
