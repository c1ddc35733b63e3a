package services

import (
	"ApiMonitor/internal/metrics"
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/monitor/health"
	"ApiMonitor/internal/monitor/notify"
	runner "ApiMonitor/internal/monitor/runners"
	"ApiMonitor/internal/monitor/stats"
	"ApiMonitor/internal/monitor/transition"
	"ApiMonitor/internal/shared/constants"
	"ApiMonitor/internal/storage"
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

type EngineConfig struct {
	MaxHistoryDays int
	Journal        storage.Journal
	Metrics        *metrics.Collector
}

// Engine runs the check pipeline for a fixed set of endpoints:
// probe, classify, record, detect, dispatch.
type Engine struct {
	endpoints  []domain.EndpointSpec
	byID       map[string]domain.EndpointSpec
	prober     runner.Prober
	aggregator *stats.Aggregator
	detector   *transition.Detector
	governor   *notify.Governor
	journal    storage.Journal
	metrics    *metrics.Collector
	logger     *slog.Logger
	now        func() time.Time
}

func NewEngine(
	endpoints []domain.EndpointSpec,
	prober runner.Prober,
	governor *notify.Governor,
	cfg EngineConfig,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	historyDays := cfg.MaxHistoryDays
	if historyDays <= 0 {
		historyDays = constants.DefaultHistoryDays
	}

	journal := cfg.Journal
	if journal == nil {
		journal = storage.NopJournal{}
	}

	e := &Engine{
		endpoints:  append([]domain.EndpointSpec(nil), endpoints...),
		byID:       make(map[string]domain.EndpointSpec, len(endpoints)),
		prober:     prober,
		aggregator: stats.NewAggregator(),
		detector:   transition.NewDetector(),
		governor:   governor,
		journal:    journal,
		metrics:    cfg.Metrics,
		logger:     logger.With("component", "engine"),
		now:        time.Now,
	}

	for _, spec := range e.endpoints {
		e.byID[spec.ID] = spec
		e.aggregator.Register(spec, spec.HistoryCapacity(historyDays))
	}

	return e
}

func (e *Engine) Endpoints() []domain.EndpointSpec {
	return append([]domain.EndpointSpec(nil), e.endpoints...)
}

func (e *Engine) Endpoint(id string) (domain.EndpointSpec, bool) {
	spec, ok := e.byID[id]
	return spec, ok
}

// CheckEndpoint runs one full pipeline pass. Callers must not run two passes
// for the same endpoint at once; the Scheduler guarantees this.
func (e *Engine) CheckEndpoint(ctx context.Context, id string) (domain.CheckOutcome, domain.Verdict, error) {
	spec, ok := e.byID[id]
	if !ok {
		return domain.CheckOutcome{}, "", fmt.Errorf("%w: %s", ErrUnknownEndpoint, id)
	}

	outcome := e.prober.Probe(ctx, spec)
	verdict := health.Classify(spec, outcome)

	if verdict == domain.VerdictUnhealthy {
		e.logger.Warn("endpoint check failed",
			"endpoint_id", id,
			"reason", health.Reason(spec, outcome),
			"attempts", outcome.Attempts,
		)
	} else {
		e.logger.Debug("endpoint checked",
			"endpoint_id", id,
			"verdict", verdict,
			"status_code", outcome.StatusCode,
			"latency_ms", outcome.LatencyMs,
		)
	}

	e.aggregator.Record(id, outcome, verdict)
	if e.metrics != nil {
		e.metrics.RecordCheck(outcome, verdict)
	}

	event, changed := e.detector.Detect(id, verdict, outcome)
	if !changed {
		return outcome, verdict, nil
	}
	event.Reason = health.Reason(spec, outcome)

	e.logger.Info("endpoint health changed",
		"endpoint_id", id,
		"previous", event.Previous,
		"current", event.Current,
		"kind", event.Kind,
		"reason", event.Reason,
	)

	if e.metrics != nil {
		e.metrics.RecordEvent(event)
	}
	if err := e.journal.RecordEvent(ctx, event); err != nil {
		e.journalFailed(err, "endpoint_id", id)
	}

	if e.governor != nil {
		e.governor.Dispatch(ctx, event, spec)
	}

	return outcome, verdict, nil
}

// CheckAll checks every endpoint once, concurrently.
func (e *Engine) CheckAll(ctx context.Context) map[string]domain.Verdict {
	results := make([]domain.Verdict, len(e.endpoints))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range e.endpoints {
		g.Go(func() error {
			_, verdict, err := e.CheckEndpoint(gctx, spec.ID)
			results[i] = verdict
			return err
		})
	}
	_ = g.Wait()

	out := make(map[string]domain.Verdict, len(results))
	for i, spec := range e.endpoints {
		out[spec.ID] = results[i]
	}
	return out
}

func (e *Engine) GetStats(id string) (domain.Stats, error) {
	s, ok := e.aggregator.Stats(id)
	if !ok {
		return domain.Stats{}, fmt.Errorf("%w: %s", ErrUnknownEndpoint, id)
	}

	if state, checked := e.detector.Last(id); checked {
		s.ConsecutiveFailures = state.ConsecutiveFailures
	}
	return s, nil
}

func (e *Engine) GetAllStats() map[string]domain.Stats {
	out := make(map[string]domain.Stats, len(e.endpoints))
	for _, spec := range e.endpoints {
		if s, err := e.GetStats(spec.ID); err == nil {
			out[spec.ID] = s
		}
	}
	return out
}

func (e *Engine) History(id string) ([]stats.Entry, error) {
	entries, ok := e.aggregator.History(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, id)
	}
	return entries, nil
}

// GetHealthSummary is healthy only when every endpoint has been checked and
// is healthy. No endpoints at all counts as healthy.
func (e *Engine) GetHealthSummary() domain.HealthSummary {
	summary := domain.HealthSummary{
		EndpointCount: len(e.endpoints),
		Timestamp:     e.now().UTC(),
	}

	pending := 0
	for _, spec := range e.endpoints {
		state, checked := e.detector.Last(spec.ID)
		if !checked {
			pending++
			continue
		}
		switch state.Verdict {
		case domain.VerdictHealthy:
			summary.HealthyCount++
		case domain.VerdictDegraded:
			summary.DegradedCount++
		case domain.VerdictUnhealthy:
			summary.UnhealthyCount++
		}
	}

	switch {
	case summary.UnhealthyCount > 0:
		summary.Status = domain.SummaryUnhealthy
	case summary.DegradedCount > 0:
		summary.Status = domain.SummaryDegraded
	case pending > 0:
		summary.Status = domain.SummaryUnhealthy
	default:
		summary.Status = domain.SummaryHealthy
	}

	return summary
}

// Events lists journaled health events, newest first.
func (e *Engine) Events(ctx context.Context, endpointID string, limit int) ([]*domain.HealthEvent, error) {
	if endpointID != "" {
		if _, ok := e.byID[endpointID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpointID)
		}
	}

	events, err := e.journal.ListEvents(ctx, endpointID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

// PruneJournal removes journal entries older than retention.
func (e *Engine) PruneJournal(ctx context.Context, retention time.Duration) (int64, error) {
	removed, err := e.journal.PruneEvents(ctx, e.now().Add(-retention))
	if err != nil {
		e.journalFailed(err)
		return 0, err
	}
	if removed > 0 {
		e.logger.Info("journal pruned", "removed", removed)
	}
	return removed, nil
}

func (e *Engine) journalFailed(err error, attrs ...any) {
	if e.metrics != nil {
		e.metrics.RecordJournalError()
	}
	e.logger.Error("journal write failed", append(attrs, "error", err)...)
}
