package services

import (
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/shared/constants"
	"context"
	"log/slog"
	"sync"
	"time"
)

type SchedulerOption func(*Scheduler)

// WithJournalPruning removes journal entries older than retention every interval.
func WithJournalPruning(retention, every time.Duration) SchedulerOption {
	return func(s *Scheduler) {
		s.retention = retention
		s.pruneEvery = every
	}
}

// Scheduler checks every endpoint on its own interval. Checks of one
// endpoint never overlap; different endpoints run in parallel.
type Scheduler struct {
	engine *Engine
	logger *slog.Logger

	retention  time.Duration
	pruneEvery time.Duration

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(engine *Engine, logger *slog.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		engine: engine,
		logger: logger.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run blocks until ctx is cancelled or Shutdown is called and every loop has returned.
// After Shutdown the scheduler cannot be started again; Run returns at once.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		s.logger.Info("scheduler already shut down")
		return nil
	}
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	endpoints := s.engine.Endpoints()
	s.logger.Info("scheduler started", "endpoints", len(endpoints))

	var wg sync.WaitGroup
	for _, spec := range endpoints {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.loop(ctx, spec)
		}()
	}

	if s.retention > 0 && s.pruneEvery > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.pruneLoop(ctx)
		}()
	}

	wg.Wait()
	s.logger.Info("scheduler stopped")
	return nil
}

// loop runs the first check immediately. Ticks that fire while a check is
// still running are dropped by the ticker.
func (s *Scheduler) loop(ctx context.Context, spec domain.EndpointSpec) {
	interval := spec.Interval
	if interval <= 0 {
		interval = constants.DefaultCheckInterval
	}

	s.check(ctx, spec.ID)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx, spec.ID)
		}
	}
}

func (s *Scheduler) check(ctx context.Context, id string) {
	if ctx.Err() != nil {
		return
	}
	if _, _, err := s.engine.CheckEndpoint(ctx, id); err != nil {
		s.logger.Error("check failed", "endpoint_id", id, "error", err)
	}
}

func (s *Scheduler) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(s.pruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = s.engine.PruneJournal(ctx, s.retention)
		}
	}
}

// Shutdown cancels all loops and waits up to grace for them to return.
func (s *Scheduler) Shutdown(grace time.Duration) error {
	s.mu.Lock()
	s.stopped = true
	cancel, done, running := s.cancel, s.done, s.running
	s.mu.Unlock()

	if !running {
		return nil
	}

	cancel()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		s.logger.Warn("shutdown grace period exceeded", "grace", grace)
		return ErrShutdownTimeout
	}
}
