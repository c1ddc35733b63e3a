package dependencies

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"ApiMonitor/internal/config"
	"ApiMonitor/internal/metrics"
	"ApiMonitor/internal/monitor/domain"
	"ApiMonitor/internal/monitor/notify"
	runner "ApiMonitor/internal/monitor/runners"
	"ApiMonitor/internal/monitor/services"
	"ApiMonitor/internal/shared/constants"
	"ApiMonitor/internal/storage"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Container holds everything the monitor needs at runtime.
type Container struct {
	// Config
	Config *config.Config

	// Logger
	Logger *slog.Logger

	// Metrics
	Metrics  *metrics.Collector
	Registry *prometheus.Registry

	// Storage
	Journal storage.Journal

	// Monitor
	Prober    *runner.HTTPRunner
	Notifiers *notify.Registry
	Governor  *notify.Governor
	Engine    *services.Engine
	Scheduler *services.Scheduler

	// Connections
	DB    *pgxpool.Pool
	Redis *redis.Client
}

// NewContainer connects the optional database and Redis and wires the engine.
func NewContainer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: log,
	}

	container.initMetrics()

	if err := container.initDatabase(ctx); err != nil {
		container.Close()
		return nil, err
	}

	if err := container.initRedis(ctx); err != nil {
		container.Close()
		return nil, err
	}

	container.initNotifiers()
	container.initServices()

	log.Info("Dependency container initialized successfully",
		"endpoints", len(cfg.EndpointSpecs()),
		"channels", len(cfg.Channels()),
		"journal", container.DB != nil,
	)
	return container, nil
}

func (c *Container) initMetrics() {
	c.Metrics = metrics.NewCollector()
	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		c.Metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

func (c *Container) initDatabase(ctx context.Context) error {
	if !c.Config.Database.Enabled {
		c.Journal = storage.NopJournal{}
		return nil
	}

	db, err := storage.NewPostgres(ctx, &c.Config.Database, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	store := storage.NewEventStore(db)
	if err := store.Migrate(ctx); err != nil {
		return err
	}
	c.Journal = store
	return nil
}

func (c *Container) initRedis(ctx context.Context) error {
	if !c.Config.UsesRedis() {
		return nil
	}

	client := redis.NewClient(c.Config.Redis.GetRedisOptions())
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		c.Logger.Error("failed to connect to Redis", "error", err)
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.Logger.Info("Connected to Redis", "addr", c.Config.Redis.Addr)
	c.Redis = client
	return nil
}

func (c *Container) initNotifiers() {
	c.Notifiers = notify.NewRegistry()

	webhooks := notify.NewHTTPNotifier(&http.Client{Timeout: constants.NotifierTimeout}, c.Logger)
	c.Notifiers.Register(domain.ChannelConsole, notify.NewConsoleNotifier(c.Logger))
	c.Notifiers.Register(domain.ChannelSlack, webhooks)
	c.Notifiers.Register(domain.ChannelDiscord, webhooks)
	c.Notifiers.Register(domain.ChannelWebhook, webhooks)
	c.Notifiers.Register(domain.ChannelEmail, notify.NewEmailNotifier())

	if c.Redis != nil {
		c.Notifiers.Register(domain.ChannelRedis, notify.NewRedisNotifier(c.Redis))
	}
}

func (c *Container) initServices() {
	c.Prober = runner.NewHTTPRunner(c.Logger)

	c.Governor = notify.NewGovernor(
		c.Config.Channels(),
		c.Notifiers,
		c.Logger,
		notify.WithObserver(c.Metrics),
		notify.WithObserver(services.NewJournalObserver(c.Journal, c.Metrics, c.Logger)),
	)

	c.Engine = services.NewEngine(
		c.Config.EndpointSpecs(),
		c.Prober,
		c.Governor,
		services.EngineConfig{
			MaxHistoryDays: c.Config.MaxHistoryDays,
			Journal:        c.Journal,
			Metrics:        c.Metrics,
		},
		c.Logger,
	)

	var opts []services.SchedulerOption
	if c.DB != nil && c.Config.Database.RetentionDays > 0 {
		retention := constants.Day * time.Duration(c.Config.Database.RetentionDays)
		opts = append(opts, services.WithJournalPruning(retention, constants.JournalPruneInterval))
	}
	c.Scheduler = services.NewScheduler(c.Engine, c.Logger, opts...)
}

// Close releases connections. Every failure is reported.
func (c *Container) Close() error {
	var errs *multierror.Error

	if c.Prober != nil {
		c.Prober.Close()
	}

	if c.DB != nil {
		c.DB.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("redis: %w", err))
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("errors closing dependencies: %w", err)
	}
	return nil
}
