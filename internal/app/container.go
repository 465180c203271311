package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	interviewCommands "github.com/felixgeelhaar/panelist/internal/interviews/application/commands"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/editor"
	interviewQueries "github.com/felixgeelhaar/panelist/internal/interviews/application/queries"
	"github.com/felixgeelhaar/panelist/internal/interviews/application/subscribers"
	interviewsDomain "github.com/felixgeelhaar/panelist/internal/interviews/domain"
	resultCommands "github.com/felixgeelhaar/panelist/internal/results/application/commands"
	resultQueries "github.com/felixgeelhaar/panelist/internal/results/application/queries"
	resultsDomain "github.com/felixgeelhaar/panelist/internal/results/domain"
	sharedApplication "github.com/felixgeelhaar/panelist/internal/shared/application"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/cache"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/panelist/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/panelist/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/panelist/pkg/config"
	"github.com/felixgeelhaar/panelist/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	InterviewRepo interviewsDomain.Repository
	CandidateRepo resultsDomain.Repository
	OutboxRepo    outbox.Repository

	// Unit of Work
	UnitOfWork sharedApplication.UnitOfWork

	// Cache
	Cache        cache.Cache
	ListingCache *interviewQueries.ListingCache

	// Events
	EventPublisher    eventbus.Publisher
	InProcessBus      *eventbus.InProcessBus
	ListingSubscriber *subscribers.ListingSubscriber
	OutboxProcessor   *outbox.Processor

	// Interview Command Handlers
	CreateInterviewHandler *interviewCommands.CreateInterviewHandler
	SaveInterviewHandler   *interviewCommands.SaveInterviewHandler
	SubmitInterviewHandler *interviewCommands.SubmitInterviewHandler
	DeleteInterviewHandler *interviewCommands.DeleteInterviewHandler
	ImportInterviewHandler *interviewCommands.ImportInterviewHandler
	ExportInterviewHandler *interviewCommands.ExportInterviewHandler

	// Interview Query Handlers
	GetInterviewHandler   *interviewQueries.GetInterviewHandler
	ListInterviewsHandler *interviewQueries.ListInterviewsHandler

	// Editor sessions
	Editor *editor.Store

	// Results Command Handlers
	InviteCandidateHandler   *resultCommands.InviteCandidateHandler
	CompleteCandidateHandler *resultCommands.CompleteCandidateHandler
	RecordScoreHandler       *resultCommands.RecordScoreHandler
	AddNoteHandler           *resultCommands.AddNoteHandler

	// Results Query Handlers
	ListResultsHandler *resultQueries.ListResultsHandler
	StatsHandler       *resultQueries.StatsHandler
}

// NewContainer creates and wires all dependencies. Without DATABASE_URL it
// runs on SQLite; Redis and RabbitMQ fall back to in-process stand-ins in
// development and local mode.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	if err := c.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := c.initRepositories(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initCache(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEvents(); err != nil {
		c.Close()
		return nil, err
	}
	c.initHandlers()

	logger.Info("application container initialized",
		"driver", c.DBDriver,
		"local_mode", c.IsLocalMode(),
	)
	return c, nil
}

func (c *Container) initDatabase(ctx context.Context) error {
	driver, err := database.ParseDriver(c.Config.DatabaseDriver, c.Config.DatabaseURL)
	if err != nil {
		return err
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     driver,
		URL:        c.Config.DatabaseURL,
		SQLitePath: c.Config.SQLitePath,
		MaxConns:   c.Config.MaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.Logger.Info("running migrations", "driver", driver)
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DBConn = conn
	c.DBDriver = driver
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))
	c.Logger.Info("connected to database", "driver", driver)
	return nil
}

func (c *Container) initRepositories() error {
	factory := NewRepositoryFactory(c.DBConn)

	var err error
	if c.InterviewRepo, err = factory.InterviewRepository(); err != nil {
		return err
	}
	if c.CandidateRepo, err = factory.CandidateRepository(); err != nil {
		return err
	}
	if c.OutboxRepo, err = factory.OutboxRepository(); err != nil {
		return err
	}
	if c.UnitOfWork, err = factory.UnitOfWork(); err != nil {
		return err
	}
	return nil
}

// initCache connects to Redis when configured (optional in development and
// local mode) and falls back to an in-memory cache.
func (c *Container) initCache(ctx context.Context) error {
	if c.Config.RedisURL != "" {
		client, err := c.connectRedis(ctx)
		if err != nil {
			if !c.allowFallback() {
				return err
			}
			c.Logger.Warn("Redis not available, using in-memory cache", "error", err)
		} else {
			c.RedisClient = client
			redisCache := cache.NewRedisCache(client)
			c.Cache = redisCache
			c.Health.Register("cache", observability.PingChecker("redis", observability.HealthStatusDegraded, redisCache.Ping))
			c.Logger.Info("connected to Redis")
		}
	}
	if c.Cache == nil {
		c.Cache = cache.NewMemoryCache()
	}

	c.ListingCache = interviewQueries.NewListingCache(c.Cache, c.Config.CacheTTL, c.Logger).WithMetrics(c.Metrics)
	return nil
}

func (c *Container) connectRedis(ctx context.Context) (*redis.Client, error) {
	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// initEvents picks the outbox publisher: RabbitMQ behind a circuit breaker
// when configured, otherwise an in-process bus feeding local subscribers.
func (c *Container) initEvents() error {
	c.ListingSubscriber = subscribers.NewListingSubscriber(c.ListingCache, c.Logger)

	if c.Config.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Config.RabbitMQExchange, c.Logger)
		if err != nil {
			if !c.allowFallback() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			c.Logger.Warn("RabbitMQ not available, using in-process bus", "error", err)
		} else {
			breakerCfg := eventbus.DefaultBreakerConfig()
			if c.Config.BreakerFailureThreshold > 0 {
				breakerCfg.FailureThreshold = convert.IntToUint32Clamped(c.Config.BreakerFailureThreshold)
			}
			if c.Config.BreakerTimeout > 0 {
				breakerCfg.Timeout = c.Config.BreakerTimeout
			}
			c.EventPublisher = eventbus.NewBreakerPublisher(publisher, breakerCfg, c.Logger)
		}
	}

	if c.EventPublisher == nil {
		c.InProcessBus = eventbus.NewInProcessBus(c.Logger)
		c.InProcessBus.RegisterConsumer(c.ListingSubscriber)
		c.EventPublisher = c.InProcessBus
	}

	processorCfg := outbox.DefaultProcessorConfig()
	if c.Config.OutboxPollInterval > 0 {
		processorCfg.PollInterval = c.Config.OutboxPollInterval
	}
	if c.Config.OutboxBatchSize > 0 {
		processorCfg.BatchSize = c.Config.OutboxBatchSize
	}
	if c.Config.OutboxMaxRetries > 0 {
		processorCfg.MaxRetries = c.Config.OutboxMaxRetries
	}
	if c.Config.OutboxRetryBackoffBase > 0 {
		processorCfg.RetryBackoffBase = c.Config.OutboxRetryBackoffBase
	}
	if c.Config.OutboxRetryBackoffMax > 0 {
		processorCfg.RetryBackoffMax = c.Config.OutboxRetryBackoffMax
	}
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, processorCfg, c.Logger)
	return nil
}

func (c *Container) initHandlers() {
	logger := c.Logger

	// Interview commands
	c.CreateInterviewHandler = interviewCommands.NewCreateInterviewHandler(c.InterviewRepo, c.OutboxRepo, c.UnitOfWork, c.ListingCache, logger)
	c.SaveInterviewHandler = interviewCommands.NewSaveInterviewHandler(c.InterviewRepo, c.OutboxRepo, c.UnitOfWork, logger).
		WithListingInvalidator(c.ListingCache).
		WithMetrics(c.Metrics)
	c.SubmitInterviewHandler = interviewCommands.NewSubmitInterviewHandler(c.InterviewRepo, c.SaveInterviewHandler)
	c.DeleteInterviewHandler = interviewCommands.NewDeleteInterviewHandler(c.InterviewRepo, c.OutboxRepo, c.UnitOfWork, c.ListingCache, logger)
	c.ImportInterviewHandler = interviewCommands.NewImportInterviewHandler(c.CreateInterviewHandler, c.SaveInterviewHandler, c.UnitOfWork, logger)
	c.ExportInterviewHandler = interviewCommands.NewExportInterviewHandler(c.InterviewRepo)

	// Results queries feed interview stats
	c.StatsHandler = resultQueries.NewStatsHandler(c.CandidateRepo)
	c.ListResultsHandler = resultQueries.NewListResultsHandler(c.InterviewRepo, c.CandidateRepo)

	// Interview queries
	c.GetInterviewHandler = interviewQueries.NewGetInterviewHandler(c.InterviewRepo, c.StatsHandler)
	c.ListInterviewsHandler = interviewQueries.NewListInterviewsHandler(c.InterviewRepo, c.StatsHandler, c.ListingCache, logger)

	c.Editor = editor.NewStore(c.InterviewRepo, c.SaveInterviewHandler, c.CreateInterviewHandler, logger)

	// Results commands
	deps := resultCommands.Deps{
		Interviews:  c.InterviewRepo,
		Repo:        c.CandidateRepo,
		Outbox:      c.OutboxRepo,
		UnitOfWork:  c.UnitOfWork,
		Invalidator: c.ListingCache,
		Logger:      logger,
	}
	c.InviteCandidateHandler = resultCommands.NewInviteCandidateHandler(deps)
	c.CompleteCandidateHandler = resultCommands.NewCompleteCandidateHandler(deps)
	c.RecordScoreHandler = resultCommands.NewRecordScoreHandler(deps)
	c.AddNoteHandler = resultCommands.NewAddNoteHandler(deps)
}

// allowFallback reports whether optional infrastructure may be replaced by
// in-process stand-ins.
func (c *Container) allowFallback() bool {
	return c.Config.IsDevelopment() || c.IsLocalMode()
}

// IsLocalMode reports whether the container runs on SQLite.
func (c *Container) IsLocalMode() bool {
	return c.Config.LocalMode || c.DBDriver == database.DriverSQLite
}

// StartOutbox starts the outbox processor when enabled. It returns
// immediately; Close stops it.
func (c *Container) StartOutbox(ctx context.Context) error {
	if !c.Config.OutboxProcessorEnabled {
		c.Logger.Info("outbox processor disabled")
		return nil
	}
	return c.OutboxProcessor.Start(ctx)
}

// FlushOutbox publishes pending outbox messages once. Short-lived commands
// use it so local subscribers see their events.
func (c *Container) FlushOutbox(ctx context.Context) error {
	return c.OutboxProcessor.ProcessOnce(ctx)
}

// Close releases all resources.
func (c *Container) Close() error {
	var errs []error
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	return errors.Join(errs...)
}
