// Package app assembles storage, cache, events and the payment gateway into
// an HTTP handler.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/parceltrack/parceltrack/internal/cache"
	"github.com/parceltrack/parceltrack/internal/config"
	"github.com/parceltrack/parceltrack/internal/events"
	"github.com/parceltrack/parceltrack/internal/metrics"
	"github.com/parceltrack/parceltrack/internal/migrate"
	"github.com/parceltrack/parceltrack/internal/payment"
	"github.com/parceltrack/parceltrack/internal/repository"
	"github.com/parceltrack/parceltrack/internal/repository/memory"
	"github.com/parceltrack/parceltrack/internal/repository/mongodb"
	"github.com/parceltrack/parceltrack/internal/repository/postgres"
)

// Closer releases a dependency during shutdown.
type Closer struct {
	Name string
	Fn   func(ctx context.Context) error
}

// Deps are the collaborators the router is built from.
type Deps struct {
	StoreName string
	Store     repository.Repository
	// Cache is optional; nil disables parcel caching and rate limiting.
	Cache     *cache.Cache
	Gateway   payment.Gateway
	Publisher *events.Publisher
	Metrics   *metrics.InMemoryRecorder
}

// App is a fully wired application.
type App struct {
	Deps    Deps
	Closers []Closer
}

// New connects every configured dependency. On failure anything already
// opened is closed before returning.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			a.closeAll(context.Background(), logger)
		}
	}()

	a.Deps.Metrics = metrics.NewInMemory()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Deps.StoreName = cfg.DatabaseDriver
	a.Deps.Store = store
	a.Closers = append(a.Closers, Closer{Name: cfg.DatabaseDriver, Fn: store.Close})
	logger.Info("connected to storage", slog.String("driver", cfg.DatabaseDriver))

	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL, cache.WithTTL(cfg.CacheTTL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		a.Deps.Cache = c
		a.Closers = append(a.Closers, Closer{Name: "redis", Fn: func(context.Context) error { return c.Close() }})
		logger.Info("connected to Redis")
	}

	sink, err := openSink(cfg, a.Deps.Cache)
	if err != nil {
		return nil, err
	}
	pub := events.NewPublisher(sink, logger, a.Deps.Metrics)
	a.Deps.Publisher = pub
	a.Closers = append(a.Closers, Closer{Name: "events", Fn: pub.Close})

	if cfg.PaymentGatewayKey != "" {
		a.Deps.Gateway = payment.NewStripeGateway(cfg.PaymentGatewayKey, payment.WithCurrency(cfg.PaymentCurrency))
	} else {
		logger.Warn("PAYMENT_GATEWAY_KEY not set, payment intents will fail")
		a.Deps.Gateway = payment.UnconfiguredGateway{}
	}

	return a, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.Repository, error) {
	switch cfg.DatabaseDriver {
	case config.DriverMongo:
		repo, err := mongodb.New(ctx, cfg.MongoURI(), cfg.DBName)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = repo.Close(context.Background())
			return nil, fmt.Errorf("failed to ensure indexes: %w", err)
		}
		return repo, nil
	case config.DriverPostgres:
		applied, err := ensureSchema(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
		if len(applied) > 0 {
			logger.Info("migrations applied", "versions", applied)
		}

		repo, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		return repo, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DatabaseDriver)
	}
}

// ensureSchema brings the PostgreSQL schema up to date so constraints such as
// the unique user email exist before the first request.
func ensureSchema(ctx context.Context, databaseURL string) ([]string, error) {
	db, err := migrate.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return migrate.Up(ctx, db)
}

func openSink(cfg *config.Config, c *cache.Cache) (events.Sink, error) {
	switch cfg.EventsBackend {
	case config.EventsRedis:
		if c == nil {
			return nil, fmt.Errorf("redis events backend requires REDIS_URL")
		}
		return events.NewRedisStreamSink(c.Client()), nil
	case config.EventsAMQP:
		sink, err := events.NewAMQPSink(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			return nil, err
		}
		return sink, nil
	default:
		return events.NoopSink{}, nil
	}
}

func (a *App) closeAll(ctx context.Context, logger *slog.Logger) {
	for i := len(a.Closers) - 1; i >= 0; i-- {
		if err := a.Closers[i].Fn(ctx); err != nil {
			logger.Error("close failed", "name", a.Closers[i].Name, "error", err)
		}
	}
}
