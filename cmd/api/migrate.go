package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/parceltrack/parceltrack/internal/config"
	"github.com/parceltrack/parceltrack/internal/migrate"
	"github.com/parceltrack/parceltrack/internal/repository/mongodb"
)

func migrateCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Prepare the configured database",
		Long: `Prepare the database selected by DATABASE_DRIVER.

postgres applies the embedded SQL migrations that have not run yet.
mongo creates the collection indexes, including the unique email index.
memory needs no preparation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return runMigrate(ctx)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "abort if the migration takes longer")

	return cmd
}

func runMigrate(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := initLogger(cfg)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		return migratePostgres(ctx, cfg, logger)
	case config.DriverMongo:
		return migrateMongo(ctx, cfg, logger)
	default:
		logger.Info("nothing to migrate", "driver", cfg.DatabaseDriver)
		return nil
	}
}

func migratePostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := migrate.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}
	defer db.Close()

	applied, err := migrate.Up(ctx, db)
	if err != nil {
		return fmt.Errorf("apply migrations: %s", sanitizeError(err, cfg.DatabaseURL))
	}

	logger.Info("migrations complete", "applied", applied)
	return nil
}

func migrateMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	uri := cfg.MongoURI()

	repo, err := mongodb.New(ctx, uri, cfg.DBName)
	if err != nil {
		logger.Error("failed to connect to MongoDB",
			slog.String("error", sanitizeError(err, uri)),
			slog.String("mongo_uri", redactURL(uri)),
		)
		return err
	}
	defer repo.Close(context.Background())

	if err := repo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	logger.Info("indexes ensured", "database", cfg.DBName)
	return nil
}
