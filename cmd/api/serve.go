package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/parceltrack/parceltrack/internal/app"
	"github.com/parceltrack/parceltrack/internal/config"
	"github.com/parceltrack/parceltrack/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return err
	}

	logger := initLogger(cfg)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start",
			slog.String("error", sanitizeError(err, cfg.MongoURI(), cfg.DatabaseURL, cfg.RedisURL, cfg.AMQPURL)),
			slog.String("driver", cfg.DatabaseDriver),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return err
	}

	srv := server.New(app.NewRouter(cfg, a.Deps, logger), server.Options{
		Port:            cfg.Port,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	for _, c := range a.Closers {
		srv.OnShutdown(c.Name, c.Fn)
	}

	logger.Info("starting server",
		"port", cfg.Port,
		"env", cfg.AppEnv,
		"driver", cfg.DatabaseDriver,
		"events", cfg.EventsBackend,
		"cache", cfg.RedisURL != "",
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}
