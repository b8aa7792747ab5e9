package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"foodaudit_backend/internals/configs"
	database "foodaudit_backend/internals/databases"
	"foodaudit_backend/internals/features/audits/cache"
	middlewares "foodaudit_backend/internals/middlewares"
	routes "foodaudit_backend/internals/route"
	"foodaudit_backend/internals/seeds"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "foodaudit",
		Short:         "Food-safety audit scoring backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the audit tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context())
		},
	})
	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate, then load checklist schemas from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return seed(cmd.Context(), seedFile)
		},
	}
	seedCmd.Flags().StringVar(&seedFile, "file", seeds.DefaultChecklistFile, "checklist seed file (JSON)")
	cmd.AddCommand(seedCmd)
	return cmd
}

func bootstrap() (configs.Config, *zap.Logger, error) {
	configs.LoadEnv()
	cfg, err := configs.Load()
	if err != nil {
		return configs.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := configs.NewLogger(cfg)
	if err != nil {
		return configs.Config{}, nil, err
	}
	return cfg, log, nil
}

func migrate(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("migration finished")
	return nil
}

func seed(ctx context.Context, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return seeds.RunAllSeeds(ctx, db, log, file)
}

func serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(ctx, cfg.DB, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// Redis is optional; without it thresholds are read from postgres each time.
	var thresholdCache cache.ThresholdCache = cache.Noop{}
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, threshold cache disabled", zap.Error(err))
		} else {
			thresholdCache = cache.NewRedisThresholdCache(rdb, cfg.ThresholdCacheTTL)
			defer func() { _ = rdb.Close() }()
		}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		ReadTimeout:             15 * time.Second,
		WriteTimeout:            30 * time.Second,
		IdleTimeout:             90 * time.Second,
	})

	middlewares.SetupMiddlewares(app, log, cfg.CORSAllowOrigins, cfg.OperationTimeout)
	routes.SetupRoutes(app, routes.Deps{
		DB:               db,
		Log:              log,
		ThresholdCache:   thresholdCache,
		OperationTimeout: cfg.OperationTimeout,
		Environment:      cfg.AppEnv,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		errCh <- app.Listen("0.0.0.0:" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-quit:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Info("shutting down")
	return app.ShutdownWithContext(shutdownCtx)
}
