package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sdko-org/areacheck/internal/archive"
	"github.com/sdko-org/areacheck/internal/config"
	"github.com/sdko-org/areacheck/internal/database"
	"github.com/sdko-org/areacheck/internal/handlers"
	"github.com/sdko-org/areacheck/internal/history"
	httpserver "github.com/sdko-org/areacheck/internal/http"
	"github.com/sdko-org/areacheck/internal/models"
	"github.com/sdko-org/areacheck/internal/storage"
	"github.com/sdko-org/areacheck/internal/validate"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Invalid configuration")
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, cfg); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}
	logger.Info("Server stopped")
}

func run(ctx context.Context, logger *logrus.Logger, cfg *config.Config) error {
	p := cfg.Profile
	logger.WithFields(logrus.Fields{
		"profile":  p.Name,
		"mode":     p.Mode.String(),
		"scope":    p.Scope.String(),
		"capacity": p.HistoryCapacity,
		"workers":  cfg.Workers,
	}).Info("Loaded profile")

	pipeline := handlers.NewPipeline(logger,
		validate.New(p.Rules, p.Mode),
		p.Region,
		history.New[string, models.CheckResult](p.HistoryCapacity),
		handlers.PipelineOptions{Scope: p.Scope, MaxBodyBytes: cfg.MaxBodyBytes},
	)
	bridge := handlers.NewBridge()

	g, gctx := errgroup.WithContext(ctx)

	var sink handlers.AccessLogSink
	if cfg.DatabaseEnabled() {
		db, err := database.NewPostgresDB(logger, database.PostgresConfig{
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPassword,
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			DBName:   cfg.PostgresDatabase,
			SSLMode:  cfg.PostgresSSLMode,
		})
		if err != nil {
			return err
		}
		repo := database.NewAccessLogRepository(db)
		sink = repo

		if cfg.ArchiveEnabled() {
			s3Storage, err := storage.NewS3Storage(cfg)
			if err != nil {
				return err
			}
			archiver := archive.NewArchiver(logger, repo, s3Storage, archive.Options{
				Interval: cfg.ArchiveInterval,
				After:    cfg.ArchiveAfter,
				Batch:    cfg.ArchiveBatch,
			})
			g.Go(func() error {
				archiver.Start(gctx)
				return nil
			})
		}
	}

	limiter := handlers.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	router := handlers.NewRouter(logger, handlers.RouterConfig{
		CheckPath: cfg.CheckPath,
		Region:    p.Region,
		Limiter:   limiter,
		Sink:      sink,
	}, bridge)

	srv := httpserver.New(logger, router, httpserver.Options{
		HTTPAddr:  cfg.HTTPAddr,
		HTTPSAddr: cfg.HTTPSAddr,
		FCGIAddr:  cfg.FCGIAddr,
	})
	if err := srv.Listen(); err != nil {
		return err
	}

	// Workers stop when the bridge closes, after in-flight requests drain.
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			return pipeline.Serve(context.Background(), bridge)
		})
	}

	g.Go(func() error {
		defer bridge.Close()
		return srv.Serve(gctx)
	})

	return g.Wait()
}
