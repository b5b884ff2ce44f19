package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/export"
	"github.com/herdgen/genoload/internal/outcome"
	"github.com/herdgen/genoload/internal/pipeline"
	"github.com/herdgen/genoload/internal/repository"
	"github.com/herdgen/genoload/internal/settings"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "err", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := settings.Load(cfg.Loader.SettingsPath)
	if err != nil {
		logger.Error("loading settings document", "path", cfg.Loader.SettingsPath, "err", err)
		os.Exit(2)
	}
	vocab, err := outcome.NewVocabulary(doc)
	if err != nil {
		logger.Error("outcome vocabulary incomplete", "err", err)
		os.Exit(2)
	}

	db, pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "err", err)
		os.Exit(1)
	}
	defer repository.Close(db, pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		logger.Error("database health check failed", "err", err)
		os.Exit(1)
	}

	jobs := repository.NewJobRepository(db, logger)
	maps := repository.NewMapRepository(db, logger)
	genos := repository.NewGenotypeRepository(db, logger)
	samples := repository.NewSampleRepository(db, logger)
	pub := outcome.NewPublisher(vocab, jobs, logger, cfg.Loader.DoNotUpdate)
	reporter := export.NewReporter(cfg.Loader.OutputDir, logger)

	proc := pipeline.NewProcessor(logger, cfg.Loader, doc, jobs, maps, genos, samples, pub, reporter)
	if err := proc.Run(ctx, false); err != nil {
		logger.Error("poll loop stopped", "err", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
