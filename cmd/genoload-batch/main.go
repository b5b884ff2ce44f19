package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/export"
	"github.com/herdgen/genoload/internal/outcome"
	"github.com/herdgen/genoload/internal/pipeline"
	"github.com/herdgen/genoload/internal/repository"
	"github.com/herdgen/genoload/internal/settings"
)

// genoload-batch drains the pending queue once and exits: the cron-friendly
// mode. With -inmem it runs against an in-process SQLite store, useful for
// rehearsing a load without touching the shared database.
func main() {
	inmem := flag.Bool("inmem", false, "run against an in-memory SQLite store instead of DB_URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := settings.Load(cfg.Loader.SettingsPath)
	if err != nil {
		logger.Warn("settings document unavailable, using built-in defaults", "path", cfg.Loader.SettingsPath, "err", err)
		doc = settings.Default()
	}
	vocab, err := outcome.NewVocabulary(doc)
	if err != nil {
		logger.Error("outcome vocabulary incomplete", "err", err)
		os.Exit(2)
	}

	var (
		db   *repository.DB
		pool *pgxpool.Pool
	)
	if *inmem {
		db, err = repository.OpenSQLite(ctx, ":memory:", logger)
		if err != nil {
			logger.Error("opening sqlite store", "err", err)
			os.Exit(1)
		}
	} else {
		if err := cfg.Validate(); err != nil {
			logger.Error("invalid configuration", "err", err)
			os.Exit(2)
		}
		db, pool, err = repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("opening database", "err", err)
			os.Exit(1)
		}
		if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
			logger.Error("database health check failed", "err", err)
			os.Exit(1)
		}
	}
	defer repository.Close(db, pool, logger)

	jobs := repository.NewJobRepository(db, logger)
	maps := repository.NewMapRepository(db, logger)
	genos := repository.NewGenotypeRepository(db, logger)
	samples := repository.NewSampleRepository(db, logger)
	pub := outcome.NewPublisher(vocab, jobs, logger, cfg.Loader.DoNotUpdate)
	reporter := export.NewReporter(cfg.Loader.OutputDir, logger)

	proc := pipeline.NewProcessor(logger, cfg.Loader, doc, jobs, maps, genos, samples, pub, reporter)
	if err := proc.Run(ctx, true); err != nil {
		logger.Error("batch run failed", "err", err)
		os.Exit(1)
	}
}
