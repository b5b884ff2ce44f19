package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/herdgen/genoload/constants"
	"github.com/herdgen/genoload/internal/archive"
	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/export"
	"github.com/herdgen/genoload/internal/outcome"
	"github.com/herdgen/genoload/internal/repository"
	"github.com/herdgen/genoload/internal/settings"
)

// Processor is the job state machine: it polls code_caricamenti for pending
// jobs, classifies each as a map or genotype load, routes it through the
// matching flow and publishes one terminal outcome per job. Jobs run
// strictly one at a time; the poll sleep is the only suspension point.
type Processor struct {
	logger   *slog.Logger
	cfg      common.LoaderConfig
	doc      *settings.Document
	jobs     repository.JobRepository
	maps     repository.MapRepository
	genos    repository.GenotypeRepository
	samples  repository.SampleRepository
	pub      *outcome.Publisher
	reporter *export.Reporter

	// Critical, when set, receives infrastructure failures so the hosting
	// process can apply its backoff policy. The loop itself just moves on
	// to the next cycle.
	Critical func(error)
}

func NewProcessor(
	logger *slog.Logger,
	cfg common.LoaderConfig,
	doc *settings.Document,
	jobs repository.JobRepository,
	maps repository.MapRepository,
	genos repository.GenotypeRepository,
	samples repository.SampleRepository,
	pub *outcome.Publisher,
	reporter *export.Reporter,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		cfg:      cfg,
		doc:      doc,
		jobs:     jobs,
		maps:     maps,
		genos:    genos,
		samples:  samples,
		pub:      pub,
		reporter: reporter,
	}
}

// Run polls until the duration budget elapses, sleeping cfg.PollInterval
// between polls. In single-shot mode it also stops after the first pass
// that finds no pending jobs. The budget is checked only at poll
// boundaries: a job in flight always runs to completion.
func (p *Processor) Run(ctx context.Context, singleShot bool) error {
	runID := uuid.New()
	deadline := time.Now().Add(p.cfg.MaxRuntime)
	p.logger.Info("poll loop starting", "run_id", runID, "budget", p.cfg.MaxRuntime, "interval", p.cfg.PollInterval)
	defer func() {
		if p.reporter == nil {
			return
		}
		if _, err := p.reporter.WriteRunSummary(runID.String()); err != nil {
			p.logger.Warn("run summary export failed", "err", err)
		}
	}()

	for {
		processed, err := p.pollOnce(ctx, runID)
		if err != nil {
			p.logger.Error("poll iteration failed", "run_id", runID, "err", err)
			if p.Critical != nil {
				p.Critical(err)
			}
		}
		if singleShot && err == nil && processed == 0 {
			p.logger.Info("no pending jobs, single-shot run done", "run_id", runID)
			return nil
		}
		if !time.Now().Add(p.cfg.PollInterval).Before(deadline) {
			p.logger.Info("duration budget elapsed", "run_id", runID)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.PollInterval):
		}
	}
}

// pollOnce processes every job pending at the start of the iteration, in
// ascending (data_cari, nume_cari) order, one at a time. An infrastructure
// error aborts the iteration and leaves the triggering job pending; every
// other failure resolves to a terminal outcome on its own job only.
func (p *Processor) pollOnce(ctx context.Context, runID uuid.UUID) (int, error) {
	pending, err := p.jobs.ListPending(ctx)
	if err != nil {
		return 0, siteErr(SitePoll, err)
	}
	if len(pending) == 0 {
		p.logger.Debug("no pending jobs", "run_id", runID)
		return 0, nil
	}
	p.logger.Info("pending jobs found", "run_id", runID, "count", len(pending))

	for _, job := range pending {
		tag, detail, err := p.processJob(ctx, job)
		if err != nil {
			if common.IsInfrastructure(err) {
				return 0, err
			}
			// Structural failure confined to this job: record it and move on.
			p.logger.Error("job aborted", "job_id", job.ID, "err", err)
			tag, detail = outcome.TagCritical, ""
		}
		// The only status write of the cycle: one terminal triple per job.
		code, pubErr := p.pub.Publish(ctx, job.ID, tag, detail)
		if pubErr != nil {
			return 0, siteErr(SitePublish, pubErr)
		}
		if p.reporter != nil {
			p.reporter.RecordJob(export.JobResult{Job: job, Tag: string(tag), Code: code})
		}
	}
	return len(pending), nil
}

// processJob classifies one job and runs the matching flow to its terminal
// tag. Nothing here writes the job row; the caller publishes the single
// status triple for the cycle.
func (p *Processor) processJob(ctx context.Context, job entity.Job) (outcome.Tag, string, error) {
	fileName := constants.NormalizeFileName(job.FileName)
	log := p.logger.With("job_id", job.ID, "kind", string(job.Kind), "file", fileName)
	log.Info("job picked up")

	if !job.Kind.Valid() {
		log.Error("unknown job kind")
		return outcome.TagTypeMismatch, "", nil
	}

	path, found, err := p.locateFile(fileName)
	if err != nil {
		return "", "", siteErr(SiteLocate, err)
	}
	if !found {
		log.Warn("archive not found under working directory")
		if job.Kind == constants.JobKindGenotype {
			return outcome.TagGenoFileNotFound, "", nil
		}
		return outcome.TagCritical, "", nil
	}

	arch, err := archive.Open(path)
	if err != nil {
		if errors.Is(err, archive.ErrMultiMember) {
			log.Error("archive has more than one member")
			if job.Kind == constants.JobKindGenotype {
				return outcome.TagGenoMultiFile, "", nil
			}
			return outcome.TagMapMultiFile, "", nil
		}
		log.Error("archive unreadable", "err", err)
		return outcome.TagCritical, "", nil
	}

	first, err := arch.FirstLine()
	if err != nil {
		log.Error("archive member unreadable", "err", err)
		return outcome.TagCritical, "", nil
	}
	isGenotypeFile := strings.HasPrefix(first, constants.HeaderMarker)
	if (job.Kind == constants.JobKindMap && isGenotypeFile) ||
		(job.Kind == constants.JobKindGenotype && !isGenotypeFile) {
		log.Error("declared kind contradicts file signature", "first_line", first)
		return outcome.TagTypeMismatch, "", nil
	}

	if job.Kind == constants.JobKindMap {
		return p.runMapJob(ctx, job, fileName, arch)
	}
	return p.runGenotypeJob(ctx, job, fileName, arch)
}

// locateFile walks the working directory for the first file whose name
// contains name. The instruments may nest deposits one level down.
func (p *Processor) locateFile(name string) (string, bool, error) {
	var match string
	stop := errors.New("found")
	err := filepath.WalkDir(p.cfg.WorkingDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		if strings.Contains(d.Name(), name) {
			match = path
			return stop
		}
		return nil
	})
	if err != nil && !errors.Is(err, stop) {
		return "", false, err
	}
	return match, match != "", nil
}
