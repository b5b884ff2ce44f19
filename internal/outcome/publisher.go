package outcome

import (
	"context"
	"log/slog"

	"github.com/herdgen/genoload/internal/repository"
	"github.com/herdgen/genoload/internal/settings"
)

// Publisher writes terminal job outcomes. Every terminal job carries a
// human-readable diagnostic, even on success.
type Publisher struct {
	vocab  *Vocabulary
	jobs   repository.JobRepository
	log    *slog.Logger
	dryRun bool
}

func NewPublisher(vocab *Vocabulary, jobs repository.JobRepository, log *slog.Logger, dryRun bool) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{vocab: vocab, jobs: jobs, log: log, dryRun: dryRun}
}

// Publish resolves tag to its status triple and writes it for jobID in one
// atomic update, the only status write a job receives per poll cycle. A
// non-empty detail replaces the vocabulary's diagnostic template (e.g. the
// per-report sample summary). The resolved triple is returned with the
// diagnostic applied.
func (p *Publisher) Publish(ctx context.Context, jobID int64, tag Tag, detail string) (settings.Code, error) {
	code := p.vocab.Resolve(tag)
	if detail != "" {
		code.ErroriElab = detail
	}
	if p.dryRun {
		p.log.Info("dry run, outcome not written", "job_id", jobID, "tag", string(tag), "diagnostic", code.ErroriElab)
		return code, nil
	}
	if err := p.jobs.SetOutcome(ctx, jobID, code.BitOK, code.BitElaborato, code.ErroriElab); err != nil {
		p.log.Error("publishing outcome failed", "job_id", jobID, "tag", string(tag), "err", err)
		return code, err
	}
	p.log.Info("outcome published", "job_id", jobID, "tag", string(tag), "bit_ok", code.BitOK)
	return code, nil
}
