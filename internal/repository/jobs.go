package repository

import (
	"context"
	"log/slog"

	"github.com/herdgen/genoload/constants"
	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/entity"
)

// JobRepository reads pending load jobs and writes their terminal outcomes.
type JobRepository interface {
	// ListPending returns jobs with bit_elaborato = 0 in ascending
	// (data_cari, nume_cari) order.
	ListPending(ctx context.Context) ([]entity.Job, error)
	// SetOutcome writes the terminal status triple. The write is a single
	// statement, so the three fields are never observable half-updated.
	SetOutcome(ctx context.Context, jobID int64, bitOK, bitElaborato int, diagnostic string) error
}

type jobRepo struct {
	db  *DB
	log *slog.Logger
}

func NewJobRepository(db *DB, log *slog.Logger) JobRepository {
	if log == nil {
		log = slog.Default()
	}
	return &jobRepo{db: db, log: log}
}

func (r *jobRepo) ListPending(ctx context.Context) ([]entity.Job, error) {
	query := r.db.Dialect.Rebind(`
		SELECT nume_cari, data_cari, user_cari, tipo_cari, nome_file, bit_ok, bit_elaborato, errori_elab
		FROM code_caricamenti
		WHERE bit_elaborato = ?
		ORDER BY data_cari ASC, nume_cari ASC`)
	rows, err := r.db.SQL.QueryContext(ctx, query, constants.BitPending)
	if err != nil {
		r.log.Error("listing pending jobs failed", "err", err)
		return nil, common.NewAppError("JOBS_LIST", "querying code_caricamenti", common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	var jobs []entity.Job
	for rows.Next() {
		var j entity.Job
		var kind string
		if err := rows.Scan(&j.ID, &j.SubmittedAt, &j.SubmittedBy, &kind, &j.FileName, &j.BitOK, &j.BitElaborato, &j.Diagnostic); err != nil {
			r.log.Error("scanning job row failed", "err", err)
			return nil, common.NewAppError("JOBS_SCAN", "scanning code_caricamenti row", common.ErrDatabase)
		}
		j.Kind = constants.JobKind(kind)
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("JOBS_LIST", "iterating code_caricamenti", common.ErrDatabase)
	}
	return jobs, nil
}

func (r *jobRepo) SetOutcome(ctx context.Context, jobID int64, bitOK, bitElaborato int, diagnostic string) error {
	query := r.db.Dialect.Rebind(`
		UPDATE code_caricamenti
		SET bit_ok = ?, bit_elaborato = ?, errori_elab = ?
		WHERE nume_cari = ?`)
	res, err := r.db.SQL.ExecContext(ctx, query, bitOK, bitElaborato, diagnostic, jobID)
	if err != nil {
		r.log.Error("job outcome write failed", "job_id", jobID, "err", err)
		return common.NewAppError("JOBS_OUTCOME", "updating code_caricamenti", common.ErrDatabase)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		r.log.Warn("job outcome matched no row", "job_id", jobID)
	}
	r.log.Info("job outcome written", "job_id", jobID, "bit_ok", bitOK, "bit_elaborato", bitElaborato)
	return nil
}
