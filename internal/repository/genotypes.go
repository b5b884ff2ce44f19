package repository

import (
	"context"
	"log/slog"

	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/entity"
	"github.com/herdgen/genoload/internal/genotype"
)

// GenotypeRepository stages decoded genotypes in tmp_finalreports.
type GenotypeRepository interface {
	// InsertBatch stages one decoded final report in a single transaction.
	// Re-running a job replaces its earlier staging rows.
	InsertBatch(ctx context.Context, jobID int64, fileName string, records []genotype.Record) error
	// ListStaged returns the staged rows of one job.
	ListStaged(ctx context.Context, jobID int64) ([]entity.StagedGenotype, error)
	// UpdateParentage writes the parentage-subset genotype of the staged rows.
	UpdateParentage(ctx context.Context, jobID int64, parentage map[string]string) error
	// StagedSampleSet returns the sample codes staged by every job other
	// than excludeJob, for the overwrite cross-check.
	StagedSampleSet(ctx context.Context, excludeJob int64) (map[string]struct{}, error)
}

type genotypeRepo struct {
	db  *DB
	log *slog.Logger
}

func NewGenotypeRepository(db *DB, log *slog.Logger) GenotypeRepository {
	if log == nil {
		log = slog.Default()
	}
	return &genotypeRepo{db: db, log: log}
}

func (r *genotypeRepo) InsertBatch(ctx context.Context, jobID int64, fileName string, records []genotype.Record) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("GENO_INSERT", "beginning transaction", common.ErrDatabase)
	}
	defer func() { _ = tx.Rollback() }()

	del := r.db.Dialect.Rebind(`DELETE FROM tmp_finalreports WHERE nume_cari = ?`)
	if _, err := tx.ExecContext(ctx, del, jobID); err != nil {
		return common.NewAppError("GENO_INSERT", "clearing earlier staging rows", common.ErrDatabase)
	}

	ins := r.db.Dialect.Rebind(`
		INSERT INTO tmp_finalreports (nume_cari, campione, callrate_g, mappa_usata_g, genotipo, file_name)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, ins, jobID, rec.SampleID, rec.CallRate, rec.MapUsed, rec.Encoded, fileName); err != nil {
			r.log.Error("staging genotype failed", "job_id", jobID, "sample", rec.SampleID, "err", err)
			return common.NewAppError("GENO_INSERT", "inserting tmp_finalreports row", common.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewAppError("GENO_INSERT", "committing staging batch", common.ErrDatabase)
	}
	r.log.Info("genotypes staged", "job_id", jobID, "samples", len(records), "file", fileName)
	return nil
}

func (r *genotypeRepo) ListStaged(ctx context.Context, jobID int64) ([]entity.StagedGenotype, error) {
	query := r.db.Dialect.Rebind(`
		SELECT nume_cari, campione, callrate_g, mappa_usata_g, genotipo, file_name, genotipo_parentela
		FROM tmp_finalreports
		WHERE nume_cari = ?`)
	rows, err := r.db.SQL.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, common.NewAppError("GENO_LIST", "querying tmp_finalreports", common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	var staged []entity.StagedGenotype
	for rows.Next() {
		var g entity.StagedGenotype
		if err := rows.Scan(&g.JobID, &g.SampleID, &g.CallRate, &g.MapUsed, &g.Encoded, &g.FileName, &g.ParentageEncoded); err != nil {
			return nil, common.NewAppError("GENO_SCAN", "scanning tmp_finalreports row", common.ErrDatabase)
		}
		staged = append(staged, g)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("GENO_LIST", "iterating tmp_finalreports", common.ErrDatabase)
	}
	return staged, nil
}

func (r *genotypeRepo) StagedSampleSet(ctx context.Context, excludeJob int64) (map[string]struct{}, error) {
	query := r.db.Dialect.Rebind(`SELECT DISTINCT campione FROM tmp_finalreports WHERE nume_cari <> ?`)
	rows, err := r.db.SQL.QueryContext(ctx, query, excludeJob)
	if err != nil {
		return nil, common.NewAppError("GENO_STAGED", "querying staged samples", common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	staged := map[string]struct{}{}
	for rows.Next() {
		var sample string
		if err := rows.Scan(&sample); err != nil {
			return nil, common.NewAppError("GENO_SCAN", "scanning staged sample", common.ErrDatabase)
		}
		staged[sample] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("GENO_STAGED", "iterating staged samples", common.ErrDatabase)
	}
	return staged, nil
}

func (r *genotypeRepo) UpdateParentage(ctx context.Context, jobID int64, parentage map[string]string) error {
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("GENO_PARENTAGE", "beginning transaction", common.ErrDatabase)
	}
	defer func() { _ = tx.Rollback() }()

	upd := r.db.Dialect.Rebind(`
		UPDATE tmp_finalreports SET genotipo_parentela = ? WHERE nume_cari = ? AND campione = ?`)
	for sample, encoded := range parentage {
		if _, err := tx.ExecContext(ctx, upd, encoded, jobID, sample); err != nil {
			r.log.Error("parentage update failed", "job_id", jobID, "sample", sample, "err", err)
			return common.NewAppError("GENO_PARENTAGE", "updating tmp_finalreports row", common.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewAppError("GENO_PARENTAGE", "committing parentage batch", common.ErrDatabase)
	}
	r.log.Info("parentage genotypes updated", "job_id", jobID, "samples", len(parentage))
	return nil
}
