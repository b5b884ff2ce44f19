package repository

import (
	"context"
	"log/slog"
	"strings"

	"github.com/herdgen/genoload/internal/common"
)

// SampleRepository reads the genomic sample archive used by the advisory
// summary (unknown-sample cross-check). Read-only from this process.
type SampleRepository interface {
	ListKnownSamples(ctx context.Context) (map[string]struct{}, error)
}

type sampleRepo struct {
	db  *DB
	log *slog.Logger
}

func NewSampleRepository(db *DB, log *slog.Logger) SampleRepository {
	if log == nil {
		log = slog.Default()
	}
	return &sampleRepo{db: db, log: log}
}

func (r *sampleRepo) ListKnownSamples(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `SELECT chr_codicecampionelab FROM archivio_campioni`)
	if err != nil {
		r.log.Error("listing sample archive failed", "err", err)
		return nil, common.NewAppError("SAMPLES_LIST", "querying archivio_campioni", common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	known := map[string]struct{}{}
	for rows.Next() {
		var code *string
		if err := rows.Scan(&code); err != nil {
			return nil, common.NewAppError("SAMPLES_SCAN", "scanning sample code", common.ErrDatabase)
		}
		if code == nil {
			continue
		}
		if c := strings.TrimSpace(*code); c != "" {
			known[c] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("SAMPLES_LIST", "iterating archivio_campioni", common.ErrDatabase)
	}
	return known, nil
}
