package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/herdgen/genoload/internal/common"
	"github.com/herdgen/genoload/internal/snpmap"
)

// MapRepository is the map registry: the mappe table plus one SNP-name table
// per map, owned by the map's name. Maps are immutable once stored.
type MapRepository interface {
	snpmap.Registry

	// FindByAlias resolves a map name from the chip alias of a final report.
	FindByAlias(ctx context.Context, alias string) (string, bool, error)
	// FindBySNPCount resolves a map name from an inferred SNP count.
	FindBySNPCount(ctx context.Context, n int) (string, bool, error)
	// CreateMap registers a new map and stores its SNP names in one
	// transaction. It never overwrites an existing map.
	CreateMap(ctx context.Context, name string, snpCount int, alias string, snpNames []string) error
	// RegisterAlias records a late alias binding in tmp_record_mappe for the
	// map-maintenance process to pick up.
	RegisterAlias(ctx context.Context, jobID int64, mapName string, snpCount int, alias string) error
}

type mapRepo struct {
	db  *DB
	log *slog.Logger
}

func NewMapRepository(db *DB, log *slog.Logger) MapRepository {
	if log == nil {
		log = slog.Default()
	}
	return &mapRepo{db: db, log: log}
}

func (r *mapRepo) ListMaps(ctx context.Context) ([]snpmap.Info, error) {
	query := `SELECT map_name, number_snp, map_alias FROM mappe`
	rows, err := r.db.SQL.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("listing maps failed", "err", err)
		return nil, common.NewAppError("MAPS_LIST", "querying mappe", common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	var maps []snpmap.Info
	for rows.Next() {
		var m snpmap.Info
		if err := rows.Scan(&m.Name, &m.SNPCount, &m.Alias); err != nil {
			return nil, common.NewAppError("MAPS_SCAN", "scanning mappe row", common.ErrDatabase)
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("MAPS_LIST", "iterating mappe", common.ErrDatabase)
	}
	return maps, nil
}

func (r *mapRepo) SNPNames(ctx context.Context, mapName string) ([]string, error) {
	if !validMapTableName(mapName) {
		return nil, common.NewAppError("MAPS_NAME", fmt.Sprintf("invalid map name %q", mapName), common.ErrInvalidInput)
	}
	query := fmt.Sprintf(`SELECT snp_name FROM %q ORDER BY id ASC`, mapName)
	rows, err := r.db.SQL.QueryContext(ctx, query)
	if err != nil {
		r.log.Error("reading map failed", "map", mapName, "err", err)
		return nil, common.NewAppError("MAPS_READ", fmt.Sprintf("querying map table %s", mapName), common.ErrDatabase)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, common.NewAppError("MAPS_SCAN", "scanning snp_name", common.ErrDatabase)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewAppError("MAPS_READ", "iterating snp names", common.ErrDatabase)
	}
	return names, nil
}

func (r *mapRepo) FindByAlias(ctx context.Context, alias string) (string, bool, error) {
	query := r.db.Dialect.Rebind(`SELECT map_name FROM mappe WHERE map_alias = ?`)
	var name string
	err := r.db.SQL.QueryRowContext(ctx, query, alias).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.NewAppError("MAPS_FIND", "querying mappe by alias", common.ErrDatabase)
	}
	return name, true, nil
}

func (r *mapRepo) FindBySNPCount(ctx context.Context, n int) (string, bool, error) {
	query := r.db.Dialect.Rebind(`SELECT map_name FROM mappe WHERE number_snp = ?`)
	var name string
	err := r.db.SQL.QueryRowContext(ctx, query, n).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, common.NewAppError("MAPS_FIND", "querying mappe by snp count", common.ErrDatabase)
	}
	return name, true, nil
}

func (r *mapRepo) CreateMap(ctx context.Context, name string, snpCount int, alias string, snpNames []string) error {
	if !validMapTableName(name) {
		return common.NewAppError("MAPS_NAME", fmt.Sprintf("invalid map name %q", name), common.ErrInvalidInput)
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return common.NewAppError("MAPS_CREATE", "beginning transaction", common.ErrDatabase)
	}
	defer func() { _ = tx.Rollback() }()

	insert := r.db.Dialect.Rebind(`INSERT INTO mappe (map_name, number_snp, map_alias) VALUES (?, ?, ?)`)
	if _, err := tx.ExecContext(ctx, insert, name, snpCount, alias); err != nil {
		r.log.Error("map registry insert failed", "map", name, "err", err)
		return common.NewAppError("MAPS_CREATE", "inserting mappe row", common.ErrDatabase)
	}

	ddl := fmt.Sprintf(`CREATE TABLE %q (id INTEGER PRIMARY KEY, snp_name TEXT NOT NULL)`, name)
	if r.db.Dialect == Postgres {
		ddl = fmt.Sprintf(`CREATE TABLE %q (id SERIAL PRIMARY KEY, snp_name TEXT NOT NULL)`, name)
	}
	if _, err := tx.ExecContext(ctx, ddl); err != nil {
		r.log.Error("map table create failed", "map", name, "err", err)
		return common.NewAppError("MAPS_CREATE", "creating map table", common.ErrDatabase)
	}

	row := fmt.Sprintf(`INSERT INTO %q (id, snp_name) VALUES (%s, %s)`, name, "?", "?")
	row = r.db.Dialect.Rebind(row)
	for i, snp := range snpNames {
		if _, err := tx.ExecContext(ctx, row, i+1, snp); err != nil {
			return common.NewAppError("MAPS_CREATE", "inserting snp name", common.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return common.NewAppError("MAPS_CREATE", "committing map", common.ErrDatabase)
	}
	r.log.Info("new map stored", "map", name, "snp_count", snpCount, "alias", alias)
	return nil
}

func (r *mapRepo) RegisterAlias(ctx context.Context, jobID int64, mapName string, snpCount int, alias string) error {
	query := r.db.Dialect.Rebind(`
		INSERT INTO tmp_record_mappe (nume_cari, map_name, number_snp, map_alias)
		VALUES (?, ?, ?, ?)`)
	if _, err := r.db.SQL.ExecContext(ctx, query, jobID, mapName, snpCount, alias); err != nil {
		r.log.Error("alias registration failed", "job_id", jobID, "map", mapName, "err", err)
		return common.NewAppError("MAPS_ALIAS", "inserting tmp_record_mappe row", common.ErrDatabase)
	}
	r.log.Info("map alias registered", "job_id", jobID, "map", mapName, "alias", alias)
	return nil
}
