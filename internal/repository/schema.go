package repository

import (
	"context"
	"fmt"
	"regexp"
)

// schemaDDL mirrors the externally managed tables. It is only applied in the
// sqlite single-binary mode and in tests; on Postgres the DDL is owned by the
// database team.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS code_caricamenti (
		nume_cari     INTEGER PRIMARY KEY,
		data_cari     TIMESTAMP NOT NULL,
		user_cari     TEXT NOT NULL DEFAULT '',
		tipo_cari     TEXT NOT NULL,
		nome_file     TEXT NOT NULL,
		bit_ok        INTEGER,
		bit_elaborato INTEGER,
		errori_elab   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS mappe (
		map_name   TEXT PRIMARY KEY,
		number_snp INTEGER NOT NULL,
		map_alias  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tmp_finalreports (
		nume_cari          INTEGER NOT NULL,
		campione           TEXT NOT NULL,
		callrate_g         REAL NOT NULL,
		mappa_usata_g      TEXT NOT NULL,
		genotipo           TEXT NOT NULL,
		file_name          TEXT NOT NULL,
		genotipo_parentela TEXT,
		PRIMARY KEY (nume_cari, campione)
	)`,
	`CREATE TABLE IF NOT EXISTS tmp_record_mappe (
		nume_cari  INTEGER NOT NULL,
		map_name   TEXT NOT NULL,
		number_snp INTEGER NOT NULL,
		map_alias  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS archivio_campioni (
		chr_codicecampionelab TEXT PRIMARY KEY
	)`,
}

// EnsureSchema applies the mirrored DDL statement by statement.
func EnsureSchema(ctx context.Context, db *DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.SQL.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute ddl: %w", err)
		}
	}
	return nil
}

// Map names generated by the reconciler are {n}_{suffix}; the override name
// comes from configuration. Either way, validate before interpolating into
// DDL for the per-map SNP tables.
var mapNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

func validMapTableName(name string) bool {
	return name != "" && mapNameRe.MatchString(name)
}
