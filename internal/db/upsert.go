package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig describes one bulk upsert. The record store uses it with
// the records table keyed by URL, so reprocessing a page replaces its
// earlier row instead of duplicating it.
type UpsertConfig struct {
	Table        string
	Columns      []string
	ConflictKeys []string
	UpdateCols   []string // nil means every non-key column
}

// BulkUpsert loads rows through a temp table and merges them with
// INSERT ... ON CONFLICT DO UPDATE. COPY into the temp table keeps large
// batch runs off the row-at-a-time insert path.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if len(cfg.Columns) == 0 {
		return 0, eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return 0, eris.New("db: upsert: no conflict keys specified")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx)

	staging := pgx.Identifier{"_stage_" + strings.ReplaceAll(cfg.Table, ".", "_")}
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		staging.Sanitize(), tableIdent(cfg.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: stage table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, staging, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into stage for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, mergeSQL(cfg, staging))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

func mergeSQL(cfg UpsertConfig, staging pgx.Identifier) string {
	updateCols := cfg.UpdateCols
	if updateCols == nil {
		keys := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			keys[k] = true
		}
		for _, c := range cfg.Columns {
			if !keys[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	assignments := make([]string, len(updateCols))
	for i, col := range updateCols {
		q := pgx.Identifier{col}.Sanitize()
		assignments[i] = q + " = EXCLUDED." + q
	}

	cols := identList(cfg.Columns)
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		tableIdent(cfg.Table), cols, cols, staging.Sanitize(),
		identList(cfg.ConflictKeys), strings.Join(assignments, ", "),
	)
}

// tableIdent sanitizes a possibly schema-qualified table name.
func tableIdent(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func identList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
