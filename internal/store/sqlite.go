package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL UNIQUE,
	site_hint    TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	accepted     INTEGER NOT NULL,
	score        INTEGER NOT NULL,
	record       TEXT NOT NULL,
	processed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS rejections (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	score       INTEGER NOT NULL,
	reasons     TEXT NOT NULL,
	rejected_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_records_accepted ON records(accepted);
CREATE INDEX IF NOT EXISTS idx_records_site_hint ON records(site_hint);
CREATE INDEX IF NOT EXISTS idx_records_score ON records(score);
CREATE INDEX IF NOT EXISTS idx_rejections_url ON rejections(url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteUpsertRecord = `
INSERT INTO records (id, url, site_hint, content_hash, accepted, score, record, processed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	site_hint = excluded.site_hint,
	content_hash = excluded.content_hash,
	accepted = excluded.accepted,
	score = excluded.score,
	record = excluded.record,
	processed_at = excluded.processed_at`

func (s *SQLiteStore) SaveRecord(ctx context.Context, rec *model.NormalizedRecord) error {
	stampRecord(rec)

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx, sqliteUpsertRecord,
		rec.ID, rec.URL, rec.SiteHint, rec.ContentHash,
		boolToInt(rec.Accepted()), rec.Quality.Score, string(recordJSON), rec.ProcessedAt,
	)
	return eris.Wrapf(err, "sqlite: save record %s", rec.URL)
}

func (s *SQLiteStore) SaveRecords(ctx context.Context, recs []*model.NormalizedRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	var n int64
	for _, rec := range recs {
		stampRecord(rec)
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return n, eris.Wrap(err, "sqlite: marshal record")
		}
		if _, err := tx.ExecContext(ctx, sqliteUpsertRecord,
			rec.ID, rec.URL, rec.SiteHint, rec.ContentHash,
			boolToInt(rec.Accepted()), rec.Quality.Score, string(recordJSON), rec.ProcessedAt,
		); err != nil {
			return n, eris.Wrapf(err, "sqlite: save record %s", rec.URL)
		}
		n++
	}

	return n, eris.Wrap(tx.Commit(), "sqlite: commit records")
}

func (s *SQLiteStore) GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM records WHERE id = ?`, id)

	var recordJSON string
	err := row.Scan(&recordJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("record not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get record")
	}
	return unmarshalRecord(recordJSON)
}

func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.NormalizedRecord, error) {
	query := `SELECT record FROM records WHERE 1=1`
	var args []any

	if filter.Accepted != nil {
		query += ` AND accepted = ?`
		args = append(args, boolToInt(*filter.Accepted))
	}
	if filter.SiteHint != "" {
		query += ` AND site_hint = ?`
		args = append(args, filter.SiteHint)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY processed_at DESC`

	// SQLite reads LIMIT -1 as unlimited, which lets OFFSET still apply.
	limit := filter.Limit
	if limit == 0 {
		limit = 100
	} else if limit < 0 {
		limit = -1
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list records")
	}
	defer rows.Close()

	var records []model.NormalizedRecord
	for rows.Next() {
		var recordJSON string
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		rec, err := unmarshalRecord(recordJSON)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list records iterate")
}

func (s *SQLiteStore) SaveRejection(ctx context.Context, rej model.Rejection) error {
	if rej.RejectedAt.IsZero() {
		rej.RejectedAt = time.Now().UTC()
	}

	reasonsJSON, err := json.Marshal(rej.Reasons)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal reasons")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rejections (id, url, score, reasons, rejected_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), rej.URL, rej.Score, string(reasonsJSON), rej.RejectedAt,
	)
	return eris.Wrapf(err, "sqlite: save rejection %s", rej.URL)
}

func (s *SQLiteStore) SaveRejections(ctx context.Context, rejs []model.Rejection) (int64, error) {
	if len(rejs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	var n int64
	for _, rej := range rejs {
		if rej.RejectedAt.IsZero() {
			rej.RejectedAt = time.Now().UTC()
		}
		reasonsJSON, err := json.Marshal(rej.Reasons)
		if err != nil {
			return n, eris.Wrap(err, "sqlite: marshal reasons")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO rejections (id, url, score, reasons, rejected_at) VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), rej.URL, rej.Score, string(reasonsJSON), rej.RejectedAt,
		); err != nil {
			return n, eris.Wrapf(err, "sqlite: save rejection %s", rej.URL)
		}
		n++
	}

	return n, eris.Wrap(tx.Commit(), "sqlite: commit rejections")
}

func (s *SQLiteStore) ListRejections(ctx context.Context, limit, offset int) ([]model.Rejection, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, score, reasons, rejected_at FROM rejections
		 ORDER BY rejected_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list rejections")
	}
	defer rows.Close()

	var rejections []model.Rejection
	for rows.Next() {
		var rej model.Rejection
		var reasonsJSON string
		if err := rows.Scan(&rej.URL, &rej.Score, &reasonsJSON, &rej.RejectedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan rejection")
		}
		if err := json.Unmarshal([]byte(reasonsJSON), &rej.Reasons); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal reasons")
		}
		rejections = append(rejections, rej)
	}
	return rejections, eris.Wrap(rows.Err(), "sqlite: list rejections iterate")
}

// helpers

// stampRecord assigns identity at the persistence boundary so the core
// pipeline output stays deterministic.
func stampRecord(rec *model.NormalizedRecord) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}
}

func unmarshalRecord(recordJSON string) (*model.NormalizedRecord, error) {
	var rec model.NormalizedRecord
	if err := json.Unmarshal([]byte(recordJSON), &rec); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal record")
	}
	return &rec, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
