package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/Tee-David/realtors-practice-sub002/internal/db"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection
// for the hottest store operations.
var preparedStatements = map[string]string{
	"upsert_record": `INSERT INTO records (id, url, site_hint, content_hash, accepted, score, record, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (url) DO UPDATE SET
			site_hint = EXCLUDED.site_hint,
			content_hash = EXCLUDED.content_hash,
			accepted = EXCLUDED.accepted,
			score = EXCLUDED.score,
			record = EXCLUDED.record,
			processed_at = EXCLUDED.processed_at`,
	"get_record":       `SELECT record FROM records WHERE id = $1`,
	"insert_rejection": `INSERT INTO rejections (id, url, score, reasons, rejected_at) VALUES ($1, $2, $3, $4, $5)`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool, used by tests to inject a
// mock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT PRIMARY KEY,
	url          TEXT NOT NULL UNIQUE,
	site_hint    TEXT NOT NULL DEFAULT '',
	content_hash TEXT NOT NULL,
	accepted     BOOLEAN NOT NULL,
	score        INTEGER NOT NULL,
	record       JSONB NOT NULL,
	processed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS rejections (
	id          TEXT PRIMARY KEY,
	url         TEXT NOT NULL,
	score       INTEGER NOT NULL,
	reasons     JSONB NOT NULL,
	rejected_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_records_accepted ON records(accepted);
CREATE INDEX IF NOT EXISTS idx_records_site_hint ON records(site_hint);
CREATE INDEX IF NOT EXISTS idx_records_score ON records(score);
CREATE INDEX IF NOT EXISTS idx_rejections_url ON rejections(url);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) SaveRecord(ctx context.Context, rec *model.NormalizedRecord) error {
	stampRecord(rec)

	recordJSON, err := json.Marshal(rec)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["upsert_record"],
		rec.ID, rec.URL, rec.SiteHint, rec.ContentHash,
		rec.Accepted(), rec.Quality.Score, recordJSON, rec.ProcessedAt,
	)
	return eris.Wrapf(err, "postgres: save record %s", rec.URL)
}

// SaveRecords bulk-upserts via a temp table, conflicting on URL so a
// reprocessed page replaces its earlier record.
func (s *PostgresStore) SaveRecords(ctx context.Context, recs []*model.NormalizedRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(recs))
	for _, rec := range recs {
		stampRecord(rec)
		recordJSON, err := json.Marshal(rec)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal record")
		}
		rows = append(rows, []any{
			rec.ID, rec.URL, rec.SiteHint, rec.ContentHash,
			rec.Accepted(), rec.Quality.Score, recordJSON, rec.ProcessedAt,
		})
	}

	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "records",
		Columns:      []string{"id", "url", "site_hint", "content_hash", "accepted", "score", "record", "processed_at"},
		ConflictKeys: []string{"url"},
		UpdateCols:   []string{"site_hint", "content_hash", "accepted", "score", "record", "processed_at"},
	}, rows)
}

func (s *PostgresStore) GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error) {
	var recordJSON []byte
	err := s.pool.QueryRow(ctx, preparedStatements["get_record"], id).Scan(&recordJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("record not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get record")
	}
	return unmarshalRecord(string(recordJSON))
}

func (s *PostgresStore) ListRecords(ctx context.Context, filter RecordFilter) ([]model.NormalizedRecord, error) {
	query := `SELECT record FROM records WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Accepted != nil {
		query += ` AND accepted = ` + arg(*filter.Accepted)
	}
	if filter.SiteHint != "" {
		query += ` AND site_hint = ` + arg(filter.SiteHint)
	}
	if filter.MinScore > 0 {
		query += ` AND score >= ` + arg(filter.MinScore)
	}
	query += ` ORDER BY processed_at DESC`

	limit := filter.Limit
	if limit == 0 {
		limit = 100
	}
	if limit > 0 {
		query += ` LIMIT ` + arg(limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list records")
	}
	defer rows.Close()

	var records []model.NormalizedRecord
	for rows.Next() {
		var recordJSON []byte
		if err := rows.Scan(&recordJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		rec, err := unmarshalRecord(string(recordJSON))
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list records iterate")
}

func (s *PostgresStore) SaveRejection(ctx context.Context, rej model.Rejection) error {
	if rej.RejectedAt.IsZero() {
		rej.RejectedAt = time.Now().UTC()
	}

	reasonsJSON, err := json.Marshal(rej.Reasons)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal reasons")
	}

	_, err = s.pool.Exec(ctx, preparedStatements["insert_rejection"],
		uuid.NewString(), rej.URL, rej.Score, reasonsJSON, rej.RejectedAt,
	)
	return eris.Wrapf(err, "postgres: save rejection %s", rej.URL)
}

// SaveRejections bulk-inserts a rejection batch with COPY. Rejections
// are append-only, so no conflict handling is needed.
func (s *PostgresStore) SaveRejections(ctx context.Context, rejs []model.Rejection) (int64, error) {
	rows := make([][]any, 0, len(rejs))
	for _, rej := range rejs {
		if rej.RejectedAt.IsZero() {
			rej.RejectedAt = time.Now().UTC()
		}
		reasonsJSON, err := json.Marshal(rej.Reasons)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: marshal reasons")
		}
		rows = append(rows, []any{uuid.NewString(), rej.URL, rej.Score, reasonsJSON, rej.RejectedAt})
	}
	return db.CopyFrom(ctx, s.pool, "rejections",
		[]string{"id", "url", "score", "reasons", "rejected_at"}, rows)
}

func (s *PostgresStore) ListRejections(ctx context.Context, limit, offset int) ([]model.Rejection, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx,
		`SELECT url, score, reasons, rejected_at FROM rejections
		 ORDER BY rejected_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list rejections")
	}
	defer rows.Close()

	var rejections []model.Rejection
	for rows.Next() {
		var rej model.Rejection
		var reasonsJSON []byte
		if err := rows.Scan(&rej.URL, &rej.Score, &reasonsJSON, &rej.RejectedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan rejection")
		}
		if err := json.Unmarshal(reasonsJSON, &rej.Reasons); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal reasons")
		}
		rejections = append(rejections, rej)
	}
	return rejections, eris.Wrap(rows.Err(), "postgres: list rejections iterate")
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
