// Package store persists processed records and rejections. The core
// pipeline never touches storage; callers hand it finished records and
// this package owns them from there.
package store

import (
	"context"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

// RecordFilter specifies criteria for listing records.
type RecordFilter struct {
	// Accepted filters on the quality gate outcome when non-nil.
	Accepted *bool  `json:"accepted,omitempty"`
	SiteHint string `json:"site_hint,omitempty"`
	// MinScore drops records scored below it.
	MinScore int `json:"min_score,omitempty"`
	// Limit caps the result set. Zero means the default page size,
	// negative means unlimited.
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// Store defines the persistence interface for processed listings.
// Records upsert on URL: reprocessing a page replaces its record.
type Store interface {
	SaveRecord(ctx context.Context, rec *model.NormalizedRecord) error
	SaveRecords(ctx context.Context, recs []*model.NormalizedRecord) (int64, error)
	GetRecord(ctx context.Context, id string) (*model.NormalizedRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]model.NormalizedRecord, error)

	SaveRejection(ctx context.Context, rej model.Rejection) error
	SaveRejections(ctx context.Context, rejs []model.Rejection) (int64, error)
	ListRejections(ctx context.Context, limit, offset int) ([]model.Rejection, error)

	Migrate(ctx context.Context) error
	Close() error
}
