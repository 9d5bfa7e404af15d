package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testRecord(url string, accepted bool, score int) *model.NormalizedRecord {
	return &model.NormalizedRecord{
		URL:         url,
		SiteHint:    "naijahomes",
		ContentHash: "abc123",
		Classification: model.ClassificationVerdict{
			IsCategoryPage: false,
			Confidence:     0.9,
		},
		Extraction: model.ExtractionResult{Fields: []model.ExtractedField{
			{Name: model.FieldTitle, Value: "4 Bedroom Duplex in Lekki", Strategy: model.StrategyLabeled, Confidence: 0.85},
			{Name: model.FieldPrice, Value: 85_000_000.0, Strategy: model.StrategyLabeled, Confidence: 0.85},
		}},
		Quality: model.QualityVerdict{Score: score, Accepted: accepted},
	}
}

func TestSQLiteSaveAndGetRecord(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rec := testRecord("https://example.ng/property/1", true, 90)
	require.NoError(t, s.SaveRecord(ctx, rec))
	assert.NotEmpty(t, rec.ID, "save assigns identity")
	assert.False(t, rec.ProcessedAt.IsZero())

	got, err := s.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.URL, got.URL)
	assert.Equal(t, 90, got.Quality.Score)
	assert.Equal(t, "4 Bedroom Duplex in Lekki", got.Extraction.StringValue(model.FieldTitle))
}

func TestSQLiteGetRecordNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRecord(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record not found")
}

func TestSQLiteUpsertOnURL(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := testRecord("https://example.ng/property/1", true, 80)
	require.NoError(t, s.SaveRecord(ctx, first))

	second := testRecord("https://example.ng/property/1", true, 95)
	require.NoError(t, s.SaveRecord(ctx, second))

	records, err := s.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1, "same URL replaces, never duplicates")
	assert.Equal(t, 95, records[0].Quality.Score)
}

func TestSQLiteListRecordsFilter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SaveRecord(ctx, testRecord("https://example.ng/property/1", true, 90)))
	require.NoError(t, s.SaveRecord(ctx, testRecord("https://example.ng/property/2", false, 20)))
	require.NoError(t, s.SaveRecord(ctx, testRecord("https://example.ng/property/3", true, 55)))

	accepted := true
	records, err := s.ListRecords(ctx, RecordFilter{Accepted: &accepted})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	records, err = s.ListRecords(ctx, RecordFilter{MinScore: 60})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 90, records[0].Quality.Score)

	records, err = s.ListRecords(ctx, RecordFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Len(t, records, 1)

	records, err = s.ListRecords(ctx, RecordFilter{SiteHint: "other-site"})
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = s.ListRecords(ctx, RecordFilter{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, records, 3, "negative limit lists everything")
}

func TestSQLiteSaveRecordsBatch(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	n, err := s.SaveRecords(ctx, []*model.NormalizedRecord{
		testRecord("https://example.ng/property/1", true, 90),
		testRecord("https://example.ng/property/2", false, 30),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err := s.ListRecords(ctx, RecordFilter{})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestSQLiteRejections(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	rej := model.Rejection{
		URL:     "https://example.ng/property-for-sale/lagos",
		Score:   0,
		Reasons: []string{"category page detected"},
	}
	require.NoError(t, s.SaveRejection(ctx, rej))

	rejections, err := s.ListRejections(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, rejections, 1)
	assert.Equal(t, rej.URL, rejections[0].URL)
	assert.Equal(t, []string{"category page detected"}, rejections[0].Reasons)
	assert.False(t, rejections[0].RejectedAt.IsZero())
}
