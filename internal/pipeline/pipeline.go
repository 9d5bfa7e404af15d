// Package pipeline wires the core stages together: parse, signal,
// classify, extract, score, enhance. Each invocation depends only on
// its input sample and produces a fresh record, so any number of pages
// can be processed concurrently with no locking.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Tee-David/realtors-practice-sub002/internal/classifier"
	"github.com/Tee-David/realtors-practice-sub002/internal/enhance"
	"github.com/Tee-David/realtors-practice-sub002/internal/extract"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
	"github.com/Tee-David/realtors-practice-sub002/internal/quality"
	"github.com/Tee-David/realtors-practice-sub002/internal/signals"
)

// DefaultWorkers is the concurrency used by ProcessAll when the caller
// passes zero.
const DefaultWorkers = 8

// Pipeline is the assembled core. It is immutable after construction
// and safe for concurrent use; the enhancer may be nil.
type Pipeline struct {
	classifier *classifier.Classifier
	extractor  *extract.Extractor
	scorer     *quality.Scorer
	enhancer   enhance.Enhancer
}

// New assembles a pipeline from its stages.
func New(c *classifier.Classifier, e *extract.Extractor, s *quality.Scorer, enh enhance.Enhancer) *Pipeline {
	return &Pipeline{classifier: c, extractor: e, scorer: s, enhancer: enh}
}

// WithoutEnhancer returns a copy of the pipeline with the enhancement
// stage disabled. Deferred batch enhancement runs the other stages
// first and enhances the accepted records afterwards in one API batch.
func (pl *Pipeline) WithoutEnhancer() *Pipeline {
	cp := *pl
	cp.enhancer = nil
	return &cp
}

// Process runs one sample through every stage and returns the record,
// accepted or not. It never fails: the worst outcome for any input is a
// rejection with reasons.
func (pl *Pipeline) Process(ctx context.Context, sample model.PageSample) *model.NormalizedRecord {
	pg := page.New(sample)

	verdict := pl.classifier.Classify(pg, signals.All(pg))
	extraction := pl.extractor.Extract(pg)

	qualitySignals := quality.SignalsFromPage(pg, enhance.AmenityCount(pg.VisibleText))
	qv := pl.scorer.Score(verdict, extraction, qualitySignals)

	rec := &model.NormalizedRecord{
		URL:            sample.URL,
		SiteHint:       sample.SiteHint,
		ContentHash:    pg.ContentHash(),
		Classification: verdict,
		Extraction:     extraction,
		Quality:        qv,
	}

	if rec.Accepted() && pl.enhancer != nil {
		pl.enhancer.Enhance(ctx, rec, pg.VisibleText)
	}

	zap.L().Info("pipeline: processed",
		zap.String("url", rec.URL),
		zap.Bool("accepted", rec.Accepted()),
		zap.Int("score", rec.Quality.Score),
		zap.Bool("category", rec.Classification.IsCategoryPage),
	)
	return rec
}

// Stamp assigns the record its persistence identity. Identity lives at
// the storage boundary, not in the core, so Process output stays
// deterministic for identical input.
func Stamp(rec *model.NormalizedRecord) {
	rec.ID = uuid.NewString()
	rec.ProcessedAt = time.Now().UTC()
}

// ProcessAll processes samples concurrently and returns the records in
// input order. Cancellation stops scheduling new samples; records for
// unprocessed samples are nil.
func (pl *Pipeline) ProcessAll(ctx context.Context, samples []model.PageSample, workers int) []*model.NormalizedRecord {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var mu sync.Mutex
	records := make([]*model.NormalizedRecord, len(samples))

	for i, sample := range samples {
		i, sample := i, sample
		g.Go(func() error {
			if gCtx.Err() != nil {
				return nil
			}
			rec := pl.Process(gCtx, sample)
			mu.Lock()
			records[i] = rec
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return records
}
