// Package classifier combines page signals into a category-vs-listing
// verdict. Weights and thresholds are fixed, named constants so the
// algorithm is auditable; only the decision threshold is configurable.
package classifier

import (
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
	"github.com/Tee-David/realtors-practice-sub002/internal/signals"
)

// Signal weights. They sum to 1.0; the combined score is therefore
// already normalized to [0,1].
const (
	weightURLShape         = 0.20
	weightLinkDensity      = 0.20
	weightPagination       = 0.20
	weightRepetition       = 0.15
	weightStructuredMarkup = 0.15
	weightDataRichness     = 0.10
)

// DefaultCategoryThreshold is the combined score at or above which a
// page is classified as a category page. Ties resolve to category:
// rejecting an index page is cheaper than polluting storage with
// aggregate data.
const DefaultCategoryThreshold = 0.60

// Thin-content guards: a page with fewer words than minListingWords or
// fewer distinct property field families than minListingRichness cannot
// earn a listing verdict and is returned as a low-confidence category.
const (
	minListingWords    = 40
	minListingRichness = 2

	// lowContentConfidence is the confidence reported for thin pages,
	// deliberately low so callers can distinguish "guessed category"
	// from "measured category".
	lowContentConfidence = 0.25
)

// Classifier scores pages against a configurable decision threshold.
type Classifier struct {
	threshold float64
}

// New creates a Classifier. A non-positive threshold falls back to
// DefaultCategoryThreshold.
func New(threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultCategoryThreshold
	}
	return &Classifier{threshold: threshold}
}

// Classify combines the signal set into a verdict. Identical input
// always yields an identical verdict.
func (c *Classifier) Classify(p *page.Page, sigs []model.ClassifierSignal) model.ClassificationVerdict {
	weights := map[string]float64{
		signals.SignalURLShape:         weightURLShape,
		signals.SignalLinkDensity:      weightLinkDensity,
		signals.SignalPagination:       weightPagination,
		signals.SignalRepetition:       weightRepetition,
		signals.SignalStructuredMarkup: weightStructuredMarkup,
		signals.SignalDataRichness:     weightDataRichness,
	}

	contributing := make(map[string]float64, len(sigs))
	score := 0.0
	for _, sig := range sigs {
		w := weights[sig.Name]
		contribution := w * sig.Value
		contributing[sig.Name] = contribution
		score += contribution
	}

	// Thin pages never get a listing verdict: without a minimum of
	// recognizable property data the cheaper failure mode is a
	// low-confidence category, not a guessed listing.
	if score < c.threshold {
		if p.WordCount() < minListingWords || signals.RichnessCount(p) < minListingRichness {
			zap.L().Debug("classifier: thin content, refusing listing verdict",
				zap.String("url", p.URL()),
				zap.Int("words", p.WordCount()),
				zap.Float64("score", score),
			)
			return model.ClassificationVerdict{
				IsCategoryPage:      true,
				Confidence:          lowContentConfidence,
				ContributingSignals: contributing,
			}
		}
	}

	isCategory := score >= c.threshold // tie resolves to category

	confidence := score
	if !isCategory {
		confidence = 1 - score
	}

	zap.L().Debug("classifier: verdict",
		zap.String("url", p.URL()),
		zap.Bool("is_category", isCategory),
		zap.Float64("score", score),
		zap.Float64("confidence", confidence),
	)

	return model.ClassificationVerdict{
		IsCategoryPage:      isCategory,
		Confidence:          confidence,
		ContributingSignals: contributing,
	}
}
