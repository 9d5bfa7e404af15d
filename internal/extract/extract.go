// Package extract implements the per-field strategy cascades that pull
// structured values out of unstructured listing markup. Each field has
// a fixed-order list of strategies; a candidate only survives if it
// passes its plausibility validator, otherwise the cascade continues
// and an exhausted field is reported absent, never defaulted.
package extract

import (
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

// Strategy confidence levels, fixed per cascade position.
const (
	ConfidenceStructured = 0.95
	ConfidenceLabeled    = 0.85
	ConfidencePattern    = 0.65
	ConfidenceFallback   = 0.40
)

// HighConfidence is the floor above which a deterministic value must
// never be overwritten by an inferred one.
const HighConfidence = 0.80

// candidate is one strategy's proposal for a field value. context
// carries the text surrounding a match for shape checks that need it.
type candidate struct {
	value   any
	raw     string
	context string
}

// strategy is a single extraction technique for one field.
type strategy struct {
	name       model.ExtractionStrategy
	confidence float64
	fn         func(*page.Page) (candidate, bool)
}

// Extractor runs the field cascades for a fixed locale and gazetteer.
// It is immutable and safe for concurrent use.
type Extractor struct {
	profile locale.Profile
	gaz     *gazetteer.Gazetteer
}

// New creates an Extractor. A nil gazetteer disables area lookup but
// not the rest of the location cascade.
func New(profile locale.Profile, gaz *gazetteer.Gazetteer) *Extractor {
	return &Extractor{profile: profile, gaz: gaz}
}

// Extract runs every field cascade against the page and returns the
// collected fields in cascade order plus the fields that missed.
func (e *Extractor) Extract(p *page.Page) model.ExtractionResult {
	var result model.ExtractionResult

	for _, field := range model.AllFields() {
		if f, found := e.extractField(field, p); found {
			result.Fields = append(result.Fields, f)
		} else {
			result.Missing = append(result.Missing, field)
		}
	}

	zap.L().Debug("extract: cascade complete",
		zap.String("url", p.URL()),
		zap.Int("fields", len(result.Fields)),
		zap.Int("missing", len(result.Missing)),
	)
	return result
}

// extractField tries the field's strategies in priority order. An
// implausible candidate is a non-match: the cascade continues.
func (e *Extractor) extractField(field model.FieldName, p *page.Page) (model.ExtractedField, bool) {
	for _, s := range e.strategies(field) {
		cand, found := s.fn(p)
		if !found {
			continue
		}

		res := e.validateCandidate(field, cand)
		if !res.OK {
			zap.L().Debug("extract: candidate rejected, trying next strategy",
				zap.String("field", string(field)),
				zap.String("strategy", string(s.name)),
				zap.String("reason", res.Reason),
			)
			continue
		}

		return model.ExtractedField{
			Name:       field,
			Value:      cand.value,
			Raw:        cand.raw,
			Strategy:   s.name,
			Confidence: s.confidence,
			Generic:    res.Generic,
		}, true
	}
	return model.ExtractedField{}, false
}

// strategies returns the fixed-order cascade for a field.
func (e *Extractor) strategies(field model.FieldName) []strategy {
	switch field {
	case model.FieldTitle:
		return []strategy{
			{model.StrategyStructured, ConfidenceStructured, e.structuredTitle},
			{model.StrategyLabeled, ConfidenceLabeled, e.metaTitle},
			{model.StrategyPattern, ConfidencePattern, e.headingTitle},
			{model.StrategyFallback, ConfidenceFallback, e.documentTitle},
		}
	case model.FieldPrice:
		return []strategy{
			{model.StrategyStructured, ConfidenceStructured, e.structuredPrice},
			{model.StrategyLabeled, ConfidenceLabeled, e.labeledPrice},
			{model.StrategyPattern, ConfidencePattern, e.patternPrice},
		}
	case model.FieldBedrooms:
		return e.roomStrategies("bedroom", bedroomLabeled, bedroomPattern, structuredBedroomKeys)
	case model.FieldBathrooms:
		return e.roomStrategies("bathroom", bathroomLabeled, bathroomPattern, structuredBathroomKeys)
	case model.FieldToilets:
		return e.roomStrategies("toilet", toiletLabeled, toiletPattern, nil)
	case model.FieldLocation:
		return []strategy{
			{model.StrategyStructured, ConfidenceStructured, e.structuredLocation},
			{model.StrategyLabeled, ConfidenceLabeled, e.labeledLocation},
			{model.StrategyPattern, ConfidencePattern, e.gazetteerLocation},
			{model.StrategyFallback, ConfidenceFallback, e.addressShapedLocation},
		}
	case model.FieldDescription:
		return []strategy{
			{model.StrategyStructured, ConfidenceStructured, e.structuredDescription},
			{model.StrategyLabeled, ConfidenceLabeled, e.metaDescription},
			{model.StrategyPattern, ConfidencePattern, e.paragraphDescription},
		}
	}
	return nil
}
