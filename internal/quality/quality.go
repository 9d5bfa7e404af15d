// Package quality converts a classification verdict and an extraction
// result into a 0..100 score and an accept/reject decision. All weights
// live here as named constants so the scoring surface is auditable in
// one place.
package quality

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

// contactPattern spots agent phone numbers in visible text. Bounded
// repetition keeps it linear on adversarial input.
var contactPattern = regexp.MustCompile(`(?i)(?:call|contact|whatsapp|phone|tel)\b[^0-9]{0,20}\+?\d[\d\s().\-]{6,18}\d`)

// CategoryConfidenceThreshold is the classifier confidence above which
// a category verdict rejects the page outright.
const CategoryConfidenceThreshold = 0.5

// DefaultAcceptThreshold is the minimum score an accepted record needs.
const DefaultAcceptThreshold = 40

// lowFieldConfidence marks a surviving field worth a warning: it came
// from a weak strategy even though it passed validation.
const lowFieldConfidence = 0.5

// Per-dimension penalties, subtracted from the 100 baseline.
const (
	penaltyPriceMissing       = 20
	penaltyTitleMissing       = 15
	penaltyLocationMissing    = 15
	penaltyBedroomsMissing    = 10
	penaltyDescriptionMissing = 10
	penaltyBathroomsMissing   = 5
	penaltyNoMediaOrContact   = 5
	penaltyNoAmenities        = 5
)

// PageSignals carries the page-level quality cues that are not
// extraction fields: media presence, contact presence and how many
// amenity keywords the page mentions.
type PageSignals struct {
	HasMedia     bool
	HasContact   bool
	AmenityCount int
}

// SignalsFromPage derives media and contact presence from the parsed
// page. The amenity count comes from the caller since the amenity
// taxonomy lives with the enhancer.
func SignalsFromPage(p *page.Page, amenityCount int) PageSignals {
	s := PageSignals{AmenityCount: amenityCount}
	if p.Doc != nil {
		s.HasMedia = p.Doc.Find("img[src], video, meta[property='og:image']").Length() > 0
		s.HasContact = p.Doc.Find("a[href^='tel:'], a[href^='mailto:']").Length() > 0
	}
	if !s.HasContact {
		s.HasContact = contactPattern.MatchString(p.VisibleText)
	}
	return s
}

// Config holds the two externally tunable scoring knobs. The penalty
// for a generic (bare city) location defaults to zero, making it a
// warning only; deployments that want it to bite set it above zero.
type Config struct {
	AcceptThreshold        int
	GenericLocationPenalty int
}

// Scorer scores records against a fixed dimension set.
type Scorer struct {
	cfg Config
}

// New creates a Scorer. A zero AcceptThreshold gets the default.
func New(cfg Config) *Scorer {
	if cfg.AcceptThreshold <= 0 {
		cfg.AcceptThreshold = DefaultAcceptThreshold
	}
	return &Scorer{cfg: cfg}
}

// Score produces the quality verdict for one page. A confident category
// verdict short-circuits to a zero score; otherwise each missing or
// weak dimension subtracts its fixed penalty, and every failed
// dimension is enumerated, not just the first.
func (s *Scorer) Score(verdict model.ClassificationVerdict, extraction model.ExtractionResult, signals PageSignals) model.QualityVerdict {
	if verdict.IsCategoryPage && verdict.Confidence >= CategoryConfidenceThreshold {
		return model.QualityVerdict{
			Score:            0,
			Accepted:         false,
			RejectionReasons: []string{"category page detected"},
		}
	}

	score := 100
	var failures []string
	var warnings []string

	penalize := func(points int, reason string) {
		score -= points
		failures = append(failures, reason)
	}

	if f := extraction.Field(model.FieldTitle); f == nil {
		penalize(penaltyTitleMissing, "title missing")
	} else if f.Generic {
		warnings = append(warnings, "title is a generic placeholder")
	}

	if !extraction.Has(model.FieldPrice) {
		penalize(penaltyPriceMissing, "price missing or implausible")
	}

	if f := extraction.Field(model.FieldLocation); f == nil {
		penalize(penaltyLocationMissing, "location missing")
	} else if f.Generic {
		warnings = append(warnings, "location is generic")
		if p := s.cfg.GenericLocationPenalty; p > 0 {
			// A generic location is still a location. Cap the penalty so
			// no configuration makes it score worse than a missing one.
			if p > penaltyLocationMissing {
				p = penaltyLocationMissing
			}
			penalize(p, "location too generic")
		}
	}

	if !extraction.Has(model.FieldBedrooms) {
		penalize(penaltyBedroomsMissing, "bedroom count missing")
	}
	if !extraction.Has(model.FieldBathrooms) {
		penalize(penaltyBathroomsMissing, "bathroom count missing")
	}
	if !extraction.Has(model.FieldDescription) {
		penalize(penaltyDescriptionMissing, "description missing")
	}
	if !signals.HasMedia && !signals.HasContact {
		penalize(penaltyNoMediaOrContact, "no media or contact signal")
	}
	if signals.AmenityCount == 0 {
		penalize(penaltyNoAmenities, "no amenities or features found")
	}

	for _, f := range extraction.Fields {
		if f.Confidence < lowFieldConfidence {
			warnings = append(warnings, fmt.Sprintf("%s extracted with low confidence", f.Name))
		}
	}

	if score < 0 {
		score = 0
	}

	out := model.QualityVerdict{Score: score, Warnings: warnings}
	if score >= s.cfg.AcceptThreshold {
		// An accepted record keeps its dimension misses visible as
		// warnings so callers can see what is thin about it.
		out.Accepted = true
		out.Warnings = append(out.Warnings, failures...)
	} else {
		out.RejectionReasons = failures
	}

	zap.L().Debug("quality: scored",
		zap.Int("score", out.Score),
		zap.Bool("accepted", out.Accepted),
		zap.Int("failed_dimensions", len(failures)),
	)
	return out
}
