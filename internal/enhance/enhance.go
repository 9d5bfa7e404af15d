// Package enhance augments accepted records with inferred property
// type, area, amenity tags and summaries. Two implementations sit
// behind one interface: a pattern matcher that always works, and a
// language-model enhancer that degrades to the pattern matcher when
// the model is unavailable. Enhancement is strictly additive; a
// high-confidence deterministic field is never replaced.
package enhance

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/pkg/anthropic"
)

// Source labels for Enhancement.Source.
const (
	SourceLLM     = "llm"
	SourcePattern = "pattern"
)

// Enhancer augments an accepted record using the page's visible text.
// Implementations must be additive: fill what is absent, append to what
// is generic, and leave everything else alone. A failing enhancer
// returns the record unchanged, never an error the pipeline must stop
// for.
type Enhancer interface {
	Enhance(ctx context.Context, rec *model.NormalizedRecord, text string)
}

// Mode selects the enhancer implementation at process start.
const (
	ModeOff     = "off"
	ModePattern = "pattern"
	ModeLLM     = "llm"
	ModeAuto    = "auto"
)

// Select picks the enhancer for the configured mode. The rest of the
// pipeline never learns which implementation is active. ModeOff returns
// nil; callers treat a nil enhancer as a no-op.
func Select(mode string, client anthropic.Client, modelID string, gaz *gazetteer.Gazetteer) Enhancer {
	switch mode {
	case ModeOff:
		return nil
	case ModePattern:
		return NewPattern(gaz)
	case ModeLLM:
		if client == nil {
			zap.L().Warn("enhance: llm mode requested without an api key, using pattern matching")
			return NewPattern(gaz)
		}
		return NewLLM(client, modelID, gaz)
	default: // ModeAuto
		if client == nil {
			return NewPattern(gaz)
		}
		return NewLLM(client, modelID, gaz)
	}
}

// apply merges an enhancement into the record, honoring the
// non-destructive contract. A generic title below the high-confidence
// floor gets the inferred area appended; titles are otherwise left
// untouched.
func apply(rec *model.NormalizedRecord, enh model.Enhancement) {
	if enh.PropertyType == "" && enh.InferredArea == "" && len(enh.Amenities) == 0 && enh.Summary == "" {
		return
	}
	rec.Enhancement = &enh

	if enh.InferredArea == "" {
		return
	}
	title := rec.Extraction.Field(model.FieldTitle)
	if title == nil || !title.Generic {
		return
	}
	s, ok := title.Value.(string)
	if !ok || strings.Contains(strings.ToLower(s), strings.ToLower(enh.InferredArea)) {
		return
	}
	title.Value = s + " – " + enh.InferredArea
	title.Strategy = model.StrategyEnhancer
}
