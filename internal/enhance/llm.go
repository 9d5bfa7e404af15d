package enhance

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/resilience"
	"github.com/Tee-David/realtors-practice-sub002/pkg/anthropic"
)

// DefaultModel is the model used for enhancement when the config does
// not name one. Enhancement is a cheap classification task; the small
// model is the right default.
const DefaultModel = "claude-haiku-4-5-20251001"

const maxTokens = 1024

// maxPromptText bounds how much page text is sent per record.
const maxPromptText = 6000

const systemPrompt = `You analyze Nigerian real-estate listing text. Respond with a single JSON object and nothing else:
{"property_type": one of ["apartment","duplex","bungalow","land","commercial","office"] or null,
 "area": the most specific neighbourhood or area named in the text, or null,
 "amenities": {"security": [...], "utilities": [...], "recreational": [...]},
 "summary": a 1-2 sentence summary of the property, or null}
Only report what the text states. Never invent amenities or areas.`

// LLMEnhancer asks a language model for the enhancement and falls back
// to pattern matching when the model call fails for any reason. The
// pipeline never sees an enhancement error.
type LLMEnhancer struct {
	client   anthropic.Client
	model    string
	system   []anthropic.SystemBlock
	fallback *PatternEnhancer
}

// NewLLM creates an LLMEnhancer. The system prompt carries a cache
// breakpoint so concurrent workers share one cached prefix.
func NewLLM(client anthropic.Client, modelID string, gaz *gazetteer.Gazetteer) *LLMEnhancer {
	if modelID == "" {
		modelID = DefaultModel
	}
	return &LLMEnhancer{
		client:   client,
		model:    modelID,
		system:   anthropic.BuildCachedSystemBlocks(systemPrompt),
		fallback: NewPattern(gaz),
	}
}

// Enhance queries the model and merges its answer. Transient API
// errors are retried; any final failure degrades to the pattern
// enhancer.
func (e *LLMEnhancer) Enhance(ctx context.Context, rec *model.NormalizedRecord, text string) {
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "enhance")

	resp, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.client.CreateMessage(ctx, e.request(text))
	})
	if err != nil {
		zap.L().Warn("enhance: model call failed, using pattern fallback",
			zap.String("url", rec.URL),
			zap.Error(err),
		)
		e.fallback.Enhance(ctx, rec, text)
		return
	}
	resp.Usage.LogCost(e.model, "enhance")

	enh, ok := parseEnhancement(resp)
	if !ok {
		e.fallback.Enhance(ctx, rec, text)
		return
	}
	apply(rec, enh)
}

func (e *LLMEnhancer) request(text string) anthropic.MessageRequest {
	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}
	return anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: maxTokens,
		System:    e.system,
		Messages: []anthropic.Message{
			{Role: "user", Content: "Listing text:\n" + text},
		},
	}
}

// parseEnhancement converts a model response into an Enhancement.
// Out-of-set property types are dropped rather than trusted.
func parseEnhancement(resp *anthropic.MessageResponse) (model.Enhancement, bool) {
	cleaned := cleanJSON(extractText(resp))
	if cleaned == "" {
		return model.Enhancement{}, false
	}

	var raw struct {
		PropertyType string              `json:"property_type"`
		Area         string              `json:"area"`
		Amenities    map[string][]string `json:"amenities"`
		Summary      string              `json:"summary"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Debug("enhance: unparseable model response", zap.Error(err))
		return model.Enhancement{}, false
	}

	enh := model.Enhancement{
		Source:       SourceLLM,
		InferredArea: strings.TrimSpace(raw.Area),
		Summary:      strings.TrimSpace(raw.Summary),
	}
	if inPropertyTypeSet(raw.PropertyType) {
		enh.PropertyType = raw.PropertyType
	}
	for category, hits := range raw.Amenities {
		if len(hits) == 0 {
			continue
		}
		if enh.Amenities == nil {
			enh.Amenities = make(map[string][]string)
		}
		enh.Amenities[category] = hits
	}
	return enh, true
}

func inPropertyTypeSet(s string) bool {
	for _, pt := range propertyTypes {
		if pt.name == s {
			return true
		}
	}
	return false
}

// extractText concatenates all text content blocks.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "" || b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// cleanJSON strips markdown fences and extracts the JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
