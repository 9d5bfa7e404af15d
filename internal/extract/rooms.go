package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

// Labeled and free-text patterns per room field. Counts are captured
// with up to four digits so that phone fragments reach the validator
// and are rejected there, instead of being silently truncated into a
// plausible-looking count.
var (
	bedroomLabeled = regexp.MustCompile(`(?i)bed(?:room)?s?\s*[:\-]\s*(\d{1,4})`)
	bedroomPattern = regexp.MustCompile(`(?i)(\d{1,4})\s*[-\s]?bed(?:room)?s?\b`)

	bathroomLabeled = regexp.MustCompile(`(?i)bath(?:room)?s?\s*[:\-]\s*(\d{1,4})`)
	bathroomPattern = regexp.MustCompile(`(?i)(\d{1,4})\s*[-\s]?bath(?:room)?s?\b`)

	toiletLabeled = regexp.MustCompile(`(?i)toilets?\s*[:\-]\s*(\d{1,4})`)
	toiletPattern = regexp.MustCompile(`(?i)(\d{1,4})\s*[-\s]?toilets?\b`)
)

// contextWindow is how many characters around a match are handed to
// the phone-shape check.
const contextWindow = 24

// roomStrategies builds the shared cascade for bedroom/bathroom/toilet
// counts: structured lookup, labeled text, then keyword-adjacent
// pattern. There is no fallback: a room count is never guessed.
func (e *Extractor) roomStrategies(kind string, labeled, pattern *regexp.Regexp, structuredKeys []string) []strategy {
	strategies := make([]strategy, 0, 3)

	if len(structuredKeys) > 0 {
		strategies = append(strategies, strategy{
			model.StrategyStructured, ConfidenceStructured,
			func(p *page.Page) (candidate, bool) {
				n, ok := jsonLDNumber(p.JSONLD, structuredKeys...)
				if !ok {
					return candidate{}, false
				}
				return candidate{value: int(n), raw: strconv.Itoa(int(n))}, true
			},
		})
	}

	strategies = append(strategies,
		strategy{model.StrategyLabeled, ConfidenceLabeled, func(p *page.Page) (candidate, bool) {
			return matchCount(labeled, p.VisibleText)
		}},
		strategy{model.StrategyPattern, ConfidencePattern, func(p *page.Page) (candidate, bool) {
			return matchCount(pattern, p.VisibleText)
		}},
	)
	return strategies
}

// matchCount finds the first count match and carries the surrounding
// context so the validator can apply its phone-shape heuristics.
func matchCount(re *regexp.Regexp, text string) (candidate, bool) {
	loc := re.FindStringSubmatchIndex(text)
	if loc == nil {
		return candidate{}, false
	}

	raw := text[loc[2]:loc[3]]
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return candidate{}, false
	}

	start := loc[2] - contextWindow
	if start < 0 {
		start = 0
	}
	end := loc[3] + contextWindow
	if end > len(text) {
		end = len(text)
	}

	return candidate{value: n, raw: raw, context: text[start:end]}, true
}
