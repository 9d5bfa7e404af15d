package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

var (
	// labeledPricePattern matches "Price: ₦85,000,000" and variants.
	// The value group is bounded; magnitude word optional.
	labeledPricePattern = regexp.MustCompile(`(?i)price\s*[:\-]\s*((?:₦|NGN|N)?\s?\d[\d,]{0,17}(?:\.\d{1,2})?(?:\s?(?:million|billion|thousand|bn|[mk])\b)?)`)

	// currencyPricePatterns are the unlabeled free-text cascade, most
	// specific first: full currency-prefixed amounts, then amounts with
	// magnitude words.
	currencyPricePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:₦|NGN)\s?\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?`),
		regexp.MustCompile(`(?:₦|NGN)\s?\d{1,12}(?:\.\d{1,3})?\s?(?i:million|billion|thousand|bn|[mk])\b`),
		regexp.MustCompile(`\bN\s?\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?\b`),
		regexp.MustCompile(`(?:₦|NGN)\s?\d{4,12}\b`),
	}

	magnitudeSuffixPattern = regexp.MustCompile(`(?i)(million|billion|thousand|bn|[mk])\b\s*$`)
	priceDigitsPattern     = regexp.MustCompile(`[\d,]+(?:\.\d{1,3})?`)
)

// structuredPrice reads the price out of embedded JSON-LD offers.
func (e *Extractor) structuredPrice(p *page.Page) (candidate, bool) {
	n, raw, ok := jsonLDOfferPrice(p.JSONLD)
	if !ok {
		return candidate{}, false
	}
	return candidate{value: n, raw: raw}, true
}

// labeledPrice finds an explicitly labeled price in the visible text.
// A "price on request" label is a deliberate non-match: the sentinel
// means missing, and no later strategy may resurrect it as zero.
func (e *Extractor) labeledPrice(p *page.Page) (candidate, bool) {
	m := labeledPricePattern.FindStringSubmatch(p.VisibleText)
	if m == nil {
		return candidate{}, false
	}
	raw := strings.TrimSpace(m[1])
	if e.profile.IsPriceOnRequest(raw) {
		return candidate{}, false
	}

	v, ok := e.parseAmount(raw)
	if !ok {
		return candidate{}, false
	}
	return candidate{value: v, raw: raw}, true
}

// patternPrice scans for currency-shaped amounts anywhere in the text.
func (e *Extractor) patternPrice(p *page.Page) (candidate, bool) {
	if e.profile.IsPriceOnRequest(p.VisibleText) {
		// A sentinel on the page and no labeled price: treat as missing
		// rather than grabbing an unrelated number.
		return candidate{}, false
	}
	for _, re := range currencyPricePatterns {
		if m := re.FindString(p.VisibleText); m != "" {
			if v, ok := e.parseAmount(m); ok {
				return candidate{value: v, raw: m}, true
			}
		}
	}
	return candidate{}, false
}

// parseAmount converts "₦85,000,000", "N1.5m" or "2 billion" into a
// float, applying the profile's magnitude words.
func (e *Extractor) parseAmount(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)

	multiplier := 1.0
	if m := magnitudeSuffixPattern.FindStringSubmatch(s); m != nil {
		multiplier = e.profile.Multiplier(m[1])
		s = strings.TrimSpace(s[:len(s)-len(m[0])])
	}

	digits := priceDigitsPattern.FindString(s)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v * multiplier, true
}
