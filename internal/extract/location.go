package extract

import (
	"regexp"
	"strings"

	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

var (
	labeledLocationPattern = regexp.MustCompile(`(?i)(?:location|address|area)\s*[:\-]\s*([A-Za-z][A-Za-z0-9\s,.'\-]{2,80})`)

	// addressLinePattern catches street-address shaped lines when no
	// known area or label is present.
	addressLinePattern = regexp.MustCompile(`(?i)\b[\w\s.'\-]{3,40}\b(?:street|road|avenue|close|crescent|drive|estate)\b[\w\s,.'\-]{0,40}`)
)

// structuredLocation reads a schema.org address object from JSON-LD.
func (e *Extractor) structuredLocation(p *page.Page) (candidate, bool) {
	s, ok := jsonLDAddress(p.JSONLD)
	if !ok {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// labeledLocation finds "Location: Lekki Phase 1, Lagos" style labels.
func (e *Extractor) labeledLocation(p *page.Page) (candidate, bool) {
	m := labeledLocationPattern.FindStringSubmatch(p.VisibleText)
	if m == nil {
		return candidate{}, false
	}
	s := e.trimLocation(m[1])
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: m[0]}, true
}

// gazetteerLocation scans title and body for known area names and
// composes "Area, City". The title is scanned first since area names in
// headlines are far more reliable than ones buried in boilerplate.
func (e *Extractor) gazetteerLocation(p *page.Page) (candidate, bool) {
	if e.gaz == nil {
		return candidate{}, false
	}
	for _, text := range []string{p.Title, p.VisibleText} {
		matches := e.gaz.FindAreas(text)
		if len(matches) == 0 {
			continue
		}
		m := matches[0]
		value := m.Area
		if m.City != "" {
			value = m.Area + ", " + m.City
		}
		return candidate{value: value, raw: m.Area}, true
	}
	return candidate{}, false
}

// addressShapedLocation is the last resort: any street-address shaped
// run of text.
func (e *Extractor) addressShapedLocation(p *page.Page) (candidate, bool) {
	m := addressLinePattern.FindString(p.VisibleText)
	if m == "" {
		return candidate{}, false
	}
	s := e.trimLocation(m)
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: m}, true
}

// trimLocation cleans a captured location fragment. Visible text is
// whitespace-normalized, so a capture can run past the address into the
// next sentence: cut at the earliest known city name, then at common
// stop words.
func (e *Extractor) trimLocation(s string) string {
	s = strings.TrimSpace(s)
	if e.gaz != nil {
		if clipped, ok := e.gaz.TruncateAtCity(s); ok {
			s = clipped
		}
	}
	for _, stop := range []string{" for ", " with ", " featuring ", " this "} {
		if i := strings.Index(strings.ToLower(s), stop); i > 0 {
			s = s[:i]
		}
	}
	return strings.Trim(strings.TrimSpace(s), ",.-")
}
