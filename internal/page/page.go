// Package page turns a raw PageSample into a parsed page the signal
// extractors and field strategies can share: one goquery document, the
// derived visible text, and any embedded JSON-LD blocks.
package page

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

const (
	// maxMarkupBytes caps how much markup is parsed. Adversarial pages
	// beyond this are truncated, not rejected.
	maxMarkupBytes = 2 << 20 // 2 MiB

	// maxVisibleTextBytes caps the derived text fed to pattern matching.
	maxVisibleTextBytes = 512 << 10 // 512 KiB
)

// Page is a parsed page sample. It is immutable after construction and
// safe to share across goroutines.
type Page struct {
	Sample model.PageSample

	// Doc is nil only when the markup was unsalvageable; every consumer
	// must tolerate that and fall back to VisibleText.
	Doc *goquery.Document

	// VisibleText is the best-effort rendering of the page's visible
	// text content, whitespace-normalized.
	VisibleText string

	// Title is the <title> text, if any.
	Title string

	// JSONLD holds each embedded application/ld+json object that parsed
	// cleanly. Arrays are flattened one level.
	JSONLD []map[string]any

	lowerText string
}

// New parses a sample. Malformed markup degrades to whatever text can
// be salvaged; New never fails in a way the caller must handle.
func New(sample model.PageSample) *Page {
	p := &Page{Sample: sample}

	markup := sample.RawMarkup
	if len(markup) > maxMarkupBytes {
		markup = markup[:maxMarkupBytes]
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		zap.L().Debug("page: markup parse failed, salvaging text",
			zap.String("url", sample.URL),
			zap.Error(err),
		)
	} else {
		p.Doc = doc
		p.Title = strings.TrimSpace(doc.Find("title").First().Text())
		p.JSONLD = extractJSONLD(doc)
	}

	p.VisibleText = deriveVisibleText(sample, doc)
	p.lowerText = strings.ToLower(p.VisibleText)
	return p
}

// URL returns the sample's source URL.
func (p *Page) URL() string { return p.Sample.URL }

// LowerText returns the visible text lowercased, computed once.
func (p *Page) LowerText() string { return p.lowerText }

// WordCount returns the number of whitespace-separated tokens in the
// visible text.
func (p *Page) WordCount() int { return len(strings.Fields(p.VisibleText)) }

// ContentHash returns a stable hash of the visible text, used by
// callers for cross-run dedup. The pipeline itself never dedups.
func (p *Page) ContentHash() string {
	h := sha256.Sum256([]byte(p.VisibleText))
	return hex.EncodeToString(h[:])
}

// deriveVisibleText prefers caller-supplied text, then a cleaned DOM
// rendering, then the raw markup with tags stripped crudely.
func deriveVisibleText(sample model.PageSample, doc *goquery.Document) string {
	if t := strings.TrimSpace(sample.VisibleText); t != "" {
		return clampText(normalizeSpace(t))
	}

	if doc != nil {
		clone := doc.Clone()
		clone.Find("script, style, noscript, iframe, svg").Remove()
		return clampText(normalizeSpace(clone.Text()))
	}

	return clampText(normalizeSpace(stripTags(sample.RawMarkup)))
}

// extractJSONLD pulls every parseable ld+json block out of the page.
// Top-level arrays and @graph containers are flattened one level.
func extractJSONLD(doc *goquery.Document) []map[string]any {
	var blocks []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err == nil {
			blocks = append(blocks, flattenGraph(obj)...)
			return
		}

		var arr []map[string]any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, o := range arr {
				blocks = append(blocks, flattenGraph(o)...)
			}
		}
		// Unparseable blocks are skipped; structured lookup just falls
		// through to the next strategy.
	})
	return blocks
}

func flattenGraph(obj map[string]any) []map[string]any {
	graph, ok := obj["@graph"].([]any)
	if !ok {
		return []map[string]any{obj}
	}
	out := []map[string]any{obj}
	for _, item := range graph {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clampText(s string) string {
	if len(s) > maxVisibleTextBytes {
		return s[:maxVisibleTextBytes]
	}
	return s
}

// stripTags is the last-resort text salvage for markup goquery refused
// to parse: drop everything between angle brackets.
func stripTags(markup string) string {
	var b strings.Builder
	b.Grow(len(markup) / 2)
	inTag := false
	for i := 0; i < len(markup); i++ {
		switch c := markup[i]; {
		case c == '<':
			inTag = true
			b.WriteByte(' ')
		case c == '>':
			inTag = false
		case !inTag:
			b.WriteByte(c)
		}
	}
	return b.String()
}
