package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

// structuredTitle reads the listing name from JSON-LD.
func (e *Extractor) structuredTitle(p *page.Page) (candidate, bool) {
	s, ok := jsonLDString(p.JSONLD, "name", "headline")
	if !ok {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// metaTitle reads og:title, the labeled equivalent for titles.
func (e *Extractor) metaTitle(p *page.Page) (candidate, bool) {
	s := metaContent(p, `meta[property="og:title"]`, `meta[name="twitter:title"]`)
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// headingTitle takes the first h1, the usual place sites put the
// listing headline.
func (e *Extractor) headingTitle(p *page.Page) (candidate, bool) {
	if p.Doc == nil {
		return candidate{}, false
	}
	s := strings.TrimSpace(p.Doc.Find("h1").First().Text())
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// documentTitle is the last resort: the <title> tag with common site
// suffixes trimmed.
func (e *Extractor) documentTitle(p *page.Page) (candidate, bool) {
	s := p.Title
	for _, sep := range []string{" | ", " - ", " – "} {
		if i := strings.Index(s, sep); i > 0 {
			s = s[:i]
		}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: p.Title}, true
}

// structuredDescription reads the description from JSON-LD.
func (e *Extractor) structuredDescription(p *page.Page) (candidate, bool) {
	s, ok := jsonLDString(p.JSONLD, "description")
	if !ok {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// metaDescription reads the meta description tags.
func (e *Extractor) metaDescription(p *page.Page) (candidate, bool) {
	s := metaContent(p, `meta[name="description"]`, `meta[property="og:description"]`)
	if s == "" {
		return candidate{}, false
	}
	return candidate{value: s, raw: s}, true
}

// paragraphDescription takes the longest paragraph-like block, which on
// listing pages is almost always the agent's property description.
func (e *Extractor) paragraphDescription(p *page.Page) (candidate, bool) {
	if p.Doc == nil {
		return candidate{}, false
	}

	longest := ""
	p.Doc.Find("p, [class*='description'], [id*='description']").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) > len(longest) {
			longest = text
		}
	})
	if longest == "" {
		return candidate{}, false
	}

	const maxDescription = 4000
	if len(longest) > maxDescription {
		longest = longest[:maxDescription]
	}
	return candidate{value: longest, raw: longest}, true
}

func metaContent(p *page.Page, selectors ...string) string {
	if p.Doc == nil {
		return ""
	}
	for _, sel := range selectors {
		if content, ok := p.Doc.Find(sel).First().Attr("content"); ok {
			if s := strings.TrimSpace(content); s != "" {
				return s
			}
		}
	}
	return ""
}
