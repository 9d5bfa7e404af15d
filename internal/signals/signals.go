// Package signals computes the independent features the page
// classifier combines. Each extractor is a pure function of a parsed
// page and returns a value in [0,1] where 1 reads as "looks like a
// category page" and 0 as "looks like a single listing".
package signals

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

// Signal names. The classifier reports these in ContributingSignals.
const (
	SignalURLShape         = "urlShape"
	SignalLinkDensity      = "linkDensity"
	SignalPagination       = "paginationMarkers"
	SignalRepetition       = "repetition"
	SignalStructuredMarkup = "structuredMarkup"
	SignalDataRichness     = "dataRichness"
)

// categoryPathSegments are URL path segments that mark search/index
// pages across the sites this system ingests.
var categoryPathSegments = map[string]bool{
	"for-sale":    true,
	"for-rent":    true,
	"search":      true,
	"listings":    true,
	"properties":  true,
	"houses":      true,
	"flats":       true,
	"apartments":  true,
	"lands":       true,
	"shortlet":    true,
	"commercial":  true,
	"property-for-sale": true,
	"property-for-rent": true,
}

// listingCountParams are query parameters that only appear on paginated
// result pages.
var listingCountParams = []string{"page", "p", "pagenum", "offset", "start"}

// sitePrior holds per-portal URL conventions. A recognized site hint is
// only ever a weak nudge on top of the generic path analysis.
type sitePrior struct {
	category *regexp.Regexp
	listing  *regexp.Regexp
}

var sitePriors = map[string]sitePrior{
	"propertypro": {
		category: regexp.MustCompile(`(?i)/(?:for-sale|for-rent|shortlet)(?:/|$)`),
		listing:  regexp.MustCompile(`(?i)-\d{5,}/?$`),
	},
	"privateproperty": {
		category: regexp.MustCompile(`(?i)/property-for-(?:sale|rent)(?:/|$)`),
		listing:  regexp.MustCompile(`(?i)/listing(?:s)?/[a-z0-9-]+-\d+`),
	},
	"npc": {
		category: regexp.MustCompile(`(?i)/(?:for-sale|for-rent)/`),
		listing:  regexp.MustCompile(`(?i)/\d{6,}(?:/|$)`),
	},
}

// sitePriorNudge is how far a recognized site convention moves the
// URL-shape score.
const sitePriorNudge = 0.1

// itemIDPattern matches a trailing numeric or hash-like item identifier
// in a URL path, the strongest hint that a URL names one listing.
var itemIDPattern = regexp.MustCompile(`(?:^|[-/])(?:\d{4,}|[a-f0-9]{8,})/?$`)

var (
	// showingOfPattern matches "Showing 1-20 of 340" and variants.
	// Bounded digit runs keep the pattern safe on adversarial input.
	showingOfPattern = regexp.MustCompile(`(?i)showing\s+\d{1,6}\s*(?:-|–|to)\s*\d{1,6}\s+of\s+\d{1,7}`)

	resultsCountPattern = regexp.MustCompile(`(?i)\b\d{1,7}\s+(?:results|properties|listings)\s+(?:found|available)\b`)

	// pricePattern counts price-shaped tokens for the repetition signal.
	pricePattern = regexp.MustCompile(`(?:₦|NGN|N)\s?\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?`)

	bedroomsPattern  = regexp.MustCompile(`(?i)\b\d{1,2}\s*bed(?:room)?s?\b`)
	bathroomsPattern = regexp.MustCompile(`(?i)\b\d{1,2}\s*bath(?:room)?s?\b`)
	toiletsPattern   = regexp.MustCompile(`(?i)\b\d{1,2}\s*toilets?\b`)
	areaSizePattern  = regexp.MustCompile(`(?i)\b\d{2,6}\s*(?:sqm|sq\.?\s?m|square\s+met(?:er|re)s?)\b`)
	addressPattern   = regexp.MustCompile(`(?i)\b(?:street|road|avenue|close|crescent|drive|estate|phase)\b`)
)

// listingSchemaTypes are JSON-LD @type values that describe one item.
var listingSchemaTypes = map[string]bool{
	"product":                true,
	"offer":                  true,
	"house":                  true,
	"apartment":              true,
	"residence":              true,
	"singlefamilyresidence":  true,
	"realestatelisting":      true,
	"accommodation":          true,
}

// categorySchemaTypes are JSON-LD @type values that describe a list.
var categorySchemaTypes = map[string]bool{
	"itemlist":          true,
	"searchresultspage": true,
	"collectionpage":    true,
}

// All runs every extractor and returns the signal set in a fixed order.
func All(p *page.Page) []model.ClassifierSignal {
	return []model.ClassifierSignal{
		URLShape(p),
		LinkDensity(p),
		PaginationMarkers(p),
		Repetition(p),
		StructuredMarkup(p),
		DataRichness(p),
	}
}

// URLShape scores how category-like the URL path looks: known index
// segments and pagination query parameters push toward 1, a trailing
// item identifier pushes toward 0.
func URLShape(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalURLShape, Value: 0.5}

	u, err := url.Parse(p.URL())
	if err != nil || u.Path == "" {
		return sig
	}

	path := strings.Trim(strings.ToLower(u.Path), "/")
	if itemIDPattern.MatchString(path) {
		sig.Value = clamp01(0.1 + siteHintNudge(p, u.Path))
		return sig
	}

	score := 0.4 // geographic-only paths without an item id lean category
	for _, seg := range strings.Split(path, "/") {
		if categoryPathSegments[seg] {
			score += 0.3
			break
		}
	}
	q := u.Query()
	for _, param := range listingCountParams {
		if q.Has(param) {
			score += 0.3
			break
		}
	}
	sig.Value = clamp01(score + siteHintNudge(p, u.Path))
	return sig
}

// siteHintNudge applies the per-portal URL convention when the sample
// carries a recognized site hint. The hint is a weak prior: at most a
// small nudge, never a verdict.
func siteHintNudge(p *page.Page, path string) float64 {
	prior, ok := sitePriors[strings.ToLower(p.Sample.SiteHint)]
	if !ok {
		return 0
	}
	if prior.listing != nil && prior.listing.MatchString(path) {
		return -sitePriorNudge
	}
	if prior.category != nil && prior.category.MatchString(path) {
		return sitePriorNudge
	}
	return 0
}

// LinkDensity is the ratio of anchor-wrapped text to all visible text.
// Listing indexes are mostly links; detail pages are mostly prose.
func LinkDensity(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalLinkDensity, Value: 0.5}
	if p.Doc == nil {
		return sig
	}

	total := len(p.VisibleText)
	if total == 0 {
		return sig
	}

	anchor := 0
	p.Doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		anchor += len(strings.TrimSpace(s.Text()))
	})

	ratio := float64(anchor) / float64(total)
	sig.Value = clamp01(ratio)
	return sig
}

// PaginationMarkers detects next/previous links, numbered page links
// and "showing X-Y of Z" counters.
func PaginationMarkers(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalPagination, Value: 0}

	hits := 0
	if showingOfPattern.MatchString(p.VisibleText) {
		hits += 2
	}
	if resultsCountPattern.MatchString(p.VisibleText) {
		hits++
	}

	if p.Doc != nil {
		numbered := 0
		p.Doc.Find("a").Each(func(_ int, s *goquery.Selection) {
			text := strings.ToLower(strings.TrimSpace(s.Text()))
			switch {
			case text == "next" || text == "previous" || text == "prev" || text == "»" || text == "«":
				hits++
			case len(text) <= 3 && text != "" && isDigits(text):
				numbered++
			}
		})
		if numbered >= 3 {
			hits += 2
		}
		if p.Doc.Find(".pagination, nav[aria-label*='agination'], ul.pager").Length() > 0 {
			hits += 2
		}
	}

	sig.Value = clamp01(float64(hits) / 4)
	return sig
}

// Repetition counts near-duplicate listing blocks: repeated price
// tokens and repeated card-like elements. Five or more repeats reads
// as a fully category-shaped page.
func Repetition(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalRepetition, Value: 0}

	prices := len(pricePattern.FindAllString(p.VisibleText, 12))

	cards := 0
	if p.Doc != nil {
		cards = p.Doc.Find(
			"[class*='listing-card'], [class*='property-card'], [class*='result-item'], article[class*='listing'], li[class*='property']",
		).Length()
	}

	repeats := prices
	if cards > repeats {
		repeats = cards
	}
	if repeats <= 1 {
		return sig
	}
	sig.Value = clamp01(float64(repeats-1) / 4) // 5+ blocks → 1.0
	return sig
}

// StructuredMarkup inspects embedded JSON-LD: a list schema reads as
// category, a single item schema as listing, anything else is neutral.
func StructuredMarkup(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalStructuredMarkup, Value: 0.5}

	itemCount := 0
	for _, block := range p.JSONLD {
		t, _ := block["@type"].(string)
		t = strings.ToLower(t)
		if categorySchemaTypes[t] {
			sig.Value = 1
			return sig
		}
		if listingSchemaTypes[t] {
			itemCount++
		}
	}
	switch {
	case itemCount == 1:
		sig.Value = 0
	case itemCount > 1:
		sig.Value = 0.8
	}
	return sig
}

// DataRichness counts the distinct property-like fields found anywhere
// on the page. A single richly described item reads as a listing, so
// the category-ness value is the inverse of richness.
func DataRichness(p *page.Page) model.ClassifierSignal {
	sig := model.ClassifierSignal{Name: SignalDataRichness, Value: 0.5}

	distinct := RichnessCount(p)
	sig.Value = clamp01(1 - float64(distinct)/5)
	return sig
}

// RichnessCount returns how many distinct property-like field families
// (price, bedrooms, bathrooms, toilets, area size, address words)
// appear in the visible text. The classifier uses this to refuse a
// listing verdict for content-poor pages.
func RichnessCount(p *page.Page) int {
	count := 0
	for _, re := range []*regexp.Regexp{
		pricePattern, bedroomsPattern, bathroomsPattern,
		toiletsPattern, areaSizePattern, addressPattern,
	} {
		if re.MatchString(p.VisibleText) {
			count++
		}
	}
	return count
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
