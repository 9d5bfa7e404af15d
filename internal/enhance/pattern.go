package enhance

import (
	"context"
	"sort"
	"strings"

	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
)

// amenityTaxonomy groups amenity keywords into the three reporting
// categories. Matching is case-insensitive substring on visible text.
var amenityTaxonomy = map[string][]string{
	"security": {
		"gated estate", "24 hours security", "24hrs security", "security post",
		"cctv", "perimeter fence", "gatehouse", "uniformed security",
		"estate security", "interlocked compound",
	},
	"utilities": {
		"borehole", "water treatment", "steady water", "solar",
		"inverter", "generator", "dedicated transformer", "prepaid meter",
		"air conditioning", "fitted kitchen", "water heater", "elevator",
	},
	"recreational": {
		"swimming pool", "gym", "garden", "playground", "cinema",
		"tennis court", "basketball court", "rooftop terrace", "clubhouse",
		"bq", "boys quarters", "balcony",
	},
}

// propertyTypes is the closed classification set, checked in order so
// the more specific types win over the catch-alls.
var propertyTypes = []struct {
	name     string
	keywords []string
}{
	{"duplex", []string{"duplex", "semi-detached", "fully detached", "terrace house", "terraced house", "townhouse"}},
	{"bungalow", []string{"bungalow"}},
	{"apartment", []string{"apartment", "flat", "maisonette", "penthouse", "studio", "mini flat", "self contain"}},
	{"office", []string{"office space", "office complex", "workspace", "co-working"}},
	{"commercial", []string{"commercial", "shop", "warehouse", "plaza", "retail", "filling station", "hotel"}},
	{"land", []string{"plot of land", "land for sale", "acres of land", "sqm of land", "dry land", "c of o land"}},
}

// Amenities scans text for known amenity keywords and returns the hits
// grouped by category, each keyword at most once, sorted for
// deterministic output.
func Amenities(text string) map[string][]string {
	lower := strings.ToLower(text)

	out := make(map[string][]string)
	for category, keywords := range amenityTaxonomy {
		var hits []string
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits = append(hits, kw)
			}
		}
		if len(hits) > 0 {
			sort.Strings(hits)
			out[category] = hits
		}
	}
	return out
}

// AmenityCount returns the total number of amenity keywords found.
func AmenityCount(text string) int {
	n := 0
	for _, hits := range Amenities(text) {
		n += len(hits)
	}
	return n
}

// ClassifyPropertyType maps text onto the closed property-type set,
// or "" when nothing matches.
func ClassifyPropertyType(text string) string {
	lower := strings.ToLower(text)
	for _, pt := range propertyTypes {
		for _, kw := range pt.keywords {
			if strings.Contains(lower, kw) {
				return pt.name
			}
		}
	}
	return ""
}

// maxSummaryLength is where a description is long enough to summarize.
const maxSummaryLength = 280

// PatternEnhancer is the always-available enhancer: keyword clusters
// for amenities, a closed keyword set for property type and the
// gazetteer for area inference. It needs no external service.
type PatternEnhancer struct {
	gaz *gazetteer.Gazetteer
}

// NewPattern creates a PatternEnhancer. A nil gazetteer disables area
// inference only.
func NewPattern(gaz *gazetteer.Gazetteer) *PatternEnhancer {
	return &PatternEnhancer{gaz: gaz}
}

// Enhance fills the record's enhancement from pattern matches over the
// page text. It cannot fail.
func (e *PatternEnhancer) Enhance(_ context.Context, rec *model.NormalizedRecord, text string) {
	enh := model.Enhancement{
		Source:       SourcePattern,
		PropertyType: ClassifyPropertyType(text),
		Amenities:    Amenities(text),
	}
	if len(enh.Amenities) == 0 {
		enh.Amenities = nil
	}

	if e.gaz != nil {
		if matches := e.gaz.FindAreas(text); len(matches) > 0 {
			enh.InferredArea = matches[0].Area
		}
	}

	if desc := rec.Extraction.StringValue(model.FieldDescription); len(desc) > maxSummaryLength {
		enh.Summary = summarize(desc)
	}

	apply(rec, enh)
}

// summarize cuts a long description to the first sentences that fit
// the summary budget, falling back to a word-boundary truncation.
func summarize(desc string) string {
	desc = strings.TrimSpace(desc)

	var b strings.Builder
	for _, sentence := range strings.SplitAfter(desc, ". ") {
		if b.Len()+len(sentence) > maxSummaryLength {
			break
		}
		b.WriteString(sentence)
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		return s
	}

	cut := desc[:maxSummaryLength]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
