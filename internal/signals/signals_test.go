package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/page"
)

func newPage(url, markup string) *page.Page {
	return page.New(model.PageSample{URL: url, RawMarkup: markup})
}

func TestURLShape(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want float64
	}{
		{"category segment and page param", "https://example.ng/property-for-sale/lagos/?page=2", 1.0},
		{"category segment only", "https://example.ng/for-sale/lekki", 0.7},
		{"trailing item id", "https://example.ng/property/4-bedroom-duplex-98765", 0.1},
		{"hash-like id", "https://example.ng/listing/a1b2c3d4e5", 0.1},
		{"geographic path", "https://example.ng/lagos/lekki", 0.4},
		{"empty path", "https://example.ng", 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sig := URLShape(newPage(tc.url, "<html></html>"))
			assert.InDelta(t, tc.want, sig.Value, 0.001)
		})
	}
}

func TestURLShapeSiteHintIsWeakPrior(t *testing.T) {
	url := "https://propertypro.ng/for-rent/lagos"
	plain := URLShape(newPage(url, "<html></html>"))

	hinted := URLShape(page.New(model.PageSample{
		URL: url, RawMarkup: "<html></html>", SiteHint: "propertypro",
	}))
	assert.InDelta(t, plain.Value+0.1, hinted.Value, 0.001, "a recognized convention nudges, never decides")

	unknown := URLShape(page.New(model.PageSample{
		URL: url, RawMarkup: "<html></html>", SiteHint: "some-new-site",
	}))
	assert.InDelta(t, plain.Value, unknown.Value, 0.001, "unrecognized hints change nothing")
}

func TestLinkDensityHighForLinkFarm(t *testing.T) {
	markup := `<html><body>
	<a href="/p/1">3 Bedroom Flat in Yaba for sale now</a>
	<a href="/p/2">4 Bedroom Duplex in Lekki brand new</a>
	<a href="/p/3">2 Bedroom Flat in Surulere serviced</a>
	</body></html>`

	sig := LinkDensity(newPage("https://example.ng/for-sale", markup))
	assert.Greater(t, sig.Value, 0.9, "all visible text is anchor text")
}

func TestLinkDensityLowForProse(t *testing.T) {
	markup := `<html><body>
	<a href="/">Home</a>
	<p>This newly built duplex sits on a full plot in a serene gated estate
	with ample parking, a fitted kitchen and modern finishing throughout the
	entire property, close to major access roads and shopping.</p>
	</body></html>`

	sig := LinkDensity(newPage("https://example.ng/property/1", markup))
	assert.Less(t, sig.Value, 0.2)
}

func TestPaginationMarkers(t *testing.T) {
	markup := `<html><body>
	<h2>Showing 1 - 20 of 340 results</h2>
	<ul class="pagination">
	<li><a href="?page=1">1</a></li><li><a href="?page=2">2</a></li>
	<li><a href="?page=3">3</a></li><li><a href="?page=4">Next</a></li>
	</ul>
	</body></html>`

	sig := PaginationMarkers(newPage("https://example.ng/for-sale", markup))
	assert.InDelta(t, 1.0, sig.Value, 0.001, "counter, numbered links, container and next all present")
}

func TestPaginationMarkersAbsent(t *testing.T) {
	sig := PaginationMarkers(newPage("https://example.ng/property/1",
		`<html><body><p>A single property with no pagination at all.</p></body></html>`))
	assert.Zero(t, sig.Value)
}

func TestRepetitionCountsPriceTokens(t *testing.T) {
	markup := `<html><body>
	<div>₦45,000,000</div><div>₦85,000,000</div><div>₦30,000,000</div>
	<div>₦150,000,000</div><div>₦25,000,000</div>
	</body></html>`

	sig := Repetition(newPage("https://example.ng/for-sale", markup))
	assert.InDelta(t, 1.0, sig.Value, 0.001, "five price tokens read as fully category-shaped")
}

func TestRepetitionSinglePriceIsZero(t *testing.T) {
	sig := Repetition(newPage("https://example.ng/property/1",
		`<html><body><p>Price: ₦85,000,000</p></body></html>`))
	assert.Zero(t, sig.Value)
}

func TestRepetitionCountsCards(t *testing.T) {
	markup := `<html><body>
	<div class="listing-card">a</div><div class="listing-card">b</div>
	<div class="listing-card">c</div><div class="listing-card">d</div>
	<div class="listing-card">e</div>
	</body></html>`

	sig := Repetition(newPage("https://example.ng/for-sale", markup))
	assert.InDelta(t, 1.0, sig.Value, 0.001)
}

func TestStructuredMarkup(t *testing.T) {
	cases := []struct {
		name   string
		jsonld string
		want   float64
	}{
		{"item list", `{"@type":"ItemList"}`, 1.0},
		{"single product", `{"@type":"Product","name":"Duplex"}`, 0.0},
		{"no structured data", ``, 0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			markup := "<html><head>"
			if tc.jsonld != "" {
				markup += `<script type="application/ld+json">` + tc.jsonld + `</script>`
			}
			markup += "</head><body></body></html>"

			sig := StructuredMarkup(newPage("https://example.ng/x", markup))
			assert.InDelta(t, tc.want, sig.Value, 0.001)
		})
	}
}

func TestDataRichnessInvertsFieldCount(t *testing.T) {
	rich := newPage("https://example.ng/property/1", `<html><body>
	<p>Price: ₦85,000,000. 4 bedrooms, 5 bathrooms, 5 toilets, 450 sqm on
	Admiralty Road in a gated estate.</p></body></html>`)

	sig := DataRichness(rich)
	assert.Less(t, sig.Value, 0.1, "many distinct fields read as a listing")
	assert.GreaterOrEqual(t, RichnessCount(rich), 5)

	poor := newPage("https://example.ng/about", `<html><body><p>About our agency.</p></body></html>`)
	assert.InDelta(t, 1.0, DataRichness(poor).Value, 0.001)
	assert.Zero(t, RichnessCount(poor))
}

func TestAllReturnsFixedOrder(t *testing.T) {
	sigs := All(newPage("https://example.ng/x", "<html></html>"))
	require.Len(t, sigs, 6)

	names := make([]string, len(sigs))
	for i, s := range sigs {
		names[i] = s.Name
		assert.GreaterOrEqual(t, s.Value, 0.0)
		assert.LessOrEqual(t, s.Value, 1.0)
	}
	assert.Equal(t, []string{
		SignalURLShape, SignalLinkDensity, SignalPagination,
		SignalRepetition, SignalStructuredMarkup, SignalDataRichness,
	}, names)
}
