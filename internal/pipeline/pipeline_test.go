package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tee-David/realtors-practice-sub002/internal/classifier"
	"github.com/Tee-David/realtors-practice-sub002/internal/enhance"
	"github.com/Tee-David/realtors-practice-sub002/internal/extract"
	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/quality"
)

func newPipeline(enh enhance.Enhancer) *Pipeline {
	gaz := gazetteer.Default()
	return New(
		classifier.New(0),
		extract.New(locale.Naira(), gaz),
		quality.New(quality.Config{}),
		enh,
	)
}

const categoryMarkup = `<!doctype html>
<html><head><title>Property for Sale in Lagos | NaijaHomes</title></head>
<body>
<div class="results">
  <div class="listing-card"><a href="/p/1">4 Bedroom Duplex in Lekki Phase 1 Lagos</a> ₦85,000,000</div>
  <div class="listing-card"><a href="/p/2">3 Bedroom Flat in Ikeja GRA for sale now</a> ₦45,000,000</div>
  <div class="listing-card"><a href="/p/3">5 Bedroom Detached House in Ikoyi Lagos</a> ₦250,000,000</div>
  <div class="listing-card"><a href="/p/4">2 Bedroom Apartment in Yaba close to tech hub</a> ₦30,000,000</div>
  <div class="listing-card"><a href="/p/5">Half plot of land in Ajah with gazette title</a> ₦15,000,000</div>
</div>
<p>Showing 1 - 20 of 340</p>
<ul class="pagination">
  <li><a href="?page=1">1</a></li>
  <li><a href="?page=2">2</a></li>
  <li><a href="?page=3">3</a></li>
  <li><a href="?page=2">Next</a></li>
</ul>
</body></html>`

const listingMarkup = `<!doctype html>
<html><head><title>5 Bedroom Detached Duplex in Lekki | NaijaHomes</title></head>
<body>
<h1>5 Bedroom Detached Duplex in Lekki</h1>
<img src="/photos/front.jpg" alt="front view">
<div class="details">
  Price: ₦85,000,000
  Bedrooms: 4
  Bathrooms: 5
</div>
<p>This beautifully finished detached duplex sits in a gated estate with a
swimming pool, a fitted kitchen and 24 hours security. The compound is fully
interlocked with ample parking for four cars. Contact the agent on
0803 555 1212 to arrange an inspection at your convenience.</p>
</body></html>`

func TestProcessCategoryPage(t *testing.T) {
	pl := newPipeline(nil)

	rec := pl.Process(context.Background(), model.PageSample{
		URL:       "https://example.ng/property-for-sale/lagos/?page=2",
		RawMarkup: categoryMarkup,
	})

	assert.True(t, rec.Classification.IsCategoryPage)
	assert.False(t, rec.Accepted())
	assert.Equal(t, 0, rec.Quality.Score)
	require.NotEmpty(t, rec.Quality.RejectionReasons)
	assert.Equal(t, "category page detected", rec.Quality.RejectionReasons[0])
}

func TestProcessLabeledListing(t *testing.T) {
	pl := newPipeline(nil)

	rec := pl.Process(context.Background(), model.PageSample{
		URL:       "https://example.ng/property/5-bedroom-detached-duplex-lekki-98765",
		RawMarkup: listingMarkup,
	})

	assert.False(t, rec.Classification.IsCategoryPage)
	assert.True(t, rec.Accepted())
	assert.GreaterOrEqual(t, rec.Quality.Score, 90)

	for _, name := range []model.FieldName{model.FieldPrice, model.FieldBedrooms, model.FieldBathrooms} {
		f := rec.Extraction.Field(name)
		require.NotNil(t, f, name)
		assert.Equal(t, model.StrategyLabeled, f.Strategy, name)
	}

	price, _ := rec.Extraction.FloatValue(model.FieldPrice)
	assert.Equal(t, 85_000_000.0, price)
}

func TestProcessPriceOnRequest(t *testing.T) {
	pl := newPipeline(nil)

	markup := `<!doctype html>
<html><head><title>5 Bedroom Mansion in Maitama | NaijaHomes</title></head>
<body>
<h1>5 Bedroom Mansion in Maitama</h1>
<img src="/photos/1.jpg">
<div class="details">
  Price: On Request
  Bedrooms: 5
  Bathrooms: 6
</div>
<p>An exquisite mansion on a quiet crescent in Maitama with a private cinema,
a heated swimming pool, a fitted kitchen and 24 hours security. The property
stands on 1200 sqm of landscaped grounds with a rooftop terrace.</p>
</body></html>`

	rec := pl.Process(context.Background(), model.PageSample{
		URL:       "https://example.ng/property/5-bedroom-mansion-maitama-44321",
		RawMarkup: markup,
	})

	assert.False(t, rec.Extraction.Has(model.FieldPrice), "sentinel price must be absent, never zero")
	assert.Contains(t, rec.Extraction.Missing, model.FieldPrice)
	assert.True(t, rec.Accepted(), "strong record clears the threshold without a price")
	assert.Contains(t, rec.Quality.Warnings, "price missing or implausible")
}

func TestProcessPhoneShapedBathroomCandidate(t *testing.T) {
	pl := newPipeline(nil)

	markup := `<!doctype html>
<html><head><title>3 Bedroom Flat in Surulere | NaijaHomes</title></head>
<body>
<h1>3 Bedroom Flat in Surulere</h1>
<img src="/photos/1.jpg">
<div class="details">
  Price: ₦45,000,000
  Bedrooms: 3
  Bathrooms: 0803 555 1212
</div>
<p>A well maintained flat on a tarred street in Surulere with a fitted
kitchen, prepaid meter and ample parking within a secured compound close
to the national stadium and major road networks.</p>
</body></html>`

	rec := pl.Process(context.Background(), model.PageSample{
		URL:       "https://example.ng/property/3-bedroom-flat-surulere-77001",
		RawMarkup: markup,
	})

	assert.False(t, rec.Extraction.Has(model.FieldBathrooms), "phone digits must never become a count")
	assert.Contains(t, rec.Extraction.Missing, model.FieldBathrooms)

	beds, ok := rec.Extraction.IntValue(model.FieldBedrooms)
	require.True(t, ok)
	assert.Equal(t, 3, beds)
}

const genericTitleMarkup = `<!doctype html>
<html><head><title>Property in Lagos</title></head>
<body>
<h1>Property in Lagos</h1>
<img src="/photos/1.jpg">
<div class="details">
  Price: ₦60,000,000
  Bedrooms: 4
  Bathrooms: 4
</div>
<p>This home sits inside a gated estate in Lekki with a swimming pool, a
borehole and 24 hours security. Buyers enjoy quick access to the expressway
and the new commercial corridor along the coast road.</p>
</body></html>`

func genericTitleSample() model.PageSample {
	return model.PageSample{
		URL:       "https://example.ng/property/lagos-home-55210",
		RawMarkup: genericTitleMarkup,
	}
}

func TestProcessGenericTitleWithEnhancer(t *testing.T) {
	pl := newPipeline(enhance.NewPattern(gazetteer.Default()))

	rec := pl.Process(context.Background(), genericTitleSample())

	require.True(t, rec.Accepted())
	title := rec.Extraction.Field(model.FieldTitle)
	require.NotNil(t, title)
	assert.Equal(t, "Property in Lagos – Lekki", title.Value)
	require.NotNil(t, rec.Enhancement)
	assert.Equal(t, "Lekki", rec.Enhancement.InferredArea)
}

func TestProcessGenericTitleWithoutEnhancer(t *testing.T) {
	pl := newPipeline(nil)

	rec := pl.Process(context.Background(), genericTitleSample())

	require.True(t, rec.Accepted())
	title := rec.Extraction.Field(model.FieldTitle)
	require.NotNil(t, title)
	assert.Equal(t, "Property in Lagos", title.Value)
	assert.True(t, title.Generic)
	assert.Contains(t, rec.Quality.Warnings, "title is a generic placeholder")
	assert.Nil(t, rec.Enhancement)
}

func TestProcessDeterministic(t *testing.T) {
	pl := newPipeline(nil)
	sample := model.PageSample{
		URL:       "https://example.ng/property/5-bedroom-detached-duplex-lekki-98765",
		RawMarkup: listingMarkup,
	}

	first := pl.Process(context.Background(), sample)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, pl.Process(context.Background(), sample))
	}
}

func TestProcessRejectionHasReasons(t *testing.T) {
	pl := newPipeline(nil)

	rec := pl.Process(context.Background(), model.PageSample{
		URL:       "https://example.ng/property/empty-00001",
		RawMarkup: "<html><body><p>Coming soon.</p></body></html>",
	})

	assert.False(t, rec.Accepted())
	assert.NotEmpty(t, rec.Quality.RejectionReasons)

	rej := model.RejectionOf(rec)
	assert.Equal(t, rec.URL, rej.URL)
	assert.Equal(t, rec.Quality.RejectionReasons, rej.Reasons)
}

func TestProcessAllPreservesOrder(t *testing.T) {
	pl := newPipeline(nil)

	samples := []model.PageSample{
		{URL: "https://example.ng/property-for-sale/lagos/?page=2", RawMarkup: categoryMarkup},
		{URL: "https://example.ng/property/5-bedroom-detached-duplex-lekki-98765", RawMarkup: listingMarkup},
		{URL: "https://example.ng/property/lagos-home-55210", RawMarkup: genericTitleMarkup},
	}

	records := pl.ProcessAll(context.Background(), samples, 2)
	require.Len(t, records, 3)
	for i, rec := range records {
		require.NotNil(t, rec)
		assert.Equal(t, samples[i].URL, rec.URL)
	}
	assert.False(t, records[0].Accepted())
	assert.True(t, records[1].Accepted())
}

func TestStampAssignsIdentity(t *testing.T) {
	rec := &model.NormalizedRecord{URL: "https://example.ng/property/1"}
	Stamp(rec)

	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.ProcessedAt.IsZero())
}
