package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tee-David/realtors-practice-sub002/internal/classifier"
	"github.com/Tee-David/realtors-practice-sub002/internal/config"
	"github.com/Tee-David/realtors-practice-sub002/internal/enhance"
	"github.com/Tee-David/realtors-practice-sub002/internal/extract"
	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/pipeline"
	"github.com/Tee-David/realtors-practice-sub002/internal/quality"
	"github.com/Tee-David/realtors-practice-sub002/pkg/anthropic"
)

func TestCollectSamplesFromFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "listing.html")
	require.NoError(t, os.WriteFile(path, []byte(listingPage), 0644))

	processURL = "https://example.ng/property/1"
	processSite = "naijahomes"
	t.Cleanup(func() { processURL, processSite = "", "" })

	samples, err := collectSamples([]string{path})
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "https://example.ng/property/1", samples[0].URL)
	assert.Equal(t, "naijahomes", samples[0].SiteHint)
	assert.Equal(t, listingPage, samples[0].RawMarkup)
}

func TestCollectSamplesMultipleFilesIgnoreURLFlag(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.html")
	b := filepath.Join(dir, "b.html")
	require.NoError(t, os.WriteFile(a, []byte(listingPage), 0644))
	require.NoError(t, os.WriteFile(b, []byte(categoryPage), 0644))

	processURL = "https://example.ng/property/1"
	t.Cleanup(func() { processURL = "" })

	samples, err := collectSamples([]string{a, b})
	require.NoError(t, err)
	require.Len(t, samples, 2)
	// A single --url cannot apply to several files
	assert.Equal(t, "file://"+a, samples[0].URL)
	assert.Equal(t, "file://"+b, samples[1].URL)
}

func TestReadBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	lines := `{"url":"https://example.ng/property/1","raw_markup":"<html><body><h1>3 Bedroom Flat</h1></body></html>","site_hint":"naijahomes"}

{"url":"https://example.ng/property/2","visible_text":"2 Bedroom Flat in Yaba. Price: N30,000,000."}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))

	samples, err := readBatch(path)
	require.NoError(t, err)
	require.Len(t, samples, 2, "blank lines are skipped")
	assert.Equal(t, "https://example.ng/property/1", samples[0].URL)
	assert.Equal(t, "naijahomes", samples[0].SiteHint)
	assert.Contains(t, samples[1].VisibleText, "Yaba")
}

func TestReadBatchBadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{broken\n"), 0644))

	_, err := readBatch(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestCollectSamplesMissingFile(t *testing.T) {
	_, err := collectSamples([]string{filepath.Join(t.TempDir(), "nope.html")})
	assert.Error(t, err)
}

// deferredBatchClient scripts the full batch lifecycle with one
// succeeded result for the first submitted item.
type deferredBatchClient struct {
	submitted int
}

func (c *deferredBatchClient) CreateMessage(context.Context, anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	return &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{Type: "text", Text: "{}"}}}, nil
}

func (c *deferredBatchClient) CreateBatch(_ context.Context, req anthropic.BatchRequest) (*anthropic.BatchResponse, error) {
	c.submitted = len(req.Requests)
	return &anthropic.BatchResponse{ID: "batch-1", ProcessingStatus: "in_progress"}, nil
}

func (c *deferredBatchClient) GetBatch(_ context.Context, id string) (*anthropic.BatchResponse, error) {
	return &anthropic.BatchResponse{ID: id, ProcessingStatus: "ended"}, nil
}

func (c *deferredBatchClient) GetBatchResults(context.Context, string) (anthropic.BatchResultIterator, error) {
	return &singleResultIterator{item: anthropic.BatchResultItem{
		CustomID: "enhance-0",
		Type:     "succeeded",
		Message: &anthropic.MessageResponse{Content: []anthropic.ContentBlock{{
			Type: "text",
			Text: `{"property_type":"duplex","area":"Lekki Phase 1","summary":"A detached duplex in Lekki."}`,
		}}},
	}}, nil
}

type singleResultIterator struct {
	item anthropic.BatchResultItem
	done bool
}

func (it *singleResultIterator) Next() bool {
	if it.done {
		return false
	}
	it.done = true
	return true
}

func (it *singleResultIterator) Item() anthropic.BatchResultItem { return it.item }
func (it *singleResultIterator) Err() error                      { return nil }
func (it *singleResultIterator) Close() error                    { return nil }

func TestProcessWithBatchEnhance(t *testing.T) {
	prev := cfg
	cfg = &config.Config{Pipeline: config.PipelineConfig{Workers: 2}}
	t.Cleanup(func() { cfg = prev })

	client := &deferredBatchClient{}
	gaz := gazetteer.Default()
	enh := enhance.NewLLM(client, "", gaz)
	pl := pipeline.New(
		classifier.New(0),
		extract.New(locale.Naira(), gaz),
		quality.New(quality.Config{}),
		enh,
	)
	env := &pipelineEnv{Pipeline: pl, Enhancer: enh}

	samples := []model.PageSample{
		{URL: "https://example.ng/property/5-bedroom-detached-duplex-lekki-98765", RawMarkup: listingPage},
		{URL: "https://example.ng/property-for-sale/lagos/?page=2", RawMarkup: categoryPage},
	}
	records := processWithBatchEnhance(context.Background(), env, samples)

	require.Len(t, records, 2)
	require.True(t, records[0].Accepted())
	assert.Equal(t, 1, client.submitted, "only the accepted record is batch-enhanced")

	require.NotNil(t, records[0].Enhancement)
	assert.Equal(t, enhance.SourceLLM, records[0].Enhancement.Source)
	assert.Equal(t, "duplex", records[0].Enhancement.PropertyType)

	assert.False(t, records[1].Accepted())
	assert.Nil(t, records[1].Enhancement)
}

func TestProcessWithBatchEnhanceNeedsLLM(t *testing.T) {
	prev := cfg
	cfg = &config.Config{Pipeline: config.PipelineConfig{Workers: 2}}
	t.Cleanup(func() { cfg = prev })

	gaz := gazetteer.Default()
	enh := enhance.NewPattern(gaz)
	pl := pipeline.New(
		classifier.New(0),
		extract.New(locale.Naira(), gaz),
		quality.New(quality.Config{}),
		enh,
	)
	env := &pipelineEnv{Pipeline: pl, Enhancer: enh}

	samples := []model.PageSample{
		{URL: "https://example.ng/property/5-bedroom-detached-duplex-lekki-98765", RawMarkup: listingPage},
	}
	records := processWithBatchEnhance(context.Background(), env, samples)

	// Falls back to inline processing with the configured enhancer.
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Enhancement)
	assert.Equal(t, enhance.SourcePattern, records[0].Enhancement.Source)
}
