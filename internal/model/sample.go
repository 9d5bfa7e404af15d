// Package model defines the data types shared across the listing
// intelligence pipeline: page samples in, normalized records out.
package model

// PageSample is the immutable input to the pipeline: one fetched page.
// The pipeline never mutates a sample; VisibleText is derived from
// RawMarkup when the fetcher did not supply it.
type PageSample struct {
	URL         string `json:"url"`
	RawMarkup   string `json:"raw_markup"`
	VisibleText string `json:"visible_text,omitempty"`
	// SiteHint identifies the source site when known. It is only ever a
	// weak prior for the URL-shape signal, never required.
	SiteHint string `json:"site_hint,omitempty"`
}

// ClassifierSignal is a single named feature computed from a page.
// Boolean signals are encoded as 0 or 1.
type ClassifierSignal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// ClassificationVerdict is the category-vs-listing decision for a page.
type ClassificationVerdict struct {
	IsCategoryPage      bool               `json:"is_category_page"`
	Confidence          float64            `json:"confidence"`
	ContributingSignals map[string]float64 `json:"contributing_signals"`
}
