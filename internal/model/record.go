package model

import "time"

// QualityVerdict is the accept/reject decision for an extracted record.
type QualityVerdict struct {
	Score            int      `json:"score"`
	Accepted         bool     `json:"accepted"`
	RejectionReasons []string `json:"rejection_reasons,omitempty"`
	Warnings         []string `json:"warnings,omitempty"`
}

// Enhancement holds the optional NLP-derived additions to a record.
// Enhancements only ever fill absent fields or append to generic ones;
// they never replace a deterministic value.
type Enhancement struct {
	PropertyType string              `json:"property_type,omitempty"`
	InferredArea string              `json:"inferred_area,omitempty"`
	Amenities    map[string][]string `json:"amenities,omitempty"`
	Summary      string              `json:"summary,omitempty"`
	Source       string              `json:"source"` // "llm" or "pattern"
}

// NormalizedRecord is the final pipeline output for one page. It is the
// only artifact handed to the persistence layer; the pipeline retains
// no reference after handoff.
type NormalizedRecord struct {
	ID             string                `json:"id,omitempty"`
	URL            string                `json:"url"`
	SiteHint       string                `json:"site_hint,omitempty"`
	ContentHash    string                `json:"content_hash"`
	Classification ClassificationVerdict `json:"classification"`
	Extraction     ExtractionResult      `json:"extraction"`
	Quality        QualityVerdict        `json:"quality"`
	Enhancement    *Enhancement          `json:"enhancement,omitempty"`
	ProcessedAt    time.Time             `json:"processed_at,omitempty"`
}

// Accepted reports whether the record cleared the quality gate.
func (r *NormalizedRecord) Accepted() bool {
	return r.Quality.Accepted
}

// Rejection carries the URL and reasons for a record that failed the
// quality gate, for logging and metrics.
type Rejection struct {
	URL        string    `json:"url"`
	Score      int       `json:"score"`
	Reasons    []string  `json:"reasons"`
	RejectedAt time.Time `json:"rejected_at,omitempty"`
}

// RejectionOf builds a Rejection from a rejected record.
func RejectionOf(rec *NormalizedRecord) Rejection {
	return Rejection{
		URL:     rec.URL,
		Score:   rec.Quality.Score,
		Reasons: rec.Quality.RejectionReasons,
	}
}
