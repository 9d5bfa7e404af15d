package model

// FieldName identifies one of the extraction targets.
type FieldName string

const (
	FieldTitle       FieldName = "title"
	FieldPrice       FieldName = "price"
	FieldBedrooms    FieldName = "bedrooms"
	FieldBathrooms   FieldName = "bathrooms"
	FieldToilets     FieldName = "toilets"
	FieldLocation    FieldName = "location"
	FieldDescription FieldName = "description"
)

// AllFields returns the extraction targets in cascade order.
func AllFields() []FieldName {
	return []FieldName{
		FieldTitle,
		FieldPrice,
		FieldBedrooms,
		FieldBathrooms,
		FieldToilets,
		FieldLocation,
		FieldDescription,
	}
}

// ExtractionStrategy names the strategy that produced a field value.
type ExtractionStrategy string

const (
	StrategyStructured ExtractionStrategy = "structured"
	StrategyLabeled    ExtractionStrategy = "labeled"
	StrategyPattern    ExtractionStrategy = "pattern"
	StrategyFallback   ExtractionStrategy = "fallback"
	StrategyEnhancer   ExtractionStrategy = "enhancer"
)

// ExtractedField is one successfully extracted field value.
// Value holds a string for text fields, a float64 for price and an int
// for room counts. Raw preserves the matched source text.
type ExtractedField struct {
	Name       FieldName          `json:"name"`
	Value      any                `json:"value"`
	Raw        string             `json:"raw,omitempty"`
	Strategy   ExtractionStrategy `json:"strategy"`
	Confidence float64            `json:"confidence"`
	// Generic marks a value the validator accepted but flagged as too
	// unspecific to score at full weight (e.g. a bare city name).
	Generic bool `json:"generic,omitempty"`
}

// ExtractionResult holds the outcome of the full field cascade for one
// page: the fields that succeeded, in cascade order, and those whose
// strategies were all exhausted.
type ExtractionResult struct {
	Fields  []ExtractedField `json:"fields"`
	Missing []FieldName      `json:"missing,omitempty"`
}

// Field returns the extracted field with the given name, or nil.
func (r *ExtractionResult) Field(name FieldName) *ExtractedField {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

// Has reports whether the field was extracted.
func (r *ExtractionResult) Has(name FieldName) bool {
	return r.Field(name) != nil
}

// StringValue returns the field's value as a string, or "" if the field
// is absent or not a string.
func (r *ExtractionResult) StringValue(name FieldName) string {
	f := r.Field(name)
	if f == nil {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}

// IntValue returns the field's value as an int, or (0, false) if absent.
func (r *ExtractionResult) IntValue(name FieldName) (int, bool) {
	f := r.Field(name)
	if f == nil {
		return 0, false
	}
	switch v := f.Value.(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// FloatValue returns the field's value as a float64, or (0, false) if absent.
func (r *ExtractionResult) FloatValue(name FieldName) (float64, bool) {
	f := r.Field(name)
	if f == nil {
		return 0, false
	}
	switch v := f.Value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
