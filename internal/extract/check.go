package extract

import (
	"github.com/Tee-David/realtors-practice-sub002/internal/model"
	"github.com/Tee-David/realtors-practice-sub002/internal/validate"
)

// validateCandidate routes a candidate to its field's plausibility
// check. An implausible candidate must read as a non-match so the
// cascade can keep trying lower-confidence strategies.
func (e *Extractor) validateCandidate(field model.FieldName, cand candidate) validate.Result {
	switch field {
	case model.FieldTitle:
		s, ok := cand.value.(string)
		if !ok {
			return validate.Result{Reason: "title candidate is not a string"}
		}
		return validate.Title(s)

	case model.FieldPrice:
		v, ok := cand.value.(float64)
		if !ok {
			return validate.Result{Reason: "price candidate is not numeric"}
		}
		return validate.Price(v, cand.raw, e.profile)

	case model.FieldBedrooms, model.FieldBathrooms, model.FieldToilets:
		n, ok := cand.value.(int)
		if !ok {
			return validate.Result{Reason: "room count candidate is not an integer"}
		}
		return validate.RoomCount(string(field), n, cand.raw, cand.context)

	case model.FieldLocation:
		s, ok := cand.value.(string)
		if !ok {
			return validate.Result{Reason: "location candidate is not a string"}
		}
		return validate.Location(s, e.gaz)

	case model.FieldDescription:
		s, ok := cand.value.(string)
		if !ok {
			return validate.Result{Reason: "description candidate is not a string"}
		}
		return validate.Description(s)
	}
	return validate.Result{OK: true}
}
