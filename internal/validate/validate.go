// Package validate implements the per-field plausibility checks used
// inside the extraction cascade and by the quality scorer. Every check
// is a pure predicate returning a human-readable reason on failure.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Tee-David/realtors-practice-sub002/internal/gazetteer"
	"github.com/Tee-David/realtors-practice-sub002/internal/locale"
)

// Room count bounds. Anything outside reads as a parsing artifact, not
// a real property.
const (
	MinRoomCount = 0
	MaxRoomCount = 10
)

// MinTitleLength is the shortest title accepted as meaningful.
const MinTitleLength = 11

// Result is the outcome of one plausibility check.
type Result struct {
	OK     bool
	Reason string
	// Generic marks a value that passed but is too unspecific to score
	// at full weight (bare city location, placeholder-shaped title).
	Generic bool
}

func ok() Result                  { return Result{OK: true} }
func fail(reason string) Result   { return Result{Reason: reason} }
func generic(reason string) Result { return Result{OK: true, Generic: true, Reason: reason} }

var (
	// phonePattern matches phone-shaped digit runs such as
	// "+234 803 555 1212" or "0803-555-1212". Bounded repetition keeps
	// matching linear on adversarial input.
	phonePattern = regexp.MustCompile(`(?:\+?\d{1,4}[\s\-.]?)?(?:\(\d{1,4}\)[\s\-.]?)?\d{3,4}[\s\-.]?\d{3,4}(?:[\s\-.]?\d{2,4})?`)

	// genericTitles are placeholder titles emitted by listing templates.
	genericTitlePattern = regexp.MustCompile(`(?i)^(?:property|house|land|new\s+listing)\s+(?:in|at|for)\s+[a-z\s]{2,30}$`)

	addressShapePattern = regexp.MustCompile(`(?i)\b(?:street|road|avenue|close|crescent|drive|estate|phase|island)\b`)
)

// PhoneShaped reports whether the raw matched text, read in its
// surrounding context, looks like part of a phone number. Room-count
// extraction must treat such matches as non-matches: phone digits are
// the single most common source of corrupted room counts.
func PhoneShaped(raw, context string) bool {
	digits := digitRun(raw)
	if len(digits) >= 7 {
		return true
	}

	// A short number is still suspect when the surrounding text is one
	// long phone-shaped digit group, e.g. "0803 555 1212".
	window := strings.TrimSpace(context)
	for _, m := range phonePattern.FindAllString(window, 8) {
		if len(digitRun(m)) >= 9 && strings.Contains(m, raw) {
			return true
		}
	}
	return false
}

// RoomCount validates a bedroom/bathroom/toilet count.
func RoomCount(field string, n int, raw, context string) Result {
	if PhoneShaped(raw, context) {
		return fail(fmt.Sprintf("%s candidate %q is phone-shaped", field, raw))
	}
	if n < MinRoomCount || n > MaxRoomCount {
		return fail(fmt.Sprintf("%s count %d outside [%d, %d]", field, n, MinRoomCount, MaxRoomCount))
	}
	return ok()
}

// Price validates a price against the locale profile. A "price on
// request" sentinel is a missing value, never a zero price; callers
// check the sentinel before parsing, this rejects the residue.
func Price(v float64, raw string, profile locale.Profile) Result {
	if profile.IsPriceOnRequest(raw) {
		return fail("price is a placeholder sentinel, treated as missing")
	}
	if v <= 0 {
		return fail("price must be strictly positive")
	}
	if v < profile.MinPrice || v > profile.MaxPrice {
		return fail(fmt.Sprintf("price %.0f outside plausible %s range [%.0f, %.0f]",
			v, profile.CurrencyCode, profile.MinPrice, profile.MaxPrice))
	}
	return ok()
}

// Title validates an extracted title. Placeholder-shaped titles are
// accepted but flagged generic so the scorer can warn and the enhancer
// may append detail.
func Title(s string) Result {
	t := strings.TrimSpace(s)
	if len(t) < MinTitleLength {
		return fail(fmt.Sprintf("title %q shorter than %d characters", t, MinTitleLength))
	}
	if genericTitlePattern.MatchString(t) {
		return generic("title is a generic placeholder")
	}
	return ok()
}

// Location validates an extracted location string. A known sub-area is
// fully specific; a bare city name is accepted but generic; anything
// else must at least look address-shaped.
func Location(s string, gaz *gazetteer.Gazetteer) Result {
	t := strings.TrimSpace(s)
	if t == "" {
		return fail("location is empty")
	}

	if gaz != nil {
		if gaz.IsCity(t) {
			return generic("location is a bare city name")
		}
		if len(gaz.FindAreas(t)) > 0 {
			return ok()
		}
	}

	if addressShapePattern.MatchString(t) || strings.Contains(t, ",") {
		return ok()
	}
	if len(t) < 3 {
		return fail(fmt.Sprintf("location %q too short to be an area", t))
	}
	return generic("location matches no known area")
}

// Description validates an extracted description.
func Description(s string) Result {
	if len(strings.TrimSpace(s)) < 40 {
		return fail("description too short to be meaningful")
	}
	return ok()
}

func digitRun(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
