// Package locale defines the currency/locale profile consumed by the
// price extraction and validation code. A profile is constructed once
// and passed in explicitly so different locales can run side by side.
package locale

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Profile describes how prices are written for one market: the currency
// symbol and code, the magnitude words that scale a bare number, the
// plausible price bounds, and the sentinel phrases that mean "no price
// published" rather than zero.
type Profile struct {
	CurrencySymbol string   `yaml:"currency_symbol"`
	CurrencyCode   string   `yaml:"currency_code"`
	MinPrice       float64  `yaml:"min_price"`
	MaxPrice       float64  `yaml:"max_price"`
	PriceOnRequest []string `yaml:"price_on_request"`

	// MagnitudeWords maps suffix words to multipliers, e.g. "million"
	// to 1e6. Matching is case-insensitive on whole words.
	MagnitudeWords map[string]float64 `yaml:"magnitude_words"`
}

// Naira returns the default profile for the Nigerian market.
func Naira() Profile {
	return Profile{
		CurrencySymbol: "₦",
		CurrencyCode:   "NGN",
		MinPrice:       100_000,
		MaxPrice:       10_000_000_000,
		PriceOnRequest: []string{
			"price on request",
			"price on application",
			"call for price",
			"contact for price",
			"poa",
		},
		MagnitudeWords: map[string]float64{
			"k":        1e3,
			"thousand": 1e3,
			"m":        1e6,
			"million":  1e6,
			"bn":       1e9,
			"b":        1e9,
			"billion":  1e9,
		},
	}
}

// Load reads a profile from a YAML file. Fields left empty fall back to
// the Naira defaults so partial overrides stay usable.
func Load(path string) (Profile, error) {
	p := Naira()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, eris.Wrapf(err, "locale: read profile %s", path)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, eris.Wrapf(err, "locale: parse profile %s", path)
	}
	return p, nil
}

// Listings write sentinel phrases with arbitrary separators, such as
// "Price: On Request" or "Price - POA". Collapsing separator runs to a
// single space lets the plain-word sentinel list match them all.
var sentinelSeparators = regexp.MustCompile(`[\s:\-–—/|]+`)

// IsPriceOnRequest reports whether the text contains a "no published
// price" sentinel for this profile.
func (p Profile) IsPriceOnRequest(text string) bool {
	t := sentinelSeparators.ReplaceAllString(strings.ToLower(text), " ")
	t = strings.TrimSpace(t)
	for _, s := range p.PriceOnRequest {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}

// Multiplier returns the magnitude multiplier for a suffix word, or 1
// when the word is unknown or empty.
func (p Profile) Multiplier(word string) float64 {
	if word == "" {
		return 1
	}
	if m, ok := p.MagnitudeWords[strings.ToLower(word)]; ok {
		return m
	}
	return 1
}
