// Package gazetteer provides a closed set of known area names used for
// location extraction and disambiguation. The gazetteer is immutable
// after construction and safe for concurrent use.
package gazetteer

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed areas.yaml
var defaultAreas []byte

// Gazetteer maps known sub-areas to their parent city.
type Gazetteer struct {
	areaToCity map[string]string // lowercase area → canonical city
	canonical  map[string]string // lowercase area → canonical area spelling
	cities     map[string]bool   // lowercase city names
}

type areaFile struct {
	Cities map[string][]string `yaml:"cities"` // city → areas
}

// Default returns the gazetteer built from the embedded area list.
func Default() *Gazetteer {
	g, err := parse(defaultAreas)
	if err != nil {
		// The embedded file is compiled in; a parse failure here is a
		// build defect, not a runtime condition.
		panic(err)
	}
	return g
}

// Load reads a gazetteer from a YAML file of the form
// cities: {Lagos: [Lekki, Ikoyi, ...], Abuja: [...]}.
func Load(path string) (*Gazetteer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gazetteer: read %s", path)
	}
	g, err := parse(data)
	if err != nil {
		return nil, eris.Wrapf(err, "gazetteer: parse %s", path)
	}
	return g, nil
}

func parse(data []byte) (*Gazetteer, error) {
	var f areaFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	g := &Gazetteer{
		areaToCity: make(map[string]string),
		canonical:  make(map[string]string),
		cities:     make(map[string]bool),
	}
	for city, areas := range f.Cities {
		g.cities[strings.ToLower(city)] = true
		for _, area := range areas {
			key := strings.ToLower(area)
			g.areaToCity[key] = city
			g.canonical[key] = area
		}
	}
	return g, nil
}

// Match holds one gazetteer hit found in free text.
type Match struct {
	Area string
	City string
}

// FindAreas scans text for known area names and returns each distinct
// hit once, longest names first so that "Victoria Island" wins over a
// hypothetical shorter "Victoria". Matching is case-insensitive on word
// boundaries.
func (g *Gazetteer) FindAreas(text string) []Match {
	lower := strings.ToLower(text)

	var matches []Match
	seen := make(map[string]bool)
	for key, area := range g.canonical {
		if seen[key] {
			continue
		}
		if containsWord(lower, key) {
			seen[key] = true
			matches = append(matches, Match{Area: area, City: g.areaToCity[key]})
		}
	}

	// Longest area name first; ties break alphabetically for determinism.
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0; j-- {
			a, b := matches[j-1], matches[j]
			if len(b.Area) > len(a.Area) || (len(b.Area) == len(a.Area) && b.Area < a.Area) {
				matches[j-1], matches[j] = b, a
			} else {
				break
			}
		}
	}
	return matches
}

// IsCity reports whether the name is a known city (as opposed to a
// sub-area). Used to flag bare-city locations as generic.
func (g *Gazetteer) IsCity(name string) bool {
	return g.cities[strings.ToLower(strings.TrimSpace(name))]
}

// CityOf returns the parent city for a known area, or "".
func (g *Gazetteer) CityOf(area string) string {
	return g.areaToCity[strings.ToLower(strings.TrimSpace(area))]
}

// TruncateAtCity cuts text right after the earliest known city name, so
// a location capture that ran past "..., Lagos" into unrelated prose is
// trimmed back to the address. Returns the input unchanged when no city
// occurs.
func (g *Gazetteer) TruncateAtCity(text string) (string, bool) {
	lower := strings.ToLower(text)

	cut := -1
	for city := range g.cities {
		idx := 0
		for {
			i := strings.Index(lower[idx:], city)
			if i < 0 {
				break
			}
			i += idx
			end := i + len(city)
			before := i == 0 || !isLetter(lower[i-1])
			after := end == len(lower) || !isLetter(lower[end])
			if before && after && (cut == -1 || end < cut) {
				cut = end
			}
			idx = i + 1
		}
	}
	if cut < 0 {
		return text, false
	}
	return text[:cut], true
}

// containsWord reports whether sub occurs in s delimited by non-letter
// characters on both sides.
func containsWord(s, sub string) bool {
	for start := 0; ; {
		i := strings.Index(s[start:], sub)
		if i < 0 {
			return false
		}
		i += start
		before := i == 0 || !isLetter(s[i-1])
		end := i + len(sub)
		after := end == len(s) || !isLetter(s[end])
		if before && after {
			return true
		}
		start = i + 1
		if start >= len(s) {
			return false
		}
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
