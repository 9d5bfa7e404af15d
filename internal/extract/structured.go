package extract

import (
	"strconv"
	"strings"
)

// Keys probed in JSON-LD blocks for room counts.
var (
	structuredBedroomKeys  = []string{"numberOfBedrooms", "numberOfRooms"}
	structuredBathroomKeys = []string{"numberOfBathroomsTotal", "numberOfFullBathrooms"}
)

// jsonLDString walks the page's JSON-LD blocks for the first non-empty
// string under any of the given keys.
func jsonLDString(blocks []map[string]any, keys ...string) (string, bool) {
	for _, block := range blocks {
		for _, key := range keys {
			if s := asString(block[key]); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// jsonLDNumber walks the page's JSON-LD blocks for the first numeric
// value under any of the given keys. String-encoded numbers count.
func jsonLDNumber(blocks []map[string]any, keys ...string) (float64, bool) {
	for _, block := range blocks {
		for _, key := range keys {
			if n, ok := asNumber(block[key]); ok {
				return n, true
			}
		}
	}
	return 0, false
}

// jsonLDOfferPrice digs into offers objects for a price, the usual
// schema.org shape for listing prices.
func jsonLDOfferPrice(blocks []map[string]any) (float64, string, bool) {
	for _, block := range blocks {
		if n, ok := asNumber(block["price"]); ok {
			return n, asString(block["price"]), true
		}

		offers := block["offers"]
		switch o := offers.(type) {
		case map[string]any:
			if n, ok := asNumber(o["price"]); ok {
				return n, asString(o["price"]), true
			}
		case []any:
			for _, item := range o {
				if m, ok := item.(map[string]any); ok {
					if n, ok := asNumber(m["price"]); ok {
						return n, asString(m["price"]), true
					}
				}
			}
		}
	}
	return 0, "", false
}

// jsonLDAddress assembles a location string from a schema.org address
// object: "streetAddress, addressLocality" with empty parts dropped.
func jsonLDAddress(blocks []map[string]any) (string, bool) {
	for _, block := range blocks {
		addr := block["address"]
		m, ok := addr.(map[string]any)
		if !ok {
			if s := asString(addr); s != "" {
				return s, true
			}
			continue
		}

		var parts []string
		for _, key := range []string{"streetAddress", "addressLocality", "addressRegion"} {
			if s := asString(m[key]); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", "), true
		}
	}
	return "", false
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		cleaned := strings.ReplaceAll(strings.TrimSpace(n), ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
