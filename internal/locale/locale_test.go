package locale

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNairaProfile(t *testing.T) {
	p := Naira()

	assert.Equal(t, "₦", p.CurrencySymbol)
	assert.Equal(t, "NGN", p.CurrencyCode)
	assert.InDelta(t, 100_000, p.MinPrice, 0.01)
	assert.InDelta(t, 10_000_000_000, p.MaxPrice, 0.01)
}

func TestIsPriceOnRequest(t *testing.T) {
	p := Naira()

	assert.True(t, p.IsPriceOnRequest("Price on Request"))
	assert.True(t, p.IsPriceOnRequest("  CALL FOR PRICE  "))
	assert.True(t, p.IsPriceOnRequest("POA"))
	assert.False(t, p.IsPriceOnRequest("₦85,000,000"))
}

func TestIsPriceOnRequestPunctuatedForms(t *testing.T) {
	p := Naira()

	// Separator punctuation between "price" and the phrase must not
	// defeat the sentinel.
	assert.True(t, p.IsPriceOnRequest("Price: On Request"))
	assert.True(t, p.IsPriceOnRequest("Price - On Application"))
	assert.True(t, p.IsPriceOnRequest("Price – POA"))
	assert.True(t, p.IsPriceOnRequest("price:on request"))
	assert.False(t, p.IsPriceOnRequest("Price: ₦85,000,000"))
}

func TestMultiplier(t *testing.T) {
	p := Naira()

	assert.InDelta(t, 1e6, p.Multiplier("million"), 0.01)
	assert.InDelta(t, 1e6, p.Multiplier("M"), 0.01, "case insensitive")
	assert.InDelta(t, 1e9, p.Multiplier("billion"), 0.01)
	assert.InDelta(t, 1e3, p.Multiplier("k"), 0.01)
	assert.InDelta(t, 1, p.Multiplier(""), 0.01)
	assert.InDelta(t, 1, p.Multiplier("unknown"), 0.01)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	yaml := `currency_symbol: "GH₵"
currency_code: GHS
min_price: 50000
max_price: 50000000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "GHS", p.CurrencyCode)
	assert.InDelta(t, 50_000, p.MinPrice, 0.01)
	// Unset fields keep the Naira defaults
	assert.True(t, p.IsPriceOnRequest("price on request"))
	assert.InDelta(t, 1e6, p.Multiplier("million"), 0.01)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
