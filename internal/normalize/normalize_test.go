package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalResolvesAlias(t *testing.T) {
	assert.Equal(t, "Wash.2d", Canonical("Wn.2d"))
	assert.Equal(t, "Wash.2d", Canonical("Wash.2d"))
	assert.Equal(t, "P.3d", Canonical("P.3d")) // no alias group, unchanged
}

func TestAliasesReturnsWholeFamily(t *testing.T) {
	aliases := Aliases("Wn.2d")
	assert.Contains(t, aliases, "Wash.2d")
	assert.Contains(t, aliases, "Wn.2d")
}

func TestStripRemovesDecorations(t *testing.T) {
	got := Strip("166 Wn.2d 974, 980 (2009)")
	assert.NotContains(t, got, "(2009)")
	assert.NotContains(t, got, ", 980")
}

func TestVariantsIncludesCanonicalAndAliases(t *testing.T) {
	variants := Variants("166", "Wn.2d", "974")
	assert.Contains(t, variants, "166 Wash.2d 974")
	assert.Contains(t, variants, "166 Wn.2d 974")
}

func TestVariantsIncludesOrdinalAlternatives(t *testing.T) {
	variants := Variants("166", "Wn.2d", "974")
	found := false
	for _, v := range variants {
		if v == "166 Wash.2nd 974" || v == "166 Wn.2nd 974" {
			found = true
		}
	}
	assert.True(t, found, "expected an ordinal alternative in %v", variants)
}

func TestVariantsHasNoDuplicates(t *testing.T) {
	variants := Variants("1", "U.S.", "1")
	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
	}
}
