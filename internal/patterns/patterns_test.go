package patterns

import (
	"testing"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAllRecognizesEachRequiredFamily(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		family citation.ReporterFamily
	}{
		{"us reporter", "see 410 U.S. 113 (1973)", citation.ReporterFamilyUS},
		{"supreme court reporter", "93 S. Ct. 705", citation.ReporterFamilySCt},
		{"federal second", "523 F.2d 1 (9th Cir. 1975)", citation.ReporterFamilyFed},
		{"federal supplement", "1 F. Supp. 2d 1 (D. Mass. 1998)", citation.ReporterFamilyFed},
		{"pacific reporter", "166 P.3d 974", citation.ReporterFamilyPacific},
		{"washington wn2d", "166 Wn.2d 974", citation.ReporterFamilyWashington},
		{"washington wash2d alias", "166 Wash.2d 974", citation.ReporterFamilyWashington},
		{"westlaw", "2020 WL 123456", citation.ReporterFamilyWL},
		{"lexis", "2020 LEXIS 4567", citation.ReporterFamilyLexis},
		{"neutral dash form", "2020-NM-003", citation.ReporterFamilyNeutral},
		{"neutral space form", "2020 ND 12", citation.ReporterFamilyNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindAll(tt.text)
			require.NotEmpty(t, matches, "expected at least one match in %q", tt.text)
			assert.Equal(t, tt.family, matches[0].Family)
		})
	}
}

func TestFindAllResolvesOverlapByLongerSpan(t *testing.T) {
	// Both the "L. Ed. 2d" and the "L. Ed." patterns match at offset 0
	// ("200 L. Ed. 2d 931" and "200 L. Ed. 2"); the longer span must win.
	matches := FindAll("200 L. Ed. 2d 931")
	require.Len(t, matches, 1)
	assert.Equal(t, "200 L. Ed. 2d 931", matches[0].RawText)
}

func TestFindAllDocumentOrder(t *testing.T) {
	text := "first 1 U.S. 1, then later 2 U.S. 2."
	matches := FindAll(text)
	require.Len(t, matches, 2)
	assert.Less(t, matches[0].Start, matches[1].Start)
}

func TestFindAllCapturesNamedGroups(t *testing.T) {
	matches := FindAll("166 Wn.2d 974")
	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, "166", m.Volume)
	assert.Equal(t, "974", m.Page)
	assert.Contains(t, m.Reporter, "Wn")
}

func TestFindAllDeduplicatesSameNormalizedTextAndStart(t *testing.T) {
	matches := FindAll("410 U.S. 113")
	require.Len(t, matches, 1)
}
