package nameyear

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractCaseNameAdversarialForm(t *testing.T) {
	window := "Smith v. Jones, Inc. "
	name := ExtractCaseName(window, len(window))
	require.NotNil(t, name)
	assert.Contains(t, *name, "Smith v. Jones")
}

func TestExtractCaseNameSpecialForms(t *testing.T) {
	tests := []string{
		"In re Smith ",
		"Ex parte Jones ",
		"Matter of Doe ",
		"Estate of Roe ",
	}
	for _, window := range tests {
		name := ExtractCaseName(window, len(window))
		require.NotNil(t, name, "expected a match in %q", window)
	}
}

func TestExtractCaseNameRejectsLowercaseStart(t *testing.T) {
	window := "the plaintiff alleged "
	name := ExtractCaseName(window, len(window))
	assert.Nil(t, name)
}

func TestExtractCaseNameRejectsProceduralOnly(t *testing.T) {
	window := "vacated and remanded "
	name := ExtractCaseName(window, len(window))
	assert.Nil(t, name)
}

func TestExtractCaseNamePicksClosestToCiteStart(t *testing.T) {
	window := "Smith v. Jones discussed Doe v. Roe, which held that "
	name := ExtractCaseName(window, len(window))
	require.NotNil(t, name)
	assert.Contains(t, *name, "Doe v. Roe")
}

func TestExtractYearFromParentheticalGroup(t *testing.T) {
	window := "Smith v. Jones, 1 Wn.2d 1 (W.D. Wash. 2024)."
	citeEnd := strings.Index(window, "1 Wn.2d 1") + len("1 Wn.2d 1")
	year := ExtractYear(window, citeEnd, "")
	require.NotNil(t, year)
	assert.Equal(t, 2024, *year)
}

func TestExtractYearRejectsOutOfRange(t *testing.T) {
	window := "Smith v. Jones (1066)."
	year := ExtractYear(window, len(window), "")
	assert.Nil(t, year)
}
