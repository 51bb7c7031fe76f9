package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractContextStripsSignalWords(t *testing.T) {
	text := "See Smith v. Jones, 166 Wn.2d 974 (2009)."
	citeStart := strings.Index(text, "166 Wn.2d 974")
	citeEnd := citeStart + len("166 Wn.2d 974")

	got := ExtractContext(text, citeStart, citeEnd, nil)
	assert.NotContains(t, strings.ToLower(got), "see smith")
	assert.Contains(t, got, "Smith v. Jones")
}

func TestExtractContextDoesNotBleedNeighbouringCitation(t *testing.T) {
	text := "Smith v. Jones, 1 Wn.2d 1 (1990); Doe v. Roe, 2 Wn.2d 2 (1991)."
	firstStart := strings.Index(text, "1 Wn.2d 1")
	firstEnd := firstStart + len("1 Wn.2d 1")
	secondStart := strings.Index(text, "2 Wn.2d 2")
	secondEnd := secondStart + len("2 Wn.2d 2")

	spans := []Span{
		{Start: firstStart, End: firstEnd},
		{Start: secondStart, End: secondEnd},
	}

	firstContext := ExtractContext(text, firstStart, firstEnd, spans)
	secondContext := ExtractContext(text, secondStart, secondEnd, spans)

	assert.NotContains(t, firstContext, "2 Wn.2d 2")
	assert.NotContains(t, secondContext, "1 Wn.2d 1")
}

func TestExtractContextEmptyWhenOnlySignalWordsRemain(t *testing.T) {
	text := "Id. 1 Wn.2d 1"
	citeStart := strings.Index(text, "1 Wn.2d 1")
	citeEnd := citeStart + len("1 Wn.2d 1")

	got := ExtractContext(text, citeStart, citeEnd, nil)
	assert.Equal(t, "", strings.TrimSpace(got))
}

func TestIsolateRespectsWindowBounds(t *testing.T) {
	padding := strings.Repeat("x", 1000)
	text := padding + " 1 Wn.2d 1 " + padding
	citeStart := strings.Index(text, "1 Wn.2d 1")
	citeEnd := citeStart + len("1 Wn.2d 1")

	lo, hi := Isolate(text, citeStart, citeEnd, nil)
	assert.GreaterOrEqual(t, lo, citeStart-WindowBeforeChars)
	assert.LessOrEqual(t, hi, citeEnd+WindowAfterChars)
}

func TestTerminatorDetectionIgnoresParentheticalPeriods(t *testing.T) {
	text := "In the matter (decided Jan. 5, 1990) the court held that 1 Wn.2d 1 applies."
	citeStart := strings.Index(text, "1 Wn.2d 1")
	citeEnd := citeStart + len("1 Wn.2d 1")

	got := ExtractContext(text, citeStart, citeEnd, nil)
	assert.Contains(t, got, "the court held that")
}
