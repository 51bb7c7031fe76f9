// Package nameyear locates the case name and decision year belonging to
// a citation within its already-isolated context window (spec §4.4).
package nameyear

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// caseNamePattern matches the closed set of case-name forms: adversarial
// ("X v. Y") and the special forms ("In re ...", "Ex parte ...", etc.).
// It is intentionally permissive about internal punctuation (periods,
// apostrophes, ampersands, hyphens) so corporate suffixes like "Inc."
// or "Ass'n" survive, and restrictive about the leading character so a
// lowercase start (a sentence fragment) never matches.
const capitalizedToken = `[A-Z][A-Za-z.,'&-]*(?:\s+[A-Z][A-Za-z.,'&-]*)*`

var caseNamePattern = regexp.MustCompile(
	`(?:` +
		`(?:In re|Ex parte|Matter of|Estate of)\s+` + capitalizedToken +
		`|` +
		capitalizedToken + `\s+v\.\s+` + capitalizedToken +
		`)`,
)

// proceduralOnly rejects candidates that are purely procedural history
// with no actual party/case name content.
var proceduralOnly = regexp.MustCompile(`(?i)^(vacated|remanded|reversed|affirmed|overruling|affirming)(\s+and\s+(vacated|remanded|reversed|affirmed))*$`)

var yearPattern = regexp.MustCompile(`\b(1[789]\d{2}|20\d{2})\b`)

var parenGroupPattern = regexp.MustCompile(`\([^()]*\)`)

// ExtractCaseName searches backward from citeStart (an offset into
// window, the isolated context for one citation) for the last valid
// case-name candidate whose end does not exceed citeStart, returning
// nil if none is found.
func ExtractCaseName(window string, citeStartInWindow int) *string {
	if citeStartInWindow < 0 || citeStartInWindow > len(window) {
		citeStartInWindow = len(window)
	}
	search := window[:citeStartInWindow]

	matches := caseNamePattern.FindAllStringIndex(search, -1)
	if len(matches) == 0 {
		return nil
	}

	// Closest-to-but-not-exceeding cite_start: last match found wins.
	for i := len(matches) - 1; i >= 0; i-- {
		start, end := matches[i][0], matches[i][1]
		candidate := strings.TrimSpace(search[start:end])
		if candidate == "" {
			continue
		}
		if proceduralOnly.MatchString(candidate) {
			continue
		}
		r := []rune(candidate)
		if len(r) == 0 || !isUpper(r[0]) {
			continue
		}
		return &candidate
	}
	return nil
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// ExtractYear searches for a 4-digit year in the priority order from
// spec §4.4: (1) inside a parenthesised group between citeEnd and the
// next sentence terminator, (2) immediately before the citation volume,
// (3) anywhere in the window.
func ExtractYear(window string, citeEndInWindow int, preVolumeText string) *int {
	tail := ""
	if citeEndInWindow >= 0 && citeEndInWindow <= len(window) {
		tail = window[citeEndInWindow:]
	}
	tail = tail[:sentenceEnd(tail)]
	for _, group := range parenGroupPattern.FindAllString(tail, -1) {
		if y, ok := yearInRange(group); ok {
			return &y
		}
	}

	if y, ok := yearInRange(preVolumeText); ok {
		return &y
	}

	if y, ok := yearInRange(window); ok {
		return &y
	}

	return nil
}

// sentenceEnd returns the index of the first sentence terminator in s
// that is not inside a parenthesised group, or len(s) if none is found.
func sentenceEnd(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '.', '?', '!':
			if depth == 0 {
				return i
			}
		}
	}
	return len(s)
}

func yearInRange(s string) (int, bool) {
	m := yearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	maxYear := time.Now().Year() + 1
	if y < 1700 || y > maxYear {
		return 0, false
	}
	return y, true
}
