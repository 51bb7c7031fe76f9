// Package context implements the strict context isolator (spec §4.3):
// for a citation at a known offset, it computes the window of text that
// the case-name/year extractor is allowed to see, guaranteeing that
// window never contains the textual representation of a neighbouring
// citation and never leaks a signal word into the extracted name.
package context

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/caselaw/casestrainer/internal/patterns"
)

// WindowBeforeChars bounds how far before a citation's start the
// isolator will look for context (spec §4.3 rule 1).
const WindowBeforeChars = 400

// WindowAfterChars bounds how far after a citation's end the isolator
// will look for context (spec §4.3 rule 2). Numerically equal to the
// default of internal/cluster's Config.ProximityChars by spec
// coincidence, not by shared definition — see DESIGN.md's resolution of
// the 200-vs-400 open question.
const WindowAfterChars = 200

// signalWords is the closed set from spec §4.3 rule 4, ordered longest
// first so greedy stripping prefers the longer phrase (e.g. "But see"
// over "See").
var signalWords = []string{
	"For example, in",
	"But see", "But cf.",
	"See also",
	"E.g.", "Cf.", "Accord", "Id.", "Contra",
	"vacated", "remanded", "reversed", "affirmed", "overruling", "affirming",
	"See",
}

var signalWordRe = buildSignalWordRe()

func buildSignalWordRe() *regexp.Regexp {
	sorted := make([]string, len(signalWords))
	copy(sorted, signalWords)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	var escaped []string
	for _, w := range sorted {
		escaped = append(escaped, regexp.QuoteMeta(w))
	}
	return regexp.MustCompile(`(?i)^\s*(` + strings.Join(escaped, "|") + `)(?:[,:]?\s+|[,:]\s*|$)`)
}

// Span is a byte-offset range, used for citation spans and for
// already-located sentence boundaries.
type Span struct {
	Start int
	End   int
}

// Isolate computes the raw [lo, hi) window for the citation at
// [citeStart, citeEnd), given every citation span located in the
// document (spans need not be sorted; Isolate sorts its own copy).
func Isolate(text string, citeStart, citeEnd int, spans []Span) (lo, hi int) {
	sorted := append([]Span(nil), spans...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	lo = citeStart - WindowBeforeChars
	if lo < 0 {
		lo = 0
	}
	if prevEnd, ok := nearestSpanEndBefore(sorted, citeStart); ok && prevEnd > lo {
		lo = prevEnd
	}
	if term, ok := terminatorBefore(text, lo, citeStart); ok && term > lo {
		lo = term
	}

	hi = citeEnd + WindowAfterChars
	if hi > len(text) {
		hi = len(text)
	}
	if nextStart, ok := nearestSpanStartAfter(sorted, citeEnd); ok && nextStart < hi {
		hi = nextStart
	}
	if term, ok := terminatorAfter(text, citeEnd, hi); ok && term < hi {
		hi = term
	}

	if lo > citeStart {
		lo = citeStart
	}
	if hi < citeEnd {
		hi = citeEnd
	}

	return lo, hi
}

// ExtractContext produces the final, cleaned context string for the
// citation at [citeStart, citeEnd): it isolates the window, strips any
// neighbouring citation text that leaked into it, then strips leading
// signal words (spec §4.3 rules 3-4).
func ExtractContext(text string, citeStart, citeEnd int, spans []Span) string {
	lo, hi := Isolate(text, citeStart, citeEnd, spans)
	window := text[lo:hi]

	// Remove this citation's own occurrence and any neighbouring
	// citation text that still falls inside the window.
	window = stripCitationSpans(window)

	stripped := stripSignalWords(window)
	if strings.TrimSpace(stripped) == "" {
		return ""
	}
	return stripped
}

// stripCitationSpans removes every substring of window that itself
// matches a citation pattern, so a neighbouring citation sharing the
// same sentence cannot contaminate the extracted case name.
func stripCitationSpans(window string) string {
	matches := patterns.FindAll(window)
	if len(matches) == 0 {
		return window
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m.Start < last {
			continue
		}
		b.WriteString(window[last:m.Start])
		last = m.End
	}
	b.WriteString(window[last:])
	return b.String()
}

// stripSignalWords repeatedly removes a leading signal word, per rule 4.
func stripSignalWords(s string) string {
	for {
		loc := signalWordRe.FindStringIndex(s)
		if loc == nil || loc[0] != 0 {
			return s
		}
		next := s[loc[1]:]
		if next == s {
			return s
		}
		s = next
	}
}

func nearestSpanEndBefore(sorted []Span, pos int) (int, bool) {
	best := -1
	found := false
	for _, s := range sorted {
		if s.Start < pos && s.End <= pos && s.End > best {
			best = s.End
			found = true
		}
	}
	return best, found
}

func nearestSpanStartAfter(sorted []Span, pos int) (int, bool) {
	best := -1
	found := false
	for _, s := range sorted {
		if s.Start >= pos && (!found || s.Start < best) {
			best = s.Start
			found = true
		}
	}
	return best, found
}

// terminatorBefore finds the position right after the last sentence
// terminator in [limit, from) that is not inside a quoted or
// parenthesised span, tracking paren/quote depth from limit forward.
func terminatorBefore(text string, limit, from int) (int, bool) {
	if from <= limit {
		return 0, false
	}
	depth, inQuote := 0, false
	best := -1
	found := false
	for i := limit; i < from; i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '"':
			inQuote = !inQuote
		case '.', '?', '!':
			if depth == 0 && !inQuote && endsSentence(text, i) {
				best = i + 1
				found = true
			}
		}
	}
	return best, found
}

// terminatorAfter finds the position of the first sentence terminator
// in [from, limit) that is not inside a quoted or parenthesised span.
func terminatorAfter(text string, from, limit int) (int, bool) {
	if limit <= from {
		return 0, false
	}
	depth, inQuote := 0, false
	for i := from; i < limit; i++ {
		switch text[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case '"':
			inQuote = !inQuote
		case '.', '?', '!':
			if depth == 0 && !inQuote && endsSentence(text, i) {
				return i, true
			}
		}
	}
	return 0, false
}

// endsSentence reports whether text[i] ends a sentence rather than an
// abbreviation such as "v.", "U.S.", "Wn.2d" or "Corp. v.".
func endsSentence(text string, i int) bool {
	if text[i] != '.' {
		return true
	}
	glued := i+1 < len(text) && !unicode.IsSpace(rune(text[i+1]))
	initial := i >= 1 && unicode.IsLetter(rune(text[i-1])) && (i < 2 || !unicode.IsLetter(rune(text[i-2])))
	next := strings.TrimLeftFunc(text[i+1:], unicode.IsSpace)
	return !glued && !initial && (next == "" || !unicode.IsLower(rune(next[0])))
}
