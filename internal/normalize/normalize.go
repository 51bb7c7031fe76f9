// Package normalize canonicalizes reporter abbreviations, strips
// pinpoint/docket decorations, and generates citation text variants
// (spec §4.4). It is pure and deterministic: the same input always
// produces the same output, with no I/O and no external state.
package normalize

import (
	"regexp"
	"strings"
)

// aliasGroups lists every reporter abbreviation family that has more
// than one accepted printed form, the first entry in each slice being
// canonical. Bidirectional lookup is built from this single table.
var aliasGroups = [][]string{
	{"Wash.2d", "Wn.2d"},
	{"Wash. App. 2d", "Wn. App. 2d"},
	{"Wash. App.", "Wn. App."},
	{"Wash.", "Wn."},
}

var canonicalByAlias = buildCanonicalMap()

func buildCanonicalMap() map[string]string {
	m := make(map[string]string)
	for _, group := range aliasGroups {
		canonical := group[0]
		for _, alias := range group {
			m[alias] = canonical
		}
	}
	return m
}

// Canonical returns the canonical printed form of a reporter label,
// e.g. "Wn.2d" -> "Wash.2d". Labels with no registered alias are
// returned unchanged.
func Canonical(label string) string {
	if c, ok := canonicalByAlias[strings.TrimSpace(label)]; ok {
		return c
	}
	return label
}

// Aliases returns every accepted printed form of the reporter label's
// family, canonical form first, or just the input label if it belongs
// to no alias group.
func Aliases(label string) []string {
	canonical := Canonical(label)
	for _, group := range aliasGroups {
		if group[0] == canonical {
			out := make([]string, len(group))
			copy(out, group)
			return out
		}
	}
	return []string{label}
}

var (
	pinpointPattern = regexp.MustCompile(`,\s*\d+(-\d+)?(?:\s*n\.\s*\d+)?$`)
	starPagePattern = regexp.MustCompile(`\*\d+`)
	docketPattern   = regexp.MustCompile(`(?i)no\.\s*[\w:-]+`)
	parenGroup      = regexp.MustCompile(`\s*\([^()]*\)`)
	ordinalPairs    = [][2]string{{"2d", "2nd"}, {"3d", "3rd"}, {"4th", "4th"}}
	washFullName    = map[string]string{"Wash.": "Washington", "Wash.2d": "Washington 2d"}
)

// Strip removes pinpoint pages, star-page references, docket numbers,
// and court parentheticals from a raw citation string, leaving the bare
// "volume reporter page" form.
func Strip(raw string) string {
	s := raw
	s = parenGroup.ReplaceAllString(s, "")
	s = docketPattern.ReplaceAllString(s, "")
	s = starPagePattern.ReplaceAllString(s, "")
	s = pinpointPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// Normalize produces the canonical "volume reporter page" text for a
// citation given its parsed components.
func Normalize(volume, reporter, page string) string {
	return strings.TrimSpace(volume + " " + Canonical(strings.TrimSpace(reporter)) + " " + page)
}

// Variants generates every accepted textual form of a citation: the
// canonical form, each reporter alias, and alternative ordinal spellings
// (2d<->2nd, 3d<->3rd), plus Washington full-name variants where
// applicable. The returned set always contains at least one element
// (the canonical form) and never contains duplicates.
func Variants(volume, reporter, page string) []string {
	seen := make(map[string]bool)
	var out []string

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}

	for _, alias := range Aliases(reporter) {
		base := strings.TrimSpace(volume + " " + alias + " " + page)
		add(base)
		for _, pair := range ordinalPairs {
			if strings.Contains(base, pair[0]) {
				add(strings.Replace(base, pair[0], pair[1], 1))
			}
			if strings.Contains(base, pair[1]) {
				add(strings.Replace(base, pair[1], pair[0], 1))
			}
		}
		if full, ok := washFullName[alias]; ok {
			add(strings.TrimSpace(volume + " " + full + " " + page))
		}
	}

	return out
}
