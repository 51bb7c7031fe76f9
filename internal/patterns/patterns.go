// Package patterns holds the closed set of regular expressions that
// recognize legal citations for each required reporter family (spec
// §4.2) and the document-order, overlap-resolved, deduplicated match
// policy that sits on top of them.
package patterns

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/caselaw/casestrainer/internal/citation"
)

// Pattern recognizes one reporter family. The regex MUST capture
// volume, reporter label, and page/sequence into the named groups
// "volume", "reporter", and "page" so normalization (internal/normalize)
// and verification (internal/verify) can consume them uniformly.
type Pattern struct {
	Family citation.ReporterFamily
	Re     *regexp.Regexp
}

// Match is one located citation occurrence before clustering or
// normalization.
type Match struct {
	Family   citation.ReporterFamily
	Start    int
	End      int
	RawText  string
	Volume   string
	Reporter string
	Page     string
}

// volGroup matches a volume number: digits only.
const volGroup = `(?P<volume>\d+)`

// pageGroup matches a starting page or sequence number.
const pageGroup = `(?P<page>\d+)`

var registry = buildRegistry()

func buildRegistry() []Pattern {
	reporters := []struct {
		family  citation.ReporterFamily
		labels  []string
	}{
		{citation.ReporterFamilyUS, []string{`U\.S\.`}},
		{citation.ReporterFamilySCt, []string{`S\.\s?Ct\.`}},
		{citation.ReporterFamilyLEd, []string{`L\.\s?Ed\.\s?2d`, `L\.\s?Ed\.`}},
		{citation.ReporterFamilyFed, []string{
			`F\.\s?4th`, `F\.\s?3d`, `F\.\s?2d`, `F\.`,
			`F\.\s?Supp\.\s?3d`, `F\.\s?Supp\.\s?2d`, `F\.\s?Supp\.`,
			`Fed\.\s?Cl\.`,
		}},
		{citation.ReporterFamilyBR, []string{`B\.R\.`}},
		{citation.ReporterFamilyAtlantic, []string{`A\.\s?3d`, `A\.\s?2d`, `A\.`}},
		{citation.ReporterFamilyPacific, []string{`P\.\s?3d`, `P\.\s?2d`, `P\.`}},
		{citation.ReporterFamilyNorthEast, []string{`N\.E\.\s?3d`, `N\.E\.\s?2d`, `N\.E\.`}},
		{citation.ReporterFamilyNorthWest, []string{`N\.W\.\s?2d`, `N\.W\.`}},
		{citation.ReporterFamilySouthEast, []string{`S\.E\.\s?2d`, `S\.E\.`}},
		{citation.ReporterFamilySouthWest, []string{`S\.W\.\s?3d`, `S\.W\.\s?2d`, `S\.W\.`}},
		{citation.ReporterFamilySouth, []string{`So\.\s?3d`, `So\.\s?2d`, `So\.`}},
		{citation.ReporterFamilyWashington, []string{
			`Wn\.\s?App\.\s?2d`, `Wash\.\s?App\.\s?2d`,
			`Wn\.\s?App\.`, `Wash\.\s?App\.`,
			`Wn\.\s?2d`, `Wash\.\s?2d`,
			`Wn\.`, `Wash\.`,
		}},
	}

	var patterns []Pattern
	for _, r := range reporters {
		for _, label := range r.labels {
			re := regexp.MustCompile(volGroup + `\s+(?P<reporter>` + label + `)\s+` + pageGroup)
			patterns = append(patterns, Pattern{Family: r.family, Re: re})
		}
	}

	// Neutral citation formats: "YYYY-<JUR>-NNN" and "YYYY <JUR> NN".
	neutralJurisdictions := []string{"NM", "ND", "OK", "WY", "SD", "VT", "UT", "OH", "IL", "WI"}
	for _, jur := range neutralJurisdictions {
		patterns = append(patterns, Pattern{
			Family: citation.ReporterFamilyNeutral,
			Re:     regexp.MustCompile(`(?P<volume>\d{4})-(?P<reporter>` + jur + `)-(?P<page>\d+)`),
		})
		patterns = append(patterns, Pattern{
			Family: citation.ReporterFamilyNeutral,
			Re:     regexp.MustCompile(`(?P<volume>\d{4})\s+(?P<reporter>` + jur + `)\s+(?P<page>\d+)`),
		})
	}

	// Vendor-neutral online citators.
	patterns = append(patterns,
		Pattern{Family: citation.ReporterFamilyWL, Re: regexp.MustCompile(`(?P<volume>\d{4})\s+(?P<reporter>WL)\s+(?P<page>\d+)`)},
		Pattern{Family: citation.ReporterFamilyLexis, Re: regexp.MustCompile(`(?P<volume>\d{4})\s+U\.S\.\s?App\.\s+(?P<reporter>LEXIS)\s+(?P<page>\d+)`)},
		Pattern{Family: citation.ReporterFamilyLexis, Re: regexp.MustCompile(`(?P<volume>\d{4})\s+(?P<reporter>LEXIS)\s+(?P<page>\d+)`)},
	)

	return patterns
}

// Registry returns the closed set of compiled citation patterns.
func Registry() []Pattern {
	return registry
}

// FindAll scans text for every citation pattern, resolves overlaps (the
// match with the earlier start wins; ties broken by longer span), and
// deduplicates by (raw text, start), returning matches in
// document order per spec §4.2.
func FindAll(text string) []Match {
	var all []Match

	for _, p := range registry {
		for _, m := range p.Re.FindAllStringSubmatchIndex(text, -1) {
			match := toMatch(p, text, m)
			all = append(all, match)
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Start != all[j].Start {
			return all[i].Start < all[j].Start
		}
		return (all[i].End - all[i].Start) > (all[j].End - all[j].Start)
	})

	var resolved []Match
	lastEnd := -1
	seen := make(map[string]bool)
	for _, m := range all {
		if m.Start < lastEnd {
			continue // overlaps a preceding, already-accepted match
		}
		key := m.RawText + "|" + strconv.Itoa(m.Start)
		if seen[key] {
			continue
		}
		seen[key] = true
		resolved = append(resolved, m)
		lastEnd = m.End
	}

	return resolved
}

func toMatch(p Pattern, text string, idx []int) Match {
	names := p.Re.SubexpNames()
	m := Match{Family: p.Family, Start: idx[0], End: idx[1], RawText: text[idx[0]:idx[1]]}

	for i, name := range names {
		if i == 0 || name == "" {
			continue
		}
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			continue
		}
		val := text[start:end]
		switch name {
		case "volume":
			m.Volume = val
		case "reporter":
			m.Reporter = val
		case "page":
			m.Page = val
		}
	}

	return m
}
