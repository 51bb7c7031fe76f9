package cluster

import (
	"regexp"
	"strings"

	"github.com/xrash/smetrics"
)

// businessSuffixes are normalized away before comparison, per spec §4.5
// ("Inc." -> "inc").
var businessSuffixes = map[string]string{
	"inc.": "inc", "llc": "llc", "corp.": "corp", "co.": "co",
	"ltd.": "ltd", "l.p.": "lp", "n.a.": "na", "p.c.": "pc",
	"ass'n": "assn", "dep't": "dept", "comm'n": "commn", "mun.": "mun",
}

var punctuationPattern = regexp.MustCompile(`[^\w\s]`)

// normalizeForSimilarity lowercases, strips punctuation, and normalizes
// business suffixes, matching spec §4.5's name-similarity preprocessing.
func normalizeForSimilarity(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	for suffix, replacement := range businessSuffixes {
		s = strings.ReplaceAll(s, suffix, replacement)
	}
	s = punctuationPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// NameSimilarity returns a 0..1 ratio of how similar two case names are,
// using Jaro-Winkler distance over the normalized forms.
func NameSimilarity(a, b string) float64 {
	na, nb := normalizeForSimilarity(a), normalizeForSimilarity(b)
	if na == "" && nb == "" {
		return 1
	}
	if na == "" || nb == "" {
		return 0
	}
	return smetrics.JaroWinkler(na, nb, 0.7, 4)
}
