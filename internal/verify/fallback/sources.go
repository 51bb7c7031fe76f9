package fallback

import (
	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/verify"
)

// DefaultSources builds the nine-source ranked HTML fallback chain
// named in spec §4.6, in rank order. Each source's search URL and
// selectors are a best-effort approximation of that site's public
// search page; genericExtract's readability fallback absorbs layout
// drift that would otherwise break a brittle selector.
func DefaultSources() []verify.FallbackSource {
	return []verify.FallbackSource{
		&genericSource{
			name:      citation.VerificationSourceJustia,
			searchURL: searchURL("https://law.justia.com/cases/search/", "query"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.case-name", ".search-result h2 a", "h1"},
				date: []string{".decision-date", ".case-date"},
				link: []string{".search-result h2 a", "h1 a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceLeagle,
			searchURL: searchURL("https://www.leagle.com/search", "q"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.case-title", ".result-title a", "h1"},
				date: []string{".case-date", ".result-date"},
				link: []string{".result-title a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceCaseText,
			searchURL: searchURL("https://casetext.com/search", "q"),
			extract: genericExtract(selectorSet{
				name: []string{"h1[data-testid='case-title']", ".case-result h3 a", "h1"},
				date: []string{".case-decision-date"},
				link: []string{".case-result h3 a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceCornellLII,
			searchURL: searchURL("https://www.law.cornell.edu/search/site", "query"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.page-title", ".search-result h3 a", "h1"},
				date: []string{".decided"},
				link: []string{".search-result h3 a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceFindLaw,
			searchURL: searchURL("https://caselaw.findlaw.com/search.html", "query"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.case-title", ".result h3 a", "h1"},
				date: []string{".case-date"},
				link: []string{".result h3 a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceCaseMine,
			searchURL: searchURL("https://www.casemine.com/search/us", "q"),
			extract: genericExtract(selectorSet{
				name: []string{".judgment-title", ".search-result-title a", "h1"},
				date: []string{".judgment-date"},
				link: []string{".search-result-title a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceVLex,
			searchURL: searchURL("https://case-law.vlex.com/search", "q"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.content-title", ".result-item h3 a", "h1"},
				date: []string{".content-date"},
				link: []string{".result-item h3 a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceOpenJurist,
			searchURL: searchURL("https://openjurist.org/search", "query"),
			extract: genericExtract(selectorSet{
				name: []string{"h1.title", ".case-list li a", "h1"},
				date: []string{".date"},
				link: []string{".case-list li a"},
			}),
		},
		&genericSource{
			name:      citation.VerificationSourceGoogleScholar,
			searchURL: searchURL("https://scholar.google.com/scholar_case", "q"),
			extract: genericExtract(selectorSet{
				name: []string{"#gsl_case_name", "h3.gs_rt a", "h1"},
				date: []string{"#gsl_case_date"},
				link: []string{"h3.gs_rt a"},
			}),
		},
	}
}

// Select reorders and filters DefaultSources() to match a configured
// fallback_source_order (spec §6.5), so an operator can re-rank or drop
// sources without a code change. Unknown names are ignored.
func Select(order []string) []verify.FallbackSource {
	all := DefaultSources()
	byName := make(map[citation.VerificationSource]verify.FallbackSource, len(all))
	for _, s := range all {
		byName[s.Name()] = s
	}

	selected := make([]verify.FallbackSource, 0, len(order))
	for _, name := range order {
		if s, ok := byName[citation.VerificationSource(name)]; ok {
			selected = append(selected, s)
		}
	}
	if len(selected) == 0 {
		return all
	}
	return selected
}

// searchURL builds a closure producing a source's search URL with the
// normalized citation as its query-string value.
func searchURL(base, param string) func(string) string {
	return func(normalizedCitation string) string {
		return base + "?" + param + "=" + escapeQuery(normalizedCitation)
	}
}
