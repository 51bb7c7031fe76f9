// Package fallback implements the ranked HTML legal-database chain used
// as the Verifier's third strategy (spec §4.6): Justia, Leagle, CaseText,
// Cornell LII, FindLaw, CaseMine, VLex, OpenJurist, and Google Scholar.
// Fetching is grounded on internal/services/crawler/html_scraper.go's
// colly.Collector + context-aware-transport setup; extraction is grounded
// on internal/services/crawler/link_extractor.go's goquery selector
// style, falling back to go-readability's generic article extractor for
// sources without a workable bespoke selector.
package fallback

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/verify"
)

// contextAwareTransport aborts an in-flight request as soon as its
// context is canceled, same as html_scraper.go's transport wrapper.
type contextAwareTransport struct {
	base http.RoundTripper
	ctx  context.Context
}

func (t *contextAwareTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	select {
	case <-t.ctx.Done():
		return nil, t.ctx.Err()
	default:
	}
	return t.base.RoundTrip(req.WithContext(t.ctx))
}

// fetchHTML issues one GET through a single-use colly collector and
// returns the raw response body, or an error if the request failed or
// returned an empty body. The response's content type is not checked.
func fetchHTML(ctx context.Context, targetURL string) ([]byte, error) {
	var body []byte
	var fetchErr error

	c := colly.NewCollector(
		colly.UserAgent("casestrainer-verifier/1.0"),
	)
	c.SetRequestTimeout(10 * time.Second)
	c.WithTransport(&contextAwareTransport{base: http.DefaultTransport, ctx: ctx})

	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		return nil, fmt.Errorf("fallback: visiting %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return nil, fmt.Errorf("fallback: fetching %s: %w", targetURL, fetchErr)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fallback: empty response from %s", targetURL)
	}
	return body, nil
}

// extractFunc pulls a case name, decision date, and canonical URL out of
// a parsed search-results or case page. ok is false when nothing usable
// was found (e.g. a "no results" page).
type extractFunc func(doc *goquery.Document, body []byte, pageURL string) (caseName, date, canonicalURL string, ok bool)

// genericSource is a FallbackSource whose only per-site customization is
// its search-URL template and its extractFunc.
type genericSource struct {
	name      citation.VerificationSource
	searchURL func(normalizedCitation string) string
	extract   extractFunc
}

func (s *genericSource) Name() citation.VerificationSource { return s.name }

func (s *genericSource) Fetch(ctx context.Context, normalizedCitation string) (verify.Candidate, bool, error) {
	target := s.searchURL(normalizedCitation)
	body, err := fetchHTML(ctx, target)
	if err != nil {
		return verify.Candidate{}, false, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return verify.Candidate{}, false, fmt.Errorf("fallback: parsing %s response: %w", s.name, err)
	}

	caseName, date, canonicalURL, ok := s.extract(doc, body, target)
	if !ok {
		return verify.Candidate{}, false, nil
	}
	return verify.Candidate{CaseName: caseName, DecisionDate: date, URL: canonicalURL}, true, nil
}

// escapeQuery percent-encodes a citation string for use in a query
// parameter.
func escapeQuery(s string) string {
	return url.QueryEscape(s)
}
