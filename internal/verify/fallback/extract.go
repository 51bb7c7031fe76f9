package fallback

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// firstText returns the trimmed text of the first element matching any
// of the given selectors, tried in order.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if text := strings.TrimSpace(s.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

// firstHref returns the absolute href of the first <a> matching any of
// the given selectors, resolved against pageURL.
func firstHref(doc *goquery.Document, pageURL string, selectors ...string) string {
	base, err := url.Parse(pageURL)
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		href, exists := s.Attr("href")
		if !exists || href == "" {
			continue
		}
		if err != nil {
			return href
		}
		if resolved, rerr := base.Parse(href); rerr == nil {
			return resolved.String()
		}
		return href
	}
	return ""
}

var datePattern = regexp.MustCompile(`\b(18|19|20)\d{2}-\d{2}-\d{2}\b|\b(18|19|20)\d{2}\b`)

// firstDate scans an element's text for a date-like token, returning it
// as-is (the verifier only needs a parseable leading year).
func firstDate(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		text := doc.Find(sel).First().Text()
		if m := datePattern.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// selectorSet names the CSS selectors one source uses to locate a case
// name, decision date, and canonical link on its search/result page.
type selectorSet struct {
	name []string
	date []string
	link []string
}

// genericExtract builds an extractFunc from a source's selectorSet,
// falling back to go-readability's generic title extraction when none
// of the bespoke name selectors match.
func genericExtract(sel selectorSet) extractFunc {
	return func(doc *goquery.Document, body []byte, pageURL string) (string, string, string, bool) {
		name := firstText(doc, sel.name...)
		if name == "" {
			title, ok := readabilityFallback(body, pageURL)
			if !ok {
				return "", "", "", false
			}
			name = title
		}
		date := firstDate(doc, sel.date...)
		link := firstHref(doc, pageURL, sel.link...)
		if link == "" {
			link = pageURL
		}
		return name, date, link, true
	}
}

// readabilityFallback uses go-readability's generic article extractor
// to guess a case name (the article title) when a source has no
// reliable bespoke selector for it.
func readabilityFallback(body []byte, pageURL string) (title string, ok bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "", false
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil || strings.TrimSpace(article.Title) == "" {
		return "", false
	}
	return strings.TrimSpace(article.Title), true
}
