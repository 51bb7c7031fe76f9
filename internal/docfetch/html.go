package docfetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractHTML recovers visible text from an HTML document, grounded on
// the goquery selector style used in
// internal/services/crawler/link_extractor.go. Script, style, and
// navigation-chrome elements are dropped before text extraction so they
// don't pollute citation context windows.
func extractHTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("docfetch: parsing HTML: %w", err)
	}

	doc.Find("script, style, nav, header, footer, noscript").Remove()

	var lines []string
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		for _, line := range strings.Split(text, "\n") {
			trimmed := strings.TrimSpace(strings.Join(strings.Fields(line), " "))
			if trimmed != "" {
				lines = append(lines, trimmed)
			}
		}
	})

	return strings.Join(lines, "\n"), nil
}
