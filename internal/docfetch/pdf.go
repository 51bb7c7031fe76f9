package docfetch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF decodes PDF bytes to text using pdfcpu, page by page, the
// same ReadContextFile/ExtractContentFile sequence as
// internal/services/pdf/extractor.go adapted to operate directly on an
// in-memory byte slice (request-scoped input, no persistent storage key
// indirection — CaseStrainer never stores uploaded documents).
//
// Per spec §1/§6.2, footnote-to-endnote reformatting is an external
// collaborator whose internal algorithm is out of scope; convertFootnotes
// only gates whether the minimal marker-based mover below runs at all.
func extractPDF(data []byte, convertFootnotes bool) (string, error) {
	tempFile, err := os.CreateTemp("", "casestrainer-*.pdf")
	if err != nil {
		return "", fmt.Errorf("docfetch: creating temp PDF file: %w", err)
	}
	defer os.Remove(tempFile.Name())
	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		return "", fmt.Errorf("docfetch: writing temp PDF file: %w", err)
	}
	tempFile.Close()

	pdfCtx, err := api.ReadContextFile(tempFile.Name())
	if err != nil {
		return "", fmt.Errorf("docfetch: reading PDF: %w", err)
	}
	pageCount := pdfCtx.PageCount

	outDir, err := os.MkdirTemp("", "casestrainer-pdf-pages-*")
	if err != nil {
		return "", fmt.Errorf("docfetch: creating temp output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := model.NewDefaultConfiguration()
	if err := api.ExtractContentFile(tempFile.Name(), outDir, nil, conf); err != nil {
		// pdfcpu content extraction failed; nothing recoverable to read.
		return "", fmt.Errorf("docfetch: extracting PDF content: %w", err)
	}

	pageTexts := make(map[int]string)
	entries, _ := os.ReadDir(outDir)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := os.ReadFile(filepath.Join(outDir, entry.Name()))
		if err != nil {
			continue
		}
		var pageNum int
		if _, err := fmt.Sscanf(entry.Name(), "page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		} else if _, err := fmt.Sscanf(entry.Name(), "Content_page_%d", &pageNum); err == nil {
			pageTexts[pageNum] = string(content)
		}
	}

	var body strings.Builder
	var endnotes []string
	for page := 1; page <= pageCount; page++ {
		text := pageTexts[page]
		if convertFootnotes {
			text, pageNotes := splitFootnotes(text)
			endnotes = append(endnotes, pageNotes...)
			if body.Len() > 0 {
				body.WriteString("\n\n")
			}
			body.WriteString(text)
		} else {
			if body.Len() > 0 {
				body.WriteString("\n\n")
			}
			body.WriteString(text)
		}
	}

	if convertFootnotes && len(endnotes) > 0 {
		body.WriteString("\n\nEndnotes\n")
		for _, n := range endnotes {
			body.WriteString(n)
			body.WriteString("\n")
		}
	}

	return body.String(), nil
}

// footnoteMarker recognizes a line beginning with a short bare number
// followed by whitespace — a common rendering of a footnote once
// superscript styling is lost to plain-text extraction.
var footnoteMarker = regexp.MustCompile(`(?m)^\s*(\d{1,3})\s+(\S.*)$`)

// splitFootnotes is a minimal heuristic stand-in for the real
// footnote-to-endnote collaborator (out of scope per spec §1): it pulls
// short marker-prefixed trailing lines off the bottom of a page's text
// and returns them separately so they can be appended to a trailing
// "Endnotes" section instead of interrupting the main body mid-sentence.
func splitFootnotes(pageText string) (body string, notes []string) {
	lines := strings.Split(pageText, "\n")
	cut := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if m := footnoteMarker.FindStringSubmatch(line); m != nil && len(line) < 200 {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 1000 {
				notes = append([]string{line}, notes...)
				cut = i
				continue
			}
		}
		break
	}
	return strings.Join(lines[:cut], "\n"), notes
}
