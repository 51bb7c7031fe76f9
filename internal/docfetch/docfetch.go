// Package docfetch adapts the document-extractor collaborator contract
// (spec §6.2): given bytes and a declared MIME type, it returns cleaned
// UTF-8 text or a typed error. The core treats this package as opaque —
// PDF/DOCX/footnote-reformatting algorithms are out of scope (spec §1);
// only the text-in, text-out contract matters to the pipeline.
package docfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnsupportedFormat is returned for a MIME type outside the
// supported set (spec §6.2, surfaces as the dispatcher's
// UnsupportedFormat error kind).
var ErrUnsupportedFormat = errors.New("docfetch: unsupported MIME type")

// ErrEmptyText is returned when extraction produced no usable text.
var ErrEmptyText = errors.New("docfetch: extraction produced no text")

// Supported MIME types (spec §6.2).
const (
	MIMEText = "text/plain"
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMERTF  = "application/rtf"
	MIMEODT  = "application/vnd.oasis.opendocument.text"
	MIMEHTML = "text/html"
)

// Options configures extraction behavior (spec §6.5).
type Options struct {
	// ConvertFootnotes controls whether a PDF's footnotes are appended
	// as an "Endnotes" section after the main body (default true).
	ConvertFootnotes bool
}

// DefaultOptions returns the spec §6.5 default extractor configuration.
func DefaultOptions() Options {
	return Options{ConvertFootnotes: true}
}

// Extract decodes file bytes of the declared MIME type into cleaned
// UTF-8 text.
func Extract(data []byte, mimeType string, opts Options) (string, error) {
	var text string
	var err error

	switch mimeType {
	case MIMEText, "":
		text = string(data)
	case MIMEPDF:
		text, err = extractPDF(data, opts.ConvertFootnotes)
	case MIMEDOCX:
		text, err = extractDOCX(data)
	case MIMERTF:
		text, err = extractRTF(data)
	case MIMEODT:
		text, err = extractODT(data)
	case MIMEHTML:
		text, err = extractHTML(data)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	if err != nil {
		return "", err
	}
	if len(text) == 0 {
		return "", ErrEmptyText
	}
	return text, nil
}

// FetchURL downloads the resource at the given absolute http/https URL,
// returning its raw bytes and the response's declared Content-Type
// (stripped of any `; charset=` suffix). The caller supplies the
// request timeout via ctx.
func FetchURL(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("docfetch: building request: %w", err)
	}
	req.Header.Set("User-Agent", "CaseStrainer/1.0 (+citation-verifier)")

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("docfetch: fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("docfetch: fetching %s: HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := readAllLimited(resp.Body, 10<<20) // 10 MiB fetch cap
	if err != nil {
		return nil, "", fmt.Errorf("docfetch: reading body of %s: %w", rawURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	mime := stripParams(contentType)
	if mime == "" {
		mime = sniffMIME(body, rawURL)
	}
	return body, mime, nil
}
