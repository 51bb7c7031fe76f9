package docfetch

import (
	"bytes"
	"fmt"

	"github.com/nguyenthenguyen/docx"
)

// extractDOCX decodes a .docx document's body text using
// nguyenthenguyen/docx, the same OOXML reader used elsewhere in the
// retrieval pack (e.g. Caia-Tech-caia-library) for Word document
// ingestion.
func extractDOCX(data []byte) (string, error) {
	reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docfetch: reading DOCX: %w", err)
	}
	defer reader.Close()

	return reader.Editable().GetContent(), nil
}
