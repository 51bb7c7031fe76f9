package docfetch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripParamsRemovesCharsetSuffix(t *testing.T) {
	assert.Equal(t, "text/html", stripParams("text/html; charset=utf-8"))
	assert.Equal(t, "application/pdf", stripParams("application/pdf"))
	assert.Equal(t, "text/plain", stripParams("Text/Plain"))
}

func TestSniffMIMEDetectsPDFMagicBytes(t *testing.T) {
	assert.Equal(t, MIMEPDF, sniffMIME([]byte("%PDF-1.4 rest of file"), "https://example.test/doc"))
}

func TestSniffMIMEFallsBackToURLSuffix(t *testing.T) {
	assert.Equal(t, MIMEDOCX, sniffMIME([]byte("whatever bytes"), "https://example.test/doc.docx"))
	assert.Equal(t, MIMERTF, sniffMIME([]byte("whatever bytes"), "https://example.test/doc.rtf"))
}

func TestSniffMIMEDetectsHTMLBody(t *testing.T) {
	assert.Equal(t, MIMEHTML, sniffMIME([]byte("<html><body>hi</body></html>"), "https://example.test/page"))
}

func TestSniffMIMEDefaultsToPlainText(t *testing.T) {
	assert.Equal(t, MIMEText, sniffMIME([]byte("just some words"), "https://example.test/page"))
}

func TestReadAllLimitedErrorsWhenOverLimit(t *testing.T) {
	r := strings.NewReader(strings.Repeat("x", 100))
	_, err := readAllLimited(r, 10)
	assert.ErrorIs(t, err, errTooLarge)
}

func TestReadAllLimitedPassesThroughUnderLimit(t *testing.T) {
	r := strings.NewReader("short")
	data, err := readAllLimited(r, 100)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}
