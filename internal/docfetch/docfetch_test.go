package docfetch_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselaw/casestrainer/internal/docfetch"
)

func TestExtractPlainTextPassesThroughUnchanged(t *testing.T) {
	text, err := docfetch.Extract([]byte("Smith v. Jones, 1 Wn.2d 1 (1950)."), docfetch.MIMEText, docfetch.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Smith v. Jones, 1 Wn.2d 1 (1950).", text)
}

func TestExtractEmptyMIMETypeTreatedAsPlainText(t *testing.T) {
	text, err := docfetch.Extract([]byte("hello"), "", docfetch.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtractUnsupportedMIMETypeIsUnsupportedFormat(t *testing.T) {
	_, err := docfetch.Extract([]byte("whatever"), "application/x-made-up", docfetch.DefaultOptions())
	assert.ErrorIs(t, err, docfetch.ErrUnsupportedFormat)
}

func TestExtractHTMLStripsScriptsAndTags(t *testing.T) {
	html := `<html><head><style>body{color:red}</style></head>
<body><script>alert(1)</script><nav>Home</nav>
<p>Smith v. Jones, 1 Wn.2d 1 (1950).</p></body></html>`

	text, err := docfetch.Extract([]byte(html), docfetch.MIMEHTML, docfetch.DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, text, "Smith v. Jones")
	assert.NotContains(t, text, "alert(1)")
	assert.NotContains(t, text, "Home")
}
