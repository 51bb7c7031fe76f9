package docfetch

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// No ecosystem ODF library surfaced in the retrieval pack either
// (justified stdlib use, same reasoning as extractRTF). An ODT file is
// a zip archive whose content.xml holds the document body as an XML
// tree of text:p paragraph elements; a generic XML token walk recovers
// the character data in document order without needing the full ODF
// schema.
func extractODT(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docfetch: reading ODT archive: %w", err)
	}

	var contentFile *zip.File
	for _, f := range zr.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return "", fmt.Errorf("docfetch: ODT archive missing content.xml")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return "", fmt.Errorf("docfetch: opening content.xml: %w", err)
	}
	defer rc.Close()

	return odtPlainText(rc)
}

// odtPlainText walks the content.xml token stream, emitting a newline
// at each paragraph/heading/line-break element and the raw character
// data everywhere else.
func odtPlainText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docfetch: parsing ODT XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p", "h", "line-break":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			}
		case xml.CharData:
			b.Write(t)
		}
	}

	return strings.TrimSpace(b.String()), nil
}
