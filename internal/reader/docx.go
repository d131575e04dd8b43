package reader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// readDocx pulls paragraph text out of the OOXML main document part. The
// format is a zip archive with the body under word/document.xml.
func readDocx(name string, data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%s: open docx archive: %w", name, err)
	}

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("%s: docx has no word/document.xml", name)
	}

	rc, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("%s: open document part: %w", name, err)
	}
	defer rc.Close()

	text, err := decodeDocumentXML(rc)
	if err != nil {
		return "", fmt.Errorf("%s: parse document part: %w", name, err)
	}
	if text == "" {
		return "", fmt.Errorf("%s: document contains no text", name)
	}
	return text, nil
}

// decodeDocumentXML streams the WordprocessingML body, collecting run text
// (w:t) and joining paragraphs (w:p) with newlines.
func decodeDocumentXML(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		sb        strings.Builder
		paragraph strings.Builder
		inText    bool
	)
	flush := func() {
		line := strings.TrimSpace(paragraph.String())
		paragraph.Reset()
		if line == "" {
			return
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	flush()
	return strings.TrimSpace(sb.String()), nil
}
