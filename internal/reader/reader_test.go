package reader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/contract-extractor/internal/contracts"
)

func item(name string) contracts.WorkItem {
	return contracts.WorkItem{Name: name, Location: name, Source: contracts.SourceMemory}
}

func docxBytes(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestRead_PlainText(t *testing.T) {
	r := New(nil)
	text, err := r.Read(context.Background(), item("msa.txt"), []byte("  MASTER SERVICES AGREEMENT\n"))
	require.NoError(t, err)
	require.Equal(t, "MASTER SERVICES AGREEMENT", text)
}

func TestRead_EmptyText(t *testing.T) {
	r := New(nil)
	_, err := r.Read(context.Background(), item("blank.txt"), []byte("   \n\t"))
	require.Error(t, err)
}

func TestRead_InvalidUTF8(t *testing.T) {
	r := New(nil)
	_, err := r.Read(context.Background(), item("bin.txt"), []byte{0xff, 0xfe, 0x00})
	require.Error(t, err)
}

func TestRead_Docx(t *testing.T) {
	xml := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>AVTAL OM </w:t></w:r><w:r><w:t>TJÄNSTER</w:t></w:r></w:p>
    <w:p><w:r><w:t>Mellan parterna</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`
	r := New(nil)
	text, err := r.Read(context.Background(), item("avtal.docx"), docxBytes(t, xml))
	require.NoError(t, err)
	require.Equal(t, "AVTAL OM TJÄNSTER\nMellan parterna", text)
}

func TestRead_DocxNotAZip(t *testing.T) {
	r := New(nil)
	_, err := r.Read(context.Background(), item("broken.docx"), []byte("not a zip"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "open docx archive")
}

func TestRead_DocxMissingDocumentPart(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	r := New(nil)
	_, err = r.Read(context.Background(), item("odd.docx"), buf.Bytes())
	require.Error(t, err)
}

func TestRead_PDFWithoutOCR(t *testing.T) {
	r := New(nil)
	_, err := r.Read(context.Background(), item("scan.pdf"), []byte("%PDF-1.7"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no OCR engine")
}

type stubOCR struct {
	text string
	err  error
}

func (s stubOCR) ExtractText(context.Context, string, []byte) (string, error) {
	return s.text, s.err
}

func TestRead_PDFWithOCR(t *testing.T) {
	r := New(stubOCR{text: "SERVICE AGREEMENT"})
	text, err := r.Read(context.Background(), item("scan.pdf"), []byte("%PDF-1.7"))
	require.NoError(t, err)
	require.Equal(t, "SERVICE AGREEMENT", text)

	r = New(stubOCR{err: errors.New("engine offline")})
	_, err = r.Read(context.Background(), item("scan.pdf"), []byte("%PDF-1.7"))
	require.Error(t, err)
}

func TestRead_UnsupportedExtension(t *testing.T) {
	r := New(nil)
	_, err := r.Read(context.Background(), item("data.csv"), []byte("a,b"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported file type")
}
