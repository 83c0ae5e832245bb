package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body bytes.Buffer
	body.WriteString(`<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	body.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromDOCX(t *testing.T) {
	data := buildDOCX(t, "Jane Doe", "Backend Engineer")

	if got := DetectMimeType(data, "cv.docx"); got != MimeDOCX {
		t.Fatalf("expected docx mime, got %q", got)
	}

	text, err := Text(context.Background(), data, "cv.docx")
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if text != "Jane Doe\nBackend Engineer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestTextRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = Text(context.Background(), buf.Bytes(), "notes.zip")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestTextRejectsPlainText(t *testing.T) {
	_, err := Text(context.Background(), []byte("just some notes"), "notes.txt")
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestIsDocument(t *testing.T) {
	for _, m := range []string{MimePDF, MimeDOC, MimeDOCX} {
		if !IsDocument(m) {
			t.Fatalf("expected %s to be a document", m)
		}
	}
	for _, m := range []string{"text/plain; charset=utf-8", "image/png", "application/zip"} {
		if IsDocument(m) {
			t.Fatalf("expected %s to be rejected", m)
		}
	}
}

func TestDetectLegacyDoc(t *testing.T) {
	data := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 64)...)
	if got := DetectMimeType(data, "letter.doc"); got != MimeDOC {
		t.Fatalf("expected %s, got %q", MimeDOC, got)
	}
}
