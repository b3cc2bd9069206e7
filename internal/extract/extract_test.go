package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"jobfit-backend/internal/shared/storage/object"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Senior Go engineer</w:t></w:r></w:p><w:p><w:r><w:t>Docker, AWS</w:t></w:r></w:p>`)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if text != "Senior Go engineer\nDocker, AWS" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
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

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractTextFromBytes_EmptyDocx(t *testing.T) {
	data := buildDocx(t, `<w:p></w:p>`)

	_, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "blank.docx")
	if !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestExtractTextFromBytes_LegacyDoc(t *testing.T) {
	// OLE header followed by a UTF-16LE text piece.
	data := []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1, 0x00, 0x00}
	for _, r := range "Python and Kubernetes developer" {
		data = append(data, byte(r), 0x00)
	}
	data = append(data, 0xFF, 0xFE, 0x01)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/octet-stream", "cv.DOC")
	if err != nil {
		t.Fatalf("extract doc: %v", err)
	}
	if !strings.Contains(text, "Python and Kubernetes developer") {
		t.Fatalf("expected text run in output, got %q", text)
	}
}

func TestExtractTextFromBytes_InvalidPDF(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("not a pdf"), MimePDF, "cv.pdf")
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
}

func TestExtractTextFromBytes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ExtractTextFromBytes(ctx, []byte("x"), MimePDF, "cv.pdf"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNormalizeMimeType(t *testing.T) {
	tests := []struct {
		mime string
		name string
		want string
	}{
		{mime: "application/pdf", name: "a.pdf", want: MimePDF},
		{mime: "application/octet-stream", name: "a.doc", want: MimeDOC},
		{mime: "application/octet-stream", name: "a.PDF", want: MimePDF},
		{mime: "", name: "a.docx", want: MimeDOCX},
		{mime: "text/plain; charset=utf-8", name: "a.txt", want: "text/plain"},
		{mime: "", name: "a.bin", want: "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := NormalizeMimeType(tt.mime, tt.name, nil); got != tt.want {
			t.Fatalf("NormalizeMimeType(%q, %q) = %q, want %q", tt.mime, tt.name, got, tt.want)
		}
	}
}

type mapStore map[string][]byte

func (m mapStore) Save(ctx context.Context, ownerID, fileName string, r io.Reader) (string, int64, string, error) {
	return "", 0, "", errors.New("read only")
}

func (m mapStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m mapStore) Delete(ctx context.Context, key string) error { return nil }

func (m mapStore) Provider() string { return "map" }

func TestExtractTextSeparatesStorageAndDocumentErrors(t *testing.T) {
	store := mapStore{
		"good.docx": buildDocx(t, `<w:p><w:r><w:t>Go and Rust</w:t></w:r></w:p>`),
		"bad.pdf":   []byte("not a pdf"),
	}
	ctx := context.Background()

	text, err := ExtractText(ctx, store, "good.docx", MimeDOCX, "good.docx")
	if err != nil || text != "Go and Rust" {
		t.Fatalf("expected docx text, got %q err=%v", text, err)
	}

	var docErr *DocumentError
	_, err = ExtractText(ctx, store, "missing.pdf", MimePDF, "missing.pdf")
	if !errors.Is(err, object.ErrNotFound) || errors.As(err, &docErr) {
		t.Fatalf("expected storage error, got %v", err)
	}

	_, err = ExtractText(ctx, store, "bad.pdf", MimePDF, "bad.pdf")
	if !errors.As(err, &docErr) {
		t.Fatalf("expected DocumentError, got %v", err)
	}
}
