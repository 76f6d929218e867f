package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
)

type memStorage struct {
	objects map[string][]byte
}

func (m *memStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = raw
	return nil
}

func (m *memStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func storedDoc(t *testing.T, filename string, content []byte) (*Extractor, *domain.Document) {
	t.Helper()
	storage := &memStorage{objects: map[string][]byte{"key": content}}
	doc := &domain.Document{ID: "d1", Filename: filename, StoragePath: "key"}
	return NewExtractor(storage), doc
}

func TestExtractPlainText(t *testing.T) {
	e, doc := storedDoc(t, "notes.txt", []byte("  line one\nline two  \n"))
	got, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "line one\nline two" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractRejectsBinaryAsPlainText(t *testing.T) {
	e, doc := storedDoc(t, "blob.bin", []byte{0xff, 0xfe, 0x00, 0x91})
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for invalid UTF-8")
	}
}

func TestExtractMissingObject(t *testing.T) {
	e := NewExtractor(&memStorage{})
	doc := &domain.Document{ID: "d1", Filename: "gone.txt", StoragePath: "absent"}
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for missing object")
	}
}

func TestExtractSpreadsheet(t *testing.T) {
	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	if err := book.SetSheetRow(sheet, "A1", &[]any{"Project", "Budget"}); err != nil {
		t.Fatalf("set header row: %v", err)
	}
	if err := book.SetSheetRow(sheet, "A2", &[]any{"Fleet Tracking", 40000}); err != nil {
		t.Fatalf("set data row: %v", err)
	}
	var buf bytes.Buffer
	if err := book.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	e, doc := storedDoc(t, "plan.xlsx", buf.Bytes())
	got, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "Sheet: "+sheet) {
		t.Fatalf("expected sheet header, got %q", got)
	}
	if !strings.Contains(got, "Project | Budget") {
		t.Fatalf("expected pipe-joined header row, got %q", got)
	}
	if !strings.Contains(got, "Fleet Tracking | 40000") {
		t.Fatalf("expected data row, got %q", got)
	}
}

func wordDocument(t *testing.T, bodyXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entry, err := archive.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create docx entry: %v", err)
	}
	if _, err := entry.Write([]byte(bodyXML)); err != nil {
		t.Fatalf("write docx body: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close docx archive: %v", err)
	}
	return buf.Bytes()
}

func TestExtractWordDocument(t *testing.T) {
	body := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Project Charter: </w:t></w:r><w:r><w:t>Fleet Tracking Overhaul</w:t></w:r></w:p>
    <w:p><w:r><w:t>Budget is</w:t></w:r><w:r><w:tab/><w:t>40000 EUR.</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`
	e, doc := storedDoc(t, "charter.docx", wordDocument(t, body))
	got, err := e.Extract(context.Background(), doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Project Charter: Fleet Tracking Overhaul\n\nBudget is 40000 EUR."
	if got != want {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractCorruptWordDocument(t *testing.T) {
	e, doc := storedDoc(t, "broken.docx", []byte("not a zip container"))
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for corrupt docx")
	}
}

func TestExtractWordDocumentMissingBody(t *testing.T) {
	var buf bytes.Buffer
	archive := zip.NewWriter(&buf)
	entry, err := archive.Create("word/styles.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := entry.Write([]byte("<styles/>")); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	e, doc := storedDoc(t, "empty.docx", buf.Bytes())
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for docx without a body part")
	}
}

func TestExtractCorruptPDF(t *testing.T) {
	e, doc := storedDoc(t, "broken.pdf", []byte("not a pdf at all"))
	if _, err := e.Extract(context.Background(), doc); err == nil {
		t.Fatalf("expected error for corrupt pdf")
	}
}
