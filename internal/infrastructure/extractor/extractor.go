// Package extractor pulls plain text out of stored documents. The format is
// chosen by filename extension; anything unrecognized is treated as UTF-8
// text.
package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"

	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/domain"
	"github.com/rathodrutvik-dotcom/Chat-With-Data/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	switch strings.ToLower(filepath.Ext(doc.Filename)) {
	case ".pdf":
		return extractPDF(raw)
	case ".xlsx", ".xls":
		return extractSpreadsheet(raw)
	case ".docx":
		return extractWordDocument(raw)
	default:
		return extractPlainText(raw, doc.Filename)
	}
}

func extractPlainText(raw []byte, filename string) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported binary format: %s", filename)
	}
	return strings.TrimSpace(string(raw)), nil
}

func extractPDF(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// One broken page should not sink the document.
			continue
		}
		text = strings.ReplaceAll(text, "\x00", "")
		if strings.TrimSpace(text) == "" {
			continue
		}
		sb.WriteString(strings.TrimSpace(text))
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

// extractWordDocument reads the main body of a DOCX container. Runs of text
// inside a paragraph join without separators; paragraphs become blank-line
// separated blocks so the chunker sees them as boundaries.
func extractWordDocument(raw []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse docx: %w", err)
	}

	var body io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			body, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("open docx body: %w", err)
			}
			break
		}
	}
	if body == nil {
		return "", errors.New("docx has no word/document.xml")
	}
	defer body.Close()

	var sb strings.Builder
	var paragraph strings.Builder
	inText := false

	decoder := xml.NewDecoder(body)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteString(" ")
			case "br":
				paragraph.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if text := strings.TrimSpace(paragraph.String()); text != "" {
					sb.WriteString(text)
					sb.WriteString("\n\n")
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

// extractSpreadsheet renders every sheet as lines of pipe-separated cells,
// keeping row structure visible to the chunker.
func extractSpreadsheet(raw []byte) (string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse spreadsheet: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	for _, sheet := range file.GetSheetList() {
		rows, err := file.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		fmt.Fprintf(&sb, "Sheet: %s\n", sheet)
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " | "))
			if line == "" || strings.Trim(line, "| ") == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}
