package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFReader extracts plain text page by page
type PDFReader struct{}

// ReadPages returns the text of every page that has content. Malformed files
// can make the parser panic; that is reported as an error.
func (PDFReader) ReadPages(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("parse pdf %s: %v", filepath.Base(path), r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages = make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// TextReader reads plain text documents; form feeds separate pages
type TextReader struct{}

// ReadPages splits the file on form feeds
func (TextReader) ReadPages(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read text document: %w", err)
	}
	return strings.Split(string(data), "\f"), nil
}

// DocumentReaders picks a reader by file extension
type DocumentReaders map[string]DocumentReader

// DefaultDocumentReaders knows PDF and plain text
func DefaultDocumentReaders() DocumentReaders {
	return DocumentReaders{
		"pdf": PDFReader{},
		"txt": TextReader{},
	}
}

// ReadPages dispatches on the extension of path
func (d DocumentReaders) ReadPages(path string) ([]string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	reader, ok := d[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDocument, ext)
	}
	return reader.ReadPages(path)
}
