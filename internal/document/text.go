package document

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// TextReader extracts the whole text of a file.
type TextReader interface {
	ExtractText(path string) (string, error)
}

// ReaderFor returns the text reader for a text-bearing format.
func ReaderFor(f Format) (TextReader, error) {
	switch f {
	case PlainText:
		return PlainTextReader{}, nil
	case PDF:
		return PDFReader{}, nil
	default:
		return nil, fmt.Errorf("no text reader for %s files", f)
	}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type PlainTextReader struct{}

func (PlainTextReader) ExtractText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s is not valid UTF-8", path)
	}
	return string(data), nil
}

type PDFReader struct{}

// ExtractText returns the plain text of every page. Scanned PDFs without a
// text layer come back blank.
func (PDFReader) ExtractText(path string) (text string, err error) {
	// The PDF parser panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to parse %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	data, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("failed to read text from %s: %w", path, err)
	}
	return string(data), nil
}
