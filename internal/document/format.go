// Package document reads and writes the file formats doctran translates
// and discovers them under an input root.
package document

import (
	"path/filepath"
	"strings"
)

// Format is how a file is treated by the processor.
type Format int

const (
	// Passthrough files are copied to the output untranslated.
	Passthrough Format = iota
	// PlainText is read and written as UTF-8 text.
	PlainText
	// PDF is read as text; the output is plain text.
	PDF
	// DOCX is translated paragraph by paragraph in place.
	DOCX
)

func (f Format) String() string {
	switch f {
	case PlainText:
		return "text"
	case PDF:
		return "pdf"
	case DOCX:
		return "docx"
	default:
		return "passthrough"
	}
}

var formatsByExt = map[string]Format{
	".txt":  PlainText,
	".pdf":  PDF,
	".docx": DOCX,
}

// FormatOf classifies path by its extension, case-insensitively.
func FormatOf(path string) Format {
	if f, ok := formatsByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return Passthrough
}

// Supported reports whether discovery picks up path.
func Supported(path string) bool {
	return FormatOf(path) != Passthrough
}

// OutputPath maps a relative input path to its relative output path. PDFs
// have no writer and become .txt; everything else keeps its name.
func OutputPath(rel string) string {
	if FormatOf(rel) == PDF {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + ".txt"
	}
	return rel
}
