package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// SegmentedDocument is a document translated one segment at a time.
type SegmentedDocument interface {
	Segments() []string
	Replace(i int, text string) error
	Save(path string) error
}

var _ SegmentedDocument = (*Docx)(nil)

// ErrNotDocx is returned for zip files without a Word main document part.
var ErrNotDocx = errors.New("not a Word document")

const mainPart = "word/document.xml"

// Docx is a Word document whose paragraphs are the segments. Text runs are
// edited in place inside the original XML; everything else in the package
// (styles, images, relationships) is copied byte for byte on save.
type Docx struct {
	src      string
	parts    []*docxPart
	segments []segmentRef
	replaced map[int]string
}

type docxPart struct {
	name  string
	xml   []byte
	paras []docxParagraph
}

// docxParagraph is a w:p element holding at least one w:t run.
type docxParagraph struct {
	runs []textRun
	text string
}

// textRun locates one w:t element: the open tag and its character data.
type textRun struct {
	tagStart, tagEnd         int
	contentStart, contentEnd int
}

type segmentRef struct {
	part, para int
}

// OpenDocx parses the main document, headers, footers and notes of a .docx
// file. The source file is read again on Save to copy untouched parts.
func OpenDocx(src string) (*Docx, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer zr.Close()

	d := &Docx{src: src, replaced: make(map[int]string)}
	hasMain := false
	for _, f := range zr.File {
		if !isTextPart(f.Name) {
			continue
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s in %s: %w", f.Name, src, err)
		}
		paras, err := parseParagraphs(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s in %s: %w", f.Name, src, err)
		}
		if f.Name == mainPart {
			hasMain = true
		}
		d.parts = append(d.parts, &docxPart{name: f.Name, xml: data, paras: paras})
	}
	if !hasMain {
		return nil, fmt.Errorf("%s: %w", src, ErrNotDocx)
	}

	// Body text first, then headers, footers and notes.
	for i, p := range d.parts {
		if p.name == mainPart && i != 0 {
			d.parts[0], d.parts[i] = d.parts[i], d.parts[0]
			break
		}
	}
	for pi, p := range d.parts {
		for qi := range p.paras {
			d.segments = append(d.segments, segmentRef{part: pi, para: qi})
		}
	}
	return d, nil
}

func isTextPart(name string) bool {
	if name == mainPart {
		return true
	}
	dir, file := path.Split(name)
	if dir != "word/" || path.Ext(file) != ".xml" {
		return false
	}
	for _, prefix := range []string{"header", "footer", "footnotes", "endnotes"} {
		if strings.HasPrefix(file, prefix) {
			return true
		}
	}
	return false
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Segments returns the text of every paragraph, in document order.
func (d *Docx) Segments() []string {
	out := make([]string, len(d.segments))
	for i, ref := range d.segments {
		out[i] = d.parts[ref.part].paras[ref.para].text
	}
	return out
}

// Replace sets the text of segment i. Formatting of the paragraph's first
// run is kept; the other runs of the paragraph are emptied.
func (d *Docx) Replace(i int, text string) error {
	if i < 0 || i >= len(d.segments) {
		return fmt.Errorf("segment %d out of range [0, %d)", i, len(d.segments))
	}
	d.replaced[i] = text
	return nil
}

// Save writes the document with all replacements to dst atomically.
func (d *Docx) Save(dst string) error {
	rewritten := make(map[string][]byte, len(d.parts))
	for pi, p := range d.parts {
		data, err := d.render(pi, p)
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", p.name, err)
		}
		rewritten[p.name] = data
	}

	zr, err := zip.OpenReader(d.src)
	if err != nil {
		return fmt.Errorf("failed to reopen %s: %w", d.src, err)
	}
	defer zr.Close()

	return writeAtomic(dst, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		for _, f := range zr.File {
			data, ok := rewritten[f.Name]
			if !ok {
				if err := zw.Copy(f); err != nil {
					return fmt.Errorf("failed to copy %s: %w", f.Name, err)
				}
				continue
			}
			fw, err := zw.CreateHeader(&zip.FileHeader{
				Name:     f.Name,
				Method:   zip.Deflate,
				Modified: f.Modified,
			})
			if err != nil {
				return err
			}
			if _, err := fw.Write(data); err != nil {
				return err
			}
		}
		return zw.Close()
	})
}

// render rebuilds the XML of part p with the replaced paragraph texts.
func (d *Docx) render(pi int, p *docxPart) ([]byte, error) {
	byPara := make(map[int]string)
	for i, text := range d.replaced {
		if ref := d.segments[i]; ref.part == pi {
			byPara[ref.para] = text
		}
	}
	if len(byPara) == 0 {
		return p.xml, nil
	}

	var buf bytes.Buffer
	last := 0
	for qi, para := range p.paras {
		text, ok := byPara[qi]
		if !ok {
			continue
		}
		for ri, run := range para.runs {
			buf.Write(p.xml[last:run.tagStart])
			tag := p.xml[run.tagStart:run.tagEnd]
			if ri == 0 {
				buf.Write(preserveSpace(tag))
				if err := xml.EscapeText(&buf, []byte(text)); err != nil {
					return nil, err
				}
			} else {
				buf.Write(tag)
			}
			last = run.contentEnd
		}
	}
	buf.Write(p.xml[last:])
	return buf.Bytes(), nil
}

// preserveSpace adds xml:space="preserve" to a w:t open tag so Word keeps
// leading and trailing blanks of the replacement.
func preserveSpace(tag []byte) []byte {
	if bytes.Contains(tag, []byte("xml:space")) {
		return tag
	}
	out := make([]byte, 0, len(tag)+len(` xml:space="preserve"`))
	out = append(out, "<w:t"...)
	out = append(out, ` xml:space="preserve"`...)
	return append(out, tag[len("<w:t"):]...)
}

// parseParagraphs finds the innermost w:p elements of a WordprocessingML
// part and the w:t runs inside each. Paragraphs without runs are dropped.
func parseParagraphs(data []byte) ([]docxParagraph, error) {
	type open struct {
		start  int
		nested bool
	}
	var (
		stack []open
		paras []docxParagraph
	)

	for i := 0; i < len(data); {
		lt := bytes.IndexByte(data[i:], '<')
		if lt < 0 {
			break
		}
		lt += i
		gt := bytes.IndexByte(data[lt:], '>')
		if gt < 0 {
			return nil, fmt.Errorf("unterminated tag at offset %d", lt)
		}
		gt += lt + 1
		tag := data[lt:gt]

		switch {
		case isElement(tag, "<w:p") && !bytes.HasSuffix(tag, []byte("/>")):
			if len(stack) > 0 {
				stack[len(stack)-1].nested = true
			}
			stack = append(stack, open{start: gt})
		case bytes.Equal(tag, []byte("</w:p>")):
			if len(stack) == 0 {
				return nil, fmt.Errorf("unbalanced </w:p> at offset %d", lt)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.nested {
				break
			}
			para, err := parseRuns(data, top.start, lt)
			if err != nil {
				return nil, err
			}
			if len(para.runs) > 0 {
				paras = append(paras, para)
			}
		}
		i = gt
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("%d unclosed paragraphs", len(stack))
	}
	return paras, nil
}

// parseRuns collects the w:t elements between byte offsets start and end.
func parseRuns(data []byte, start, end int) (docxParagraph, error) {
	var para docxParagraph
	var text strings.Builder

	for i := start; i < end; {
		lt := bytes.IndexByte(data[i:end], '<')
		if lt < 0 {
			break
		}
		lt += i
		gt := bytes.IndexByte(data[lt:end], '>')
		if gt < 0 {
			return para, fmt.Errorf("unterminated tag at offset %d", lt)
		}
		gt += lt + 1
		tag := data[lt:gt]

		if !isElement(tag, "<w:t") || bytes.HasSuffix(tag, []byte("/>")) {
			i = gt
			continue
		}
		closeAt := bytes.Index(data[gt:end], []byte("</w:t>"))
		if closeAt < 0 {
			return para, fmt.Errorf("unclosed w:t at offset %d", lt)
		}
		closeAt += gt

		content, err := unescape(data[gt:closeAt])
		if err != nil {
			return para, fmt.Errorf("bad text at offset %d: %w", gt, err)
		}
		text.WriteString(content)
		para.runs = append(para.runs, textRun{tagStart: lt, tagEnd: gt, contentStart: gt, contentEnd: closeAt})
		i = closeAt + len("</w:t>")
	}
	para.text = text.String()
	return para, nil
}

// isElement reports whether tag opens element name exactly, so "<w:p"
// matches <w:p> and <w:p w:rsidR=".."> but not <w:pPr>.
func isElement(tag []byte, name string) bool {
	if !bytes.HasPrefix(tag, []byte(name)) || len(tag) <= len(name) {
		return false
	}
	switch tag[len(name)] {
	case '>', ' ', '/', '\t', '\n', '\r':
		return true
	}
	return false
}

// unescape decodes the character data of a w:t element.
func unescape(raw []byte) (string, error) {
	var v struct {
		Text string `xml:",chardata"`
	}
	doc := make([]byte, 0, len(raw)+7)
	doc = append(doc, "<t>"...)
	doc = append(doc, raw...)
	doc = append(doc, "</t>"...)
	if err := xml.Unmarshal(doc, &v); err != nil {
		return "", err
	}
	return v.Text, nil
}
