// Package chunker splits text that is too long for one provider call into
// pieces that can be translated independently and joined back with the
// original layout.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultMaxRunes keeps each request under the common 5000 character limit
// of free translation APIs.
const DefaultMaxRunes = 4500

// Chunk is one piece of text plus the whitespace that followed it in the
// source. Joining every Text+Sep reproduces the source modulo trimming.
type Chunk struct {
	Text string
	Sep  string
}

// Split breaks text into chunks of at most maxRunes code points. Splits are
// attempted, in order of preference, at:
//  1. Paragraph boundaries (a blank line)
//  2. Sentence-ending punctuation followed by whitespace
//  3. Any whitespace
//  4. A hard cut at maxRunes
//
// maxRunes <= 0 means unlimited. Whitespace-only input yields no chunks.
func Split(text string, maxRunes int) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []Chunk{{Text: text}}
	}

	var chunks []Chunk
	for len(runes) > maxRunes {
		cut := findSplit(runes[:maxRunes])
		piece := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)

		rest := runes[cut:]
		skip := 0
		for skip < len(rest) && unicode.IsSpace(rest[skip]) {
			skip++
		}
		// A hard cut inside a word leaves sep empty.
		sep := string(runes[len([]rune(piece)):cut]) + string(rest[:skip])
		chunks = append(chunks, Chunk{Text: piece, Sep: sep})
		runes = rest[skip:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, Chunk{Text: string(runes)})
	}
	return chunks
}

// Join glues translated chunk texts back together with the separators of
// the source chunks. texts and chunks must have the same length.
func Join(chunks []Chunk, texts []string) string {
	var b strings.Builder
	for i, c := range chunks {
		b.WriteString(texts[i])
		b.WriteString(c.Sep)
	}
	return b.String()
}

// findSplit returns the rune count to consume from window.
func findSplit(window []rune) int {
	// Paragraph boundary: the last blank line.
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && isBlankLineBefore(window, i) {
			return i + 1
		}
	}

	// Sentence end followed by whitespace.
	for i := len(window) - 2; i > 0; i-- {
		switch window[i] {
		case '.', '!', '?', '。', '！', '？':
			if unicode.IsSpace(window[i+1]) {
				return i + 1
			}
		}
	}

	// Word boundary.
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i
		}
	}

	return len(window)
}

// isBlankLineBefore reports whether the newline at i closes an empty line,
// i.e. only spaces or tabs sit between it and the previous newline.
func isBlankLineBefore(window []rune, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch window[j] {
		case '\n':
			return j > 0
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return false
}
