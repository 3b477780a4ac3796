// Package placeholder keeps untranslatable spans (code, markup, links,
// addresses and template variables) away from the translation service by
// replacing them with numbered markers ([PH0], [PH1], …) and putting them
// back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
)

// Patterns run in this order; earlier ones win, so a URL inside a code span
// stays part of the span.
var patterns = []*regexp.Regexp{
	regexp.MustCompile("(?s)```.*?```"),
	regexp.MustCompile("`[^`\n]+`"),
	regexp.MustCompile(`</?[A-Za-z][^<>]*>`),
	regexp.MustCompile(`https?://[^\s<>"]*[^\s<>".,;:!?)\]]`),
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\$\{[A-Za-z0-9_.]+\}|\{\{[^{}]*\}\}|%[sdv]\b`),
}

// Services sometimes add spaces or change case inside a marker.
var reMarker = regexp.MustCompile(`(?i)\[\s*PH\s*(\d+)\s*\]`)

// Protect replaces protected spans with markers in order of appearance per
// pattern. It returns the new text and the originals, indexed by marker.
func Protect(text string) (string, []string) {
	var originals []string
	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(originals))
		originals = append(originals, match)
		return id
	}
	for _, re := range patterns {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	return text, originals
}

// Restore puts the originals back. Unknown indices are left as they are.
func Restore(text string, originals []string) string {
	if len(originals) == 0 {
		return text
	}
	return reMarker.ReplaceAllStringFunc(text, func(match string) string {
		idx, ok := markerIndex(match)
		if !ok || idx >= len(originals) {
			return match
		}
		return originals[idx]
	})
}

// Missing returns the indices of markers that do not appear in text.
func Missing(text string, originals []string) []int {
	seen := make(map[int]bool, len(originals))
	for _, m := range reMarker.FindAllString(text, -1) {
		if idx, ok := markerIndex(m); ok {
			seen[idx] = true
		}
	}
	var missing []int
	for i := range originals {
		if !seen[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

// InstructionHint is appended to LLM prompts so markers survive.
func InstructionHint() string {
	return "Keep every [PHn] marker exactly as it appears; do not translate, move or remove it."
}

func markerIndex(marker string) (int, bool) {
	sub := reMarker.FindStringSubmatch(marker)
	if len(sub) < 2 {
		return 0, false
	}
	idx, err := strconv.Atoi(sub[1])
	if err != nil {
		return 0, false
	}
	return idx, true
}
