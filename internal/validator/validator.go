// Package validator checks that translated output is written in the
// language that was asked for.
package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// minValidationLength is the rune count below which detection is too noisy
// to act on; shorter output passes unchecked.
const minValidationLength = 20

// ErrEmptyOutput is returned for blank translated text.
var ErrEmptyOutput = errors.New("translation is empty")

// Detector is the subset of detector.Detector the validator needs.
type Detector interface {
	DetectISO(text string) (string, bool)
}

// MismatchError reports output detected in the wrong language.
type MismatchError struct {
	Want     string
	Detected string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s but detected %s", e.Want, e.Detected)
}

// Validator shares its detector with the language resolver, so a run builds
// lingua's models once.
type Validator struct {
	det Detector
}

func New(det Detector) *Validator {
	return &Validator{det: det}
}

// Check returns nil when text looks like targetLang. Text the detector cannot
// place, short text and an empty targetLang all pass. Regional variants
// compare on the base language, so "pt-BR" accepts Portuguese.
func (v *Validator) Check(text, targetLang string) error {
	if targetLang == "" {
		return nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyOutput
	}
	if utf8.RuneCountInString(text) < minValidationLength {
		return nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return nil
	}

	want := baseLanguage(targetLang)
	if !strings.EqualFold(detected, want) {
		return &MismatchError{Want: want, Detected: detected}
	}
	return nil
}

func baseLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i > 0 {
		return code[:i]
	}
	return code
}
