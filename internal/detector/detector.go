// Package detector wraps lingua-go to guess the language of extracted text.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector over all languages known to lingua. Building is
// expensive; reuse the instance for a whole run.
func New() *Detector {
	return NewWithDistance(0)
}

// NewWithDistance is New with a minimum relative distance in [0, 0.99]. A
// positive distance makes the detector refuse to answer when the two best
// candidates are too close to call.
func NewWithDistance(distance float64) *Detector {
	builder := lingua.NewLanguageDetectorBuilder().FromAllLanguages()
	if distance > 0 {
		builder = builder.WithMinimumRelativeDistance(distance)
	}
	return &Detector{detector: builder.Build()}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the lower-case ISO 639-1 code of text, or false when the
// language could not be determined.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok || lang == lingua.Unknown {
		return "", false
	}
	return strings.ToLower(lang.IsoCode639_1().String()), true
}
