package validator

import (
	"errors"
	"testing"

	"github.com/valpere/doctran/internal/detector"
)

var det = detector.New()

const englishText = "This is a longer piece of text that should be detected as English."

func TestCheck_EmptyTargetLang(t *testing.T) {
	if err := New(det).Check("Some translated text", ""); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheck_EmptyTranslation(t *testing.T) {
	err := New(det).Check("", "en")
	if !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("expected ErrEmptyOutput, got %v", err)
	}
}

func TestCheck_WhitespaceOnlyTranslation(t *testing.T) {
	err := New(det).Check("   \n", "en")
	if !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("expected ErrEmptyOutput, got %v", err)
	}
}

func TestCheck_ShortText(t *testing.T) {
	if err := New(det).Check("Hi", "uk"); err != nil {
		t.Errorf("short text should pass unchecked, got %v", err)
	}
}

func TestCheck_EnglishToEnglish(t *testing.T) {
	if err := New(det).Check(englishText, "en"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheck_MismatchedLanguage(t *testing.T) {
	err := New(det).Check(englishText, "uk")

	var mismatch *MismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected MismatchError, got %v", err)
	}
	if mismatch.Want != "uk" || mismatch.Detected != "en" {
		t.Errorf("unexpected mismatch %+v", mismatch)
	}
}

func TestCheck_UkrainianText(t *testing.T) {
	text := "Це є тестовий текст українською мовою для перевірки роботи валідатора."
	if err := New(det).Check(text, "uk"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheck_CaseInsensitiveTargetLang(t *testing.T) {
	if err := New(det).Check(englishText, "EN"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCheck_RegionalVariant(t *testing.T) {
	if err := New(det).Check(englishText, "en-GB"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

type fixedDetector struct {
	code string
	ok   bool
}

func (f fixedDetector) DetectISO(string) (string, bool) { return f.code, f.ok }

func TestCheck_UndetectablePasses(t *testing.T) {
	v := New(fixedDetector{ok: false})
	if err := v.Check(englishText, "fr"); err != nil {
		t.Errorf("undetectable text should pass, got %v", err)
	}
}
