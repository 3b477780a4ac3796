package detector

import (
	"testing"
)

func TestDetector_Detect(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantLang: "Ukrainian",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantLang: "German",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantLang: "French",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantLang: "Spanish",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New()

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "",
			wantCode: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Hello, this is a test in English.",
			wantCode: "en",
			wantOK:   true,
		},
		{
			name:     "ukrainian text",
			text:     "Привіт, це тест українською мовою.",
			wantCode: "uk",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Hallo, das ist ein Test auf Deutsch.",
			wantCode: "de",
			wantOK:   true,
		},
		{
			name:     "french text",
			text:     "Bonjour, ceci est un test en français.",
			wantCode: "fr",
			wantOK:   true,
		},
		{
			name:     "spanish text",
			text:     "Hola, esto es una prueba en español.",
			wantCode: "es",
			wantOK:   true,
		},
		{
			name:     "polish text",
			text:     "To jest test po polsku.",
			wantCode: "pl",
			wantOK:   true,
		},
		{
			name:     "russian text",
			text:     "Это тест на русском языке.",
			wantCode: "ru",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.DetectISO(tt.text)
			if ok != tt.wantOK {
				t.Errorf("DetectISO(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("DetectISO(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_WhitespaceOnly(t *testing.T) {
	d := New()

	if code, ok := d.DetectISO(" \n\t "); ok {
		t.Errorf("DetectISO(whitespace) = %q, want no result", code)
	}
}

func TestDetector_NumbersOnly(t *testing.T) {
	d := New()

	// Digits carry no language signal.
	if code, ok := d.DetectISO("12345 67890"); ok {
		t.Errorf("DetectISO(digits) = %q, want no result", code)
	}
}
