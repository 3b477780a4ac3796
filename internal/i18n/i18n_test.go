package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func resetCatalog(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		mu.Lock()
		po, current = nil, ""
		mu.Unlock()
	})
}

func TestDetectLanguage(t *testing.T) {
	t.Run("LANGUAGE wins and is cut at the first entry", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "uk_UA.UTF-8:en_US")
		t.Setenv("LANG", "de_DE.UTF-8")

		if got := detectLanguage(); got != "uk_UA" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "uk_UA")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LC_ALL", "C")
		t.Setenv("LC_MESSAGES", "POSIX")
		t.Setenv("LANG", "es_ES.UTF-8")

		if got := detectLanguage(); got != "es_ES" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "es_ES")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestFallbackWithoutInit(t *testing.T) {
	resetCatalog(t)
	mu.Lock()
	po = nil
	mu.Unlock()

	if got := T("Report written to %s", "r.yaml"); got != "Report written to r.yaml" {
		t.Errorf("T = %q", got)
	}
	// Called through a func value so vet does not flag the literal %.
	tr := T
	if got := tr("100% done"); got != "100% done" {
		t.Errorf("T without vars must not format, got %q", got)
	}
	if got := N("%d file", "%d files", 1, 1); got != "1 file" {
		t.Errorf("N singular = %q", got)
	}
	if got := N("%d file", "%d files", 3, 3); got != "3 files" {
		t.Errorf("N plural = %q", got)
	}
}

func TestSpanishCatalog(t *testing.T) {
	resetCatalog(t)
	Init("es")

	if got := T("File translated successfully."); got != "Archivo traducido correctamente." {
		t.Errorf("T = %q", got)
	}
	if got := N("%d file could not be translated:", "%d files could not be translated:", 2, 2); got != "2 archivos no se tradujeron:" {
		t.Errorf("N = %q", got)
	}
	if Language() != "es" {
		t.Errorf("Language() = %q", Language())
	}
}

func TestUkrainianPlurals(t *testing.T) {
	resetCatalog(t)
	Init("uk")

	tests := []struct {
		n    int
		want string
	}{
		{1, "Не вдалося перекласти 1 файл:"},
		{3, "Не вдалося перекласти 3 файли:"},
		{5, "Не вдалося перекласти 5 файлів:"},
		{11, "Не вдалося перекласти 11 файлів:"},
	}
	for _, tt := range tests {
		if got := N("%d file could not be translated:", "%d files could not be translated:", tt.n, tt.n); got != tt.want {
			t.Errorf("N(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestUnknownLanguageKeepsEnglish(t *testing.T) {
	resetCatalog(t)
	Init("fr")

	if got := T("Translation complete"); got != "Translation complete" {
		t.Errorf("T = %q", got)
	}
	if got := N("Cancelled after %d of %d file.", "Cancelled after %d of %d files.", 3, 1, 3); got != "Cancelled after 1 of 3 files." {
		t.Errorf("N = %q", got)
	}
}
