// Package i18n translates doctran's own console messages.
//
// Catalogs are gettext .po files embedded in the binary, one per language
// under locales/{lang}/LC_MESSAGES/doctran.po. Without Init, or for a
// language with no catalog, T and N return the English message ids.
package i18n

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
)

//go:embed all:locales
var locales embed.FS

const domain = "doctran"

var (
	mu      sync.RWMutex
	po      *gotext.Locale
	current string
)

// Init loads the catalog for lang. An empty lang is read from LANGUAGE,
// LC_ALL, LC_MESSAGES and LANG, in that order.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	l := gotext.NewLocaleFSWithPath(lang, locales, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)

	mu.Lock()
	po, current = l, lang
	mu.Unlock()
}

// T translates msgid and formats it with vars, printf style.
func T(msgid string, vars ...any) string {
	mu.RLock()
	l := po
	mu.RUnlock()
	if l == nil {
		return sprintf(msgid, vars...)
	}
	return l.Get(msgid, vars...)
}

// N picks the plural form for n and formats it with vars.
func N(singular, plural string, n int, vars ...any) string {
	mu.RLock()
	l := po
	mu.RUnlock()
	if l == nil {
		if n == 1 {
			return sprintf(singular, vars...)
		}
		return sprintf(plural, vars...)
	}
	return l.GetN(singular, plural, n, vars...)
}

// Language reports the loaded catalog language, "" before Init.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func sprintf(format string, vars ...any) string {
	if len(vars) == 0 {
		return format
	}
	return fmt.Sprintf(format, vars...)
}

func detectLanguage() string {
	for _, env := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		val := os.Getenv(env)
		if val == "" {
			continue
		}
		if env == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		// ru_RU.UTF-8 -> ru_RU
		if i := strings.IndexByte(val, '.'); i >= 0 {
			val = val[:i]
		}
		if val == "C" || val == "POSIX" || val == "" {
			continue
		}
		return val
	}
	return "en"
}
