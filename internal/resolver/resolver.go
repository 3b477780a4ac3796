// Package resolver decides which source language a piece of text is in:
// the requested one, a detected one, a memoized fallback, or one the user
// picks when detection fails.
package resolver

import (
	"context"
	"log/slog"
	"strings"

	"github.com/valpere/doctran/internal"
	"github.com/valpere/doctran/internal/runstate"
)

// sampleRunes bounds the excerpt shown to the user when asking for a language.
const sampleRunes = 200

// Detector guesses the language of text. detector.Detector implements it.
type Detector interface {
	DetectISO(text string) (string, bool)
}

// Prompter asks the user for a language when detection fails. An empty
// lang, or an error, means the user declined. useForAll asks the resolver to
// reuse lang for every later detection failure of the run.
type Prompter interface {
	ChooseLanguage(ctx context.Context, sample string) (lang string, useForAll bool, err error)
}

type Resolver struct {
	det    Detector
	prompt Prompter
	state  *runstate.State
	logger *slog.Logger
}

// New builds a resolver. prompt may be nil for non-interactive runs, in
// which case undetectable text stays unresolved.
func New(det Detector, prompt Prompter, state *runstate.State, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{det: det, prompt: prompt, state: state, logger: logger}
}

// Resolve returns the source language for text. A requested language other
// than "auto" wins without detection. It reports false when no language
// could be determined.
func (r *Resolver) Resolve(ctx context.Context, text, requested string) (string, bool) {
	requested = strings.ToLower(strings.TrimSpace(requested))
	if requested != "" && requested != internal.AutoLanguage {
		return requested, true
	}

	if lang, ok := r.det.DetectISO(text); ok {
		r.logger.Debug("language detected", "lang", lang)
		return lang, true
	}

	if lang, ok := r.state.Fallback(); ok {
		r.logger.Debug("using memoized fallback language", "lang", lang)
		return lang, true
	}

	if r.prompt == nil {
		r.logger.Debug("language undetected and prompting disabled")
		return "", false
	}

	lang, useForAll, err := r.prompt.ChooseLanguage(ctx, sample(text))
	if err != nil {
		r.logger.Warn("language prompt failed", "error", err)
		return "", false
	}
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return "", false
	}
	if useForAll && r.state.Memoize(lang) {
		r.logger.Info("fallback language set for the rest of the run", "lang", lang)
	}
	return lang, true
}

func sample(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= sampleRunes {
		return text
	}
	return string(runes[:sampleRunes]) + "…"
}
