// Package fileproc translates a single file with bounded retries.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/valpere/doctran/internal"
	"github.com/valpere/doctran/internal/chunker"
	"github.com/valpere/doctran/internal/document"
	"github.com/valpere/doctran/internal/translator"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 500 * time.Millisecond
	DefaultAttemptTimeout = 2 * time.Minute
)

// ErrLanguageUnresolved means neither detection nor the user produced a
// source language. Retrying cannot change that, so the file fails at once.
var ErrLanguageUnresolved = errors.New("source language could not be determined")

// Resolver picks the source language for a piece of text.
type Resolver interface {
	Resolve(ctx context.Context, text, requested string) (string, bool)
}

// Checker verifies translated text is in the target language.
type Checker interface {
	Check(text, targetLang string) error
}

type Config struct {
	// OutputRoot is where the relative paths of jobs are mirrored.
	OutputRoot string
	// MaxAttempts per file. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// RetryDelay is the pause between attempts. Negative means none.
	RetryDelay time.Duration
	// AttemptTimeout bounds one provider translation: the whole text of a
	// file, or a single paragraph of a document. Zero disables it.
	AttemptTimeout time.Duration
	// ChunkSize is the longest text, in runes, sent in one provider call.
	ChunkSize int
	// Service is passed through to every provider call.
	Service translator.ServiceConfig
}

// Opener loads a document that is translated one segment at a time.
type Opener func(path string) (document.SegmentedDocument, error)

type Processor struct {
	svc     translator.TranslationService
	resolve Resolver
	check   Checker
	openDoc Opener
	cfg     Config
	logger  *slog.Logger
}

func openDocx(path string) (document.SegmentedDocument, error) {
	return document.OpenDocx(path)
}

// New builds a processor. check may be nil to skip output validation.
func New(svc translator.TranslationService, resolve Resolver, check Checker, cfg Config, logger *slog.Logger) *Processor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = chunker.DefaultMaxRunes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Processor{svc: svc, resolve: resolve, check: check, openDoc: openDocx, cfg: cfg, logger: logger}
}

// Process translates job and reports how it went. It never returns early on
// a per-attempt failure; the outcome carries the last error.
func (p *Processor) Process(ctx context.Context, job internal.TranslationJob) internal.FileOutcome {
	outPath := filepath.Join(p.cfg.OutputRoot, document.OutputPath(job.RelativePath))
	logger := p.logger.With("file", job.SourcePath)

	var attempt func(ctx context.Context) (written bool, err error)
	switch format := document.FormatOf(job.SourcePath); format {
	case document.PlainText, document.PDF:
		reader, err := document.ReaderFor(format)
		if err != nil {
			return internal.FileOutcome{Job: job, Attempts: 1, Err: err}
		}
		attempt = func(ctx context.Context) (bool, error) {
			return p.translateText(ctx, job, reader, outPath)
		}
	case document.DOCX:
		attempt = func(ctx context.Context) (bool, error) {
			return true, p.translateDocx(ctx, job, outPath, logger)
		}
	default:
		attempt = func(ctx context.Context) (bool, error) {
			return true, document.CopyFile(job.SourcePath, outPath)
		}
	}

	outcome := internal.FileOutcome{Job: job}
	for n := 1; n <= p.cfg.MaxAttempts; n++ {
		if n > 1 && !p.wait(ctx) {
			break
		}
		outcome.Attempts = n

		written, err := attempt(ctx)
		if err == nil {
			outcome.Success = true
			outcome.Err = nil
			if written {
				outcome.OutputPath = outPath
			}
			logger.Debug("file translated", "attempts", n, "output", outcome.OutputPath)
			return outcome
		}

		outcome.Err = err
		logger.Warn("translation attempt failed", "attempt", n, "max_attempts", p.cfg.MaxAttempts, "error", err)
		if !retryable(err) {
			break
		}
	}
	return outcome
}

// translateText is one attempt for a text-bearing file. Blank text is a
// success with nothing written.
func (p *Processor) translateText(ctx context.Context, job internal.TranslationJob, reader document.TextReader, outPath string) (bool, error) {
	text, err := reader.ExtractText(job.SourcePath)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	source, ok := p.resolve.Resolve(ctx, text, job.SourceLang)
	if !ok {
		return false, ErrLanguageUnresolved
	}

	translated, err := p.translate(ctx, text, source, job.TargetLang)
	if err != nil {
		return false, err
	}

	if p.check != nil {
		if err := p.check.Check(translated, job.TargetLang); err != nil {
			return false, fmt.Errorf("output validation failed: %w", err)
		}
	}

	if err := document.WriteText(outPath, translated); err != nil {
		return false, err
	}
	return true, nil
}

// translateDocx is one attempt for a Word document. A paragraph that cannot
// be resolved or translated keeps its original text; only opening and
// saving the document decide the attempt. A document interrupted by ctx is
// never saved.
func (p *Processor) translateDocx(ctx context.Context, job internal.TranslationJob, outPath string, logger *slog.Logger) error {
	doc, err := p.openDoc(job.SourcePath)
	if err != nil {
		return err
	}

	translated, kept := 0, 0
	for i, seg := range doc.Segments() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if strings.TrimSpace(seg) == "" {
			continue
		}

		source, ok := p.resolve.Resolve(ctx, seg, job.SourceLang)
		if !ok {
			logger.Warn("paragraph language unresolved, keeping original", "paragraph", i)
			kept++
			continue
		}

		out, err := p.translate(ctx, seg, source, job.TargetLang)
		if err != nil {
			logger.Warn("paragraph translation failed, keeping original", "paragraph", i, "error", err)
			kept++
			continue
		}
		if err := doc.Replace(i, restoreSpacing(seg, out)); err != nil {
			return err
		}
		translated++
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	logger.Debug("document paragraphs processed", "translated", translated, "kept", kept)
	return doc.Save(outPath)
}

// translate sends text in chunks; every chunk must succeed.
func (p *Processor) translate(ctx context.Context, text, source, target string) (string, error) {
	if p.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		defer cancel()
	}

	req := translator.TranslateRequest{
		SourceLang: strings.ToLower(source),
		TargetLang: strings.ToLower(target),
	}

	chunks := chunker.Split(text, p.cfg.ChunkSize)
	outs := make([]string, len(chunks))
	for i, c := range chunks {
		req.Text = c.Text
		res, err := p.svc.Translate(ctx, p.cfg.Service, req)
		if err != nil {
			return "", err
		}
		if res == nil || strings.TrimSpace(res.TranslatedText) == "" {
			return "", translator.NewError(p.svc.Name(), translator.KindEmptyResult, fmt.Errorf("chunk %d of %d came back empty", i+1, len(chunks)))
		}
		outs[i] = res.TranslatedText
	}
	return chunker.Join(chunks, outs), nil
}

// wait sleeps RetryDelay; it reports false if ctx ended first.
func (p *Processor) wait(ctx context.Context) bool {
	if p.cfg.RetryDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(p.cfg.RetryDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryable follows the provider error kinds. Extraction, validation and
// write failures have no kind and count as transient.
func retryable(err error) bool {
	if errors.Is(err, ErrLanguageUnresolved) {
		return false
	}
	return translator.IsRetryable(err)
}

// restoreSpacing carries the leading and trailing whitespace of the source
// paragraph over to its translation; providers trim it.
func restoreSpacing(source, translated string) string {
	lead := source[:len(source)-len(strings.TrimLeftFunc(source, unicode.IsSpace))]
	trail := source[len(strings.TrimRightFunc(source, unicode.IsSpace)):]
	return lead + strings.TrimSpace(translated) + trail
}
