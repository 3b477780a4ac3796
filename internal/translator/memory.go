package translator

import (
	"context"
	"log/slog"
)

// Memory is a translation memory keyed by source text and language pair.
// internal/store implements it on SQLite.
type Memory interface {
	GetCachedTranslation(ctx context.Context, sourceText, sourceLang, targetLang string) (string, bool, error)
	SaveToMemory(ctx context.Context, sourceText, sourceLang, targetLang, finalText, serviceUsed string) error
}

// MemoryService answers from the translation memory when it can and stores
// every fresh translation. Memory errors are logged, never returned: a broken
// cache must not fail a translation.
type MemoryService struct {
	next   TranslationService
	mem    Memory
	logger *slog.Logger
}

func WithMemory(next TranslationService, mem Memory, logger *slog.Logger) *MemoryService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MemoryService{next: next, mem: mem, logger: logger}
}

func (m *MemoryService) Name() string {
	return m.next.Name()
}

func (m *MemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	cached, found, err := m.mem.GetCachedTranslation(ctx, req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		m.logger.Warn("translation memory lookup failed", "error", err)
	} else if found {
		return &ServiceResult{
			ServiceName:    m.Name(),
			TranslatedText: cached,
			Confidence:     1.0,
			Cached:         true,
		}, nil
	}

	res, err := m.next.Translate(ctx, cfg, req)
	if err != nil {
		return res, err
	}

	if err := m.mem.SaveToMemory(ctx, req.Text, req.SourceLang, req.TargetLang, res.TranslatedText, res.ServiceName); err != nil {
		m.logger.Warn("translation memory save failed", "error", err)
	}
	return res, nil
}

func (m *MemoryService) IsAvailable(ctx context.Context) error {
	return m.next.IsAvailable(ctx)
}
