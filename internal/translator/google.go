package translator

import (
	"context"
	"fmt"
	"html"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

type GoogleService struct{}

func NewGoogleService() *GoogleService {
	return &GoogleService{}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()
	ctx, cancel := cfg.requestContext(ctx)
	defer cancel()

	targetTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return fail(result, KindInvalidLanguage, fmt.Errorf("invalid target language %q: %w", req.TargetLang, err))
	}
	opts := &translate.Options{Format: translate.Text}
	// An empty source lets Google detect it.
	if req.SourceLang != "" {
		sourceTag, err := language.Parse(req.SourceLang)
		if err != nil {
			return fail(result, KindInvalidLanguage, fmt.Errorf("invalid source language %q: %w", req.SourceLang, err))
		}
		opts.Source = sourceTag
	}

	var clientOpts []option.ClientOption
	if cfg.Credentials != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.Credentials))
	}
	if cfg.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.APIKey))
	}

	client, err := translate.NewClient(ctx, clientOpts...)
	if err != nil {
		return fail(result, KindAuth, fmt.Errorf("failed to create client: %w", err))
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{req.Text}, targetTag, opts)
	if err != nil {
		return fail(result, KindProvider, fmt.Errorf("translation failed: %w", err))
	}
	if len(translations) == 0 || translations[0].Text == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("no translation returned"))
	}

	// The v2 API escapes entities even in text mode.
	result.TranslatedText = html.UnescapeString(translations[0].Text)
	result.Confidence = 1.0

	return result, nil
}

func (s *GoogleService) IsAvailable(ctx context.Context) error {
	return nil
}
