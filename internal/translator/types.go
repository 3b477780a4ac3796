package translator

import (
	"context"
	"time"
)

type ServiceConfig struct {
	Credentials string `mapstructure:"credentials" json:"credentials"`
	APIKey      string `mapstructure:"api_key" json:"api_key"`
	Model       string `mapstructure:"model" json:"model"`
	BaseURL     string `mapstructure:"base_url" json:"base_url"`
	// Timeout bounds a single provider request. Zero leaves only the
	// caller's deadline.
	Timeout   time.Duration `mapstructure:"timeout" json:"timeout"`
	ProjectID string        `mapstructure:"project_id" json:"project_id"`
}

// requestContext applies Timeout to one provider request.
func (c ServiceConfig) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// TranslateRequest carries one block of text. SourceLang is always a
// resolved language code here, never "auto".
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
}

type ServiceResult struct {
	ServiceName    string            `json:"service_name"`
	TranslatedText string            `json:"translated_text"`
	Confidence     float64           `json:"confidence"`
	Metadata       map[string]string `json:"metadata"`
	Latency        time.Duration     `json:"latency"`
	Cached         bool              `json:"cached"`
	Error          string            `json:"error,omitempty"`
}

// TranslationService is the external provider. Implementations return a
// *TranslationError on failure so callers can branch on its Kind.
type TranslationService interface {
	Name() string
	Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error)
	IsAvailable(ctx context.Context) error
}
