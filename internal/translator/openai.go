package translator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIService translates through the chat completions API of OpenAI or
// any compatible endpoint.
type OpenAIService struct {
	apiKey string
	model  string
	client *openai.Client
}

func NewOpenAIService(apiKey, baseURL, model string) *OpenAIService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIService{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(cfg),
	}
}

func (s *OpenAIService) Name() string {
	return "openai"
}

func (s *OpenAIService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()
	ctx, cancel := cfg.requestContext(ctx)
	defer cancel()

	if s.apiKey == "" {
		return fail(result, KindAuth, fmt.Errorf("OpenAI API key required"))
	}

	model := cfg.Model
	if model == "" {
		model = s.model
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: llmPrompt(req.SourceLang, req.TargetLang)},
			{Role: openai.ChatMessageRoleUser, Content: req.Text},
		},
		Temperature: 0.2,
	})
	if err != nil {
		kind := KindNetwork
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			kind = statusKind(apiErr.HTTPStatusCode)
		case errors.As(err, &reqErr):
			kind = statusKind(reqErr.HTTPStatusCode)
		}
		return fail(result, kind, fmt.Errorf("OpenAI API error: %w", err))
	}
	if len(resp.Choices) == 0 {
		return fail(result, KindEmptyResult, fmt.Errorf("no translation returned"))
	}

	text := cleanLLMOutput(resp.Choices[0].Message.Content)
	if text == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("empty response from model %s", model))
	}

	result.TranslatedText = text
	result.Confidence = 0.8
	result.Metadata = map[string]string{
		"model":        model,
		"total_tokens": fmt.Sprintf("%d", resp.Usage.TotalTokens),
	}

	return result, nil
}

func (s *OpenAIService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}
	return nil
}
