package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultOpenRouterModel = "mistralai/mistral-nemo:free"

type OpenRouterService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewOpenRouterService(apiKey, baseURL, model string) *OpenRouterService {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if model == "" {
		model = DefaultOpenRouterModel
	}
	return &OpenRouterService{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OpenRouterService) Name() string {
	return "openrouter"
}

func (s *OpenRouterService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()
	ctx, cancel := cfg.requestContext(ctx)
	defer cancel()

	apiKey := s.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		return fail(result, KindAuth, fmt.Errorf("OpenRouter API key required"))
	}

	model := cfg.Model
	if model == "" {
		model = s.model
	}

	jsonData, err := json.Marshal(map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": llmPrompt(req.SourceLang, req.TargetLang)},
			{"role": "user", "content": req.Text},
		},
		"max_tokens": 4096,
	})
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("X-Title", "doctran")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, KindNetwork, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, statusKind(resp.StatusCode), fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var openrouterResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openrouterResp); err != nil {
		return fail(result, KindProvider, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(openrouterResp.Choices) == 0 {
		return fail(result, KindEmptyResult, fmt.Errorf("empty response from API"))
	}

	text := cleanLLMOutput(openrouterResp.Choices[0].Message.Content)
	if text == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("empty response from model %s", model))
	}

	result.TranslatedText = text
	result.Confidence = 0.7
	result.Metadata = map[string]string{
		"model":             model,
		"prompt_tokens":     fmt.Sprintf("%d", openrouterResp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", openrouterResp.Usage.CompletionTokens),
	}

	return result, nil
}

func (s *OpenRouterService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}
