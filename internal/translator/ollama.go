package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const DefaultOllamaModel = "llama3.2"

type OllamaTranslator struct {
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaTranslator(baseURL, model string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaTranslator{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (s *OllamaTranslator) Name() string {
	return "ollama"
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

func (s *OllamaTranslator) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()
	ctx, cancel := cfg.requestContext(ctx)
	defer cancel()

	model := cfg.Model
	if model == "" {
		model = s.model
	}

	jsonData, err := json.Marshal(ollamaGenerateRequest{
		Model:  model,
		System: llmPrompt(req.SourceLang, req.TargetLang),
		Prompt: req.Text,
		Stream: false,
	})
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, KindNetwork, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, statusKind(resp.StatusCode), fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return fail(result, KindProvider, fmt.Errorf("failed to decode response: %w", err))
	}

	text := cleanLLMOutput(ollamaResp.Response)
	if text == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("empty response from model %s", model))
	}

	result.TranslatedText = text
	result.Confidence = 0.7
	result.Metadata = map[string]string{"model": model}

	return result, nil
}

func (s *OllamaTranslator) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
