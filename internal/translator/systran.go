package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const systranBaseURL = "https://api-systran-systran-translation-v1.p.rapidapi.com"

type SystranService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewSystranService(apiKey string) *SystranService {
	return &SystranService{
		apiKey:  apiKey,
		baseURL: systranBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SystranService) Name() string {
	return "systran"
}

func (s *SystranService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
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
		return fail(result, KindAuth, fmt.Errorf("Systran API key required"))
	}

	jsonData, err := json.Marshal(map[string]any{
		"input":  []string{req.Text},
		"source": req.SourceLang,
		"target": req.TargetLang,
		"format": "text",
	})
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/translation/text/translate", bytes.NewReader(jsonData))
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-RapidAPI-Key", apiKey)
	httpReq.Header.Set("X-RapidAPI-Host", "api-systran-systran-translation-v1.p.rapidapi.com")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, KindNetwork, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(result, statusKind(resp.StatusCode), fmt.Errorf("API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	var systranResp struct {
		Outputs []struct {
			Output string `json:"output"`
		} `json:"outputs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&systranResp); err != nil {
		return fail(result, KindProvider, fmt.Errorf("failed to decode response: %w", err))
	}
	if len(systranResp.Outputs) == 0 || systranResp.Outputs[0].Output == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("empty translation response"))
	}

	result.TranslatedText = systranResp.Outputs[0].Output
	result.Confidence = 1.0

	return result, nil
}

func (s *SystranService) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("Systran API key not configured")
	}
	return nil
}
