package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const myMemoryBaseURL = "https://api.mymemory.translated.net"

// MyMemoryService is the free MyMemory API (5000 chars/day anonymous,
// more with a contact email).
type MyMemoryService struct {
	email   string
	baseURL string
	client  *http.Client
}

func NewMyMemoryService(email string) *MyMemoryService {
	return &MyMemoryService{
		email:   email,
		baseURL: myMemoryBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *MyMemoryService) Name() string {
	return "mymemory"
}

func (s *MyMemoryService) Translate(ctx context.Context, cfg ServiceConfig, req TranslateRequest) (*ServiceResult, error) {
	result := &ServiceResult{ServiceName: s.Name()}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()
	ctx, cancel := cfg.requestContext(ctx)
	defer cancel()

	q := url.Values{}
	q.Set("q", req.Text)
	q.Set("langpair", fmt.Sprintf("%s|%s", req.SourceLang, req.TargetLang))
	if s.email != "" {
		q.Set("de", s.email)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/get?"+q.Encode(), nil)
	if err != nil {
		return fail(result, KindUnknown, fmt.Errorf("failed to create request: %w", err))
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fail(result, KindNetwork, fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fail(result, statusKind(resp.StatusCode), fmt.Errorf("API returned status %d", resp.StatusCode))
	}

	var mymemResp struct {
		ResponseData struct {
			TranslatedText string  `json:"translatedText"`
			Match          float64 `json:"match"`
		} `json:"responseData"`
		// MyMemory reports some statuses as strings.
		ResponseStatus  json.Number `json:"responseStatus"`
		ResponseDetails string      `json:"responseDetails"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&mymemResp); err != nil {
		return fail(result, KindProvider, fmt.Errorf("failed to decode response: %w", err))
	}

	if status, _ := mymemResp.ResponseStatus.Int64(); status != http.StatusOK {
		return fail(result, statusKind(int(status)), fmt.Errorf("API error: %s (%s)", mymemResp.ResponseDetails, mymemResp.ResponseStatus))
	}
	if mymemResp.ResponseData.TranslatedText == "" {
		return fail(result, KindEmptyResult, fmt.Errorf("empty translation response"))
	}

	result.TranslatedText = mymemResp.ResponseData.TranslatedText
	result.Confidence = min(max(mymemResp.ResponseData.Match, 0), 1)

	return result, nil
}

func (s *MyMemoryService) IsAvailable(ctx context.Context) error {
	return nil
}
