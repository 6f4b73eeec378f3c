package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"NutriGuide/pkg/config"
)

var (
	ErrGeminiDisabled = errors.New("gemini is disabled via config")
	// ErrGenerationFailed wraps every upstream failure: network error,
	// non-2xx status, or an unusable body. Callers never retry; they may
	// resubmit as a fresh attempt.
	ErrGenerationFailed = errors.New("generation failed")
)

type GeminiService struct {
	apiKey  string
	model   string
	enabled bool
	log     *zap.Logger
}

func NewGeminiService(log *zap.Logger) *GeminiService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GeminiService{
		apiKey:  config.GeminiAPIKey,
		model:   config.GeminiModel,
		enabled: config.IsGeminiEnabled,
		log:     log,
	}
}

// Content is one turn of model context; Role is "user" or "model".
type Content struct {
	Role string
	Text string
}

type GenerateRequest struct {
	System          string
	Contents        []Content
	Temperature     float64
	MaxOutputTokens int
}

// GenerateText asks for a completion of a single user prompt.
func (s *GeminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	return s.Generate(ctx, GenerateRequest{
		Contents:        []Content{{Role: "user", Text: prompt}},
		Temperature:     0.6,
		MaxOutputTokens: 1024,
	})
}

// Generate calls generateContent, trying the configured model first and
// falling back to the default one. A single re-attempt happens only on
// retriable statuses (429/503).
func (s *GeminiService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if !s.enabled {
		s.log.Warn("gemini disabled via config")
		return "", fmt.Errorf("%w: %s", ErrGenerationFailed, ErrGeminiDisabled)
	}
	if strings.TrimSpace(s.apiKey) == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY is not set", ErrGenerationFailed)
	}

	body, err := json.Marshal(buildPayload(req))
	if err != nil {
		return "", fmt.Errorf("%w: marshal payload: %v", ErrGenerationFailed, err)
	}

	var tried []string
	for _, m := range modelAttempts(s.model) {
		text, err := s.callGenerateContent(ctx, m, body)
		if err != nil && isRetriable(err) {
			sleepWithContext(ctx, 2*time.Second)
			text, err = s.callGenerateContent(ctx, m, body)
		}
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if err != nil {
			tried = append(tried, fmt.Sprintf("%s -> %v", m, err))
			s.log.Warn("gemini model failed", zap.String("model", m), zap.Error(err))
		}
	}

	return "", fmt.Errorf("%w: all models failed: %s", ErrGenerationFailed, strings.Join(tried, "; "))
}

const fallbackModel = "gemini-2.0-flash"

// modelAttempts lists the models to try in order, dropping blanks and
// the fallback when it duplicates the configured model.
func modelAttempts(configured string) []string {
	attempts := make([]string, 0, 2)
	if m := strings.TrimSpace(configured); m != "" {
		attempts = append(attempts, m)
	}
	if len(attempts) == 0 || attempts[0] != fallbackModel {
		attempts = append(attempts, fallbackModel)
	}
	return attempts
}

// Embed returns the embedding vector for text, used for knowledge-base
// queries. Long inputs are clipped to stay under the API limit.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if len(text) > 25000 {
		text = text[:25000]
	}

	payload := map[string]any{
		"model": "models/" + config.EmbeddingModel,
		"content": map[string]any{
			"parts": []any{map[string]any{"text": text}},
		},
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1/models/%s:embedContent?key=%s", config.EmbeddingModel, s.apiKey)
	respBytes, status, err := s.post(ctx, url, body, "application/json")
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("embed status %d: %s", status, strings.TrimSpace(string(respBytes)))
	}

	var parsed struct {
		Embedding struct {
			Values []float64 `json:"values"`
		} `json:"embedding"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	if len(parsed.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding in response")
	}
	return parsed.Embedding.Values, nil
}

// Forward relays a raw generateContent payload upstream on behalf of the
// proxy endpoint and hands back the upstream status and body untouched.
func (s *GeminiService) Forward(ctx context.Context, model string, body []byte) (int, []byte, error) {
	if strings.TrimSpace(model) == "" {
		model = s.model
	}
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, s.apiKey)
	respBytes, status, err := s.post(ctx, url, body, "application/json")
	if err != nil {
		return 0, nil, err
	}
	return status, respBytes, nil
}

func buildPayload(req GenerateRequest) map[string]any {
	contents := make([]any, 0, len(req.Contents))
	for _, c := range req.Contents {
		role := strings.ToLower(strings.TrimSpace(c.Role))
		if role != "user" && role != "model" {
			role = "user"
		}
		contents = append(contents, map[string]any{
			"role":  role,
			"parts": []any{map[string]any{"text": c.Text}},
		})
	}
	payload := map[string]any{
		"contents": contents,
		"generationConfig": map[string]any{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxOutputTokens,
			"topK":            40,
			"topP":            0.9,
		},
	}
	if strings.TrimSpace(req.System) != "" {
		payload["systemInstruction"] = map[string]any{
			"parts": []any{map[string]any{"text": req.System}},
		}
	}
	return payload
}

func (s *GeminiService) callGenerateContent(ctx context.Context, model string, body []byte) (string, error) {
	url := fmt.Sprintf("https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent?key=%s", model, s.apiKey)
	s.log.Debug("gemini request", zap.String("model", model))

	respBytes, status, err := s.post(ctx, url, body, "application/json")
	if err != nil {
		return "", err
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("status %d: %s", status, strings.TrimSpace(string(respBytes)))
	}

	text, ok := ExtractCandidateText(respBytes)
	if !ok {
		return "", fmt.Errorf("no candidate text in response")
	}
	return text, nil
}

func (s *GeminiService) post(ctx context.Context, url string, body []byte, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read error: %w", err)
	}
	return respBytes, resp.StatusCode, nil
}

// ExtractCandidateText pulls the first non-empty candidate text out of a
// generateContent response body.
func ExtractCandidateText(respBytes []byte) (string, bool) {
	var parsed map[string]any
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", false
	}
	cands, ok := parsed["candidates"].([]any)
	if !ok || len(cands) == 0 {
		return "", false
	}
	first, ok := cands[0].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok {
		return "", false
	}
	for _, p := range parts {
		if pm, ok := p.(map[string]any); ok {
			if txt, ok := pm["text"].(string); ok && strings.TrimSpace(txt) != "" {
				return txt, true
			}
		}
	}
	return "", false
}

func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	e := strings.ToLower(err.Error())
	if strings.Contains(e, "status 503") || strings.Contains(e, "unavailable") {
		return true
	}
	if strings.Contains(e, "status 429") || strings.Contains(e, "resource_exhausted") || strings.Contains(e, "quota") {
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
