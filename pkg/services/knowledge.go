package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"NutriGuide/pkg/cache"
	"NutriGuide/pkg/config"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Snippet is one knowledge-base hit returned to the chat flow.
type Snippet struct {
	Title  string  `json:"title"`
	Text   string  `json:"text"`
	Score  float64 `json:"score"`
	Source string  `json:"source"`
}

// KnowledgeService searches a Qdrant collection of nutrition reference
// material. Search failures are reported as errors but callers treat
// them as "no snippets"; a chat answer never depends on the vector DB
// being up.
type KnowledgeService struct {
	baseURL    string
	apiKey     string
	collection string
	limit      int
	embedder   Embedder
	results    *cache.Cache
	log        *zap.Logger
}

func NewKnowledgeService(embedder Embedder, log *zap.Logger) *KnowledgeService {
	if log == nil {
		log = zap.NewNop()
	}
	return &KnowledgeService{
		baseURL:    strings.TrimRight(config.QdrantURL, "/"),
		apiKey:     config.QdrantAPIKey,
		collection: config.QdrantCollection,
		limit:      config.KnowledgeSearchLimit,
		embedder:   embedder,
		results:    cache.New(256),
		log:        log,
	}
}

// Enabled reports whether a Qdrant endpoint is configured at all.
func (s *KnowledgeService) Enabled() bool {
	return s.baseURL != ""
}

// Search embeds the query and runs a points/search against the
// configured collection. Results are cached per normalized query.
func (s *KnowledgeService) Search(ctx context.Context, query string) ([]Snippet, error) {
	if !s.Enabled() {
		return nil, nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	key := cache.Key("knowledge", strings.ToLower(query))
	if v, ok := s.results.Get(key); ok {
		if snippets, ok := v.([]Snippet); ok {
			return snippets, nil
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	snippets, err := s.search(ctx, vector)
	if err != nil {
		return nil, err
	}

	s.results.Set(key, snippets, time.Duration(config.KnowledgeCacheTTLSeconds)*time.Second)
	return snippets, nil
}

func (s *KnowledgeService) search(ctx context.Context, vector []float64) ([]Snippet, error) {
	payload := map[string]any{
		"vector":       vector,
		"limit":        s.limit,
		"with_payload": true,
	}
	body, _ := json.Marshal(payload)

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Api-Key", s.apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("qdrant read: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBytes)))
	}

	var parsed struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("qdrant decode: %w", err)
	}

	snippets := make([]Snippet, 0, len(parsed.Result))
	for _, r := range parsed.Result {
		sn := Snippet{Score: r.Score}
		if v, ok := r.Payload["title"].(string); ok {
			sn.Title = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			sn.Text = v
		} else if v, ok := r.Payload["content"].(string); ok {
			sn.Text = v
		}
		if v, ok := r.Payload["source"].(string); ok {
			sn.Source = v
		}
		if strings.TrimSpace(sn.Text) == "" {
			continue
		}
		snippets = append(snippets, sn)
	}
	s.log.Debug("knowledge search", zap.Int("hits", len(snippets)))
	return snippets, nil
}
