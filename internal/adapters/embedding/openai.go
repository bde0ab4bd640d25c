package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// OpenAI client defaults.
const (
	defaultBaseURL   = "https://api.openai.com/v1"
	defaultModel     = "text-embedding-3-small"
	defaultTimeout   = 30 * time.Second
	maxBatchSize     = 100
	maxErrorBodySize = 4 << 10
)

// OpenAIOption applies a configuration option to the OpenAI client.
type OpenAIOption func(*OpenAI)

// WithBaseURL overrides the API base URL, e.g. for a proxy or a test server.
func WithBaseURL(url string) OpenAIOption {
	return func(c *OpenAI) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithModel overrides the embedding model.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAI) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *OpenAI) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) OpenAIOption {
	return func(c *OpenAI) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// OpenAI implements Provider against the OpenAI embeddings REST API.
type OpenAI struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI embedding client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAI {
	c := &OpenAI{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		dimension:  Dimension,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider.
func (c *OpenAI) Name() string { return "openai" }

// Dimension returns the configured vector dimension.
func (c *OpenAI) Dimension() int { return c.dimension }

// Embed returns the embedding for one text.
func (c *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch returns one vector per text, in input order. The API caps
// batches, so callers should keep inputs at or below the batch limit.
func (c *OpenAI) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if len(texts) > maxBatchSize {
		return nil, fmt.Errorf("batch of %d exceeds the %d text limit", len(texts), maxBatchSize)
	}

	payload := embeddingsRequest{
		Model:      c.model,
		Input:      texts,
		Dimensions: c.dimension,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embeddings request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embeddings request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var parsed embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, fmt.Errorf("%w: want %d vectors, got %d", ErrUnavailable, len(texts), len(parsed.Data))
	}

	// The API may return items out of order; the index field is canonical.
	sort.Slice(parsed.Data, func(i, j int) bool { return parsed.Data[i].Index < parsed.Data[j].Index })

	vectors := make([][]float64, len(parsed.Data))
	for i, item := range parsed.Data {
		if len(item.Embedding) != c.dimension {
			return nil, fmt.Errorf("%w: want %d, got %d", ErrDimension, c.dimension, len(item.Embedding))
		}
		vectors[i] = item.Embedding
	}
	return vectors, nil
}

func (c *OpenAI) statusError(resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, string(snippet))
	}
}

type embeddingsRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}
