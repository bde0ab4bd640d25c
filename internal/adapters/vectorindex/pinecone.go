package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Pinecone client defaults.
const (
	defaultPineconeTimeout = 10 * time.Second
	pineconeErrorBodySize  = 4 << 10
)

// PineconeOption applies a configuration option to the Pinecone client.
type PineconeOption func(*Pinecone)

// WithNamespace scopes all operations to a namespace.
func WithNamespace(ns string) PineconeOption {
	return func(p *Pinecone) {
		p.namespace = ns
	}
}

// WithPineconeTimeout sets the HTTP request timeout.
func WithPineconeTimeout(d time.Duration) PineconeOption {
	return func(p *Pinecone) {
		if d > 0 {
			p.httpClient.Timeout = d
		}
	}
}

// WithPineconeHTTPClient swaps the underlying HTTP client.
func WithPineconeHTTPClient(hc *http.Client) PineconeOption {
	return func(p *Pinecone) {
		if hc != nil {
			p.httpClient = hc
		}
	}
}

// Pinecone implements Index against a Pinecone index's REST endpoint.
type Pinecone struct {
	baseURL    string
	apiKey     string
	namespace  string
	httpClient *http.Client
}

// NewPinecone creates a client for the index host at baseURL.
func NewPinecone(baseURL, apiKey string, opts ...PineconeOption) *Pinecone {
	p := &Pinecone{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultPineconeTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name identifies the index.
func (p *Pinecone) Name() string { return "pinecone" }

// Query runs a similarity search with the coarse metadata filter.
func (p *Pinecone) Query(ctx context.Context, vector []float64, filter Filter, topK int) ([]Match, error) {
	payload := map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": true,
	}
	if p.namespace != "" {
		payload["namespace"] = p.namespace
	}
	if f := buildFilter(filter); f != nil {
		payload["filter"] = f
	}

	var parsed queryResponse
	if err := p.post(ctx, "/query", payload, &parsed); err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(parsed.Matches))
	for _, hit := range parsed.Matches {
		if err := hit.Metadata.Validate(); err != nil {
			return nil, fmt.Errorf("match %s: %w", hit.ID, err)
		}
		matches = append(matches, Match{
			ID:         hit.ID,
			Similarity: hit.Score,
			Metadata:   hit.Metadata,
		})
	}
	return matches, nil
}

// Upsert stores a vector with its metadata.
func (p *Pinecone) Upsert(ctx context.Context, id string, vector []float64, meta Metadata) error {
	payload := map[string]any{
		"vectors": []map[string]any{{
			"id":       id,
			"values":   vector,
			"metadata": meta,
		}},
	}
	if p.namespace != "" {
		payload["namespace"] = p.namespace
	}
	return p.post(ctx, "/vectors/upsert", payload, nil)
}

// Delete removes a vector.
func (p *Pinecone) Delete(ctx context.Context, id string) error {
	payload := map[string]any{
		"ids": []string{id},
	}
	if p.namespace != "" {
		payload["namespace"] = p.namespace
	}
	return p.post(ctx, "/vectors/delete", payload, nil)
}

func (p *Pinecone) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, pineconeErrorBodySize))
		return fmt.Errorf("%w: %s status %d: %s", ErrUnavailable, path, resp.StatusCode, string(snippet))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", ErrUnavailable, path, err)
	}
	return nil
}

// buildFilter translates the coarse filter into Pinecone's metadata filter
// syntax. Categorical predicates only; numeric ranges stay downstream.
func buildFilter(f Filter) map[string]any {
	if f.Empty() {
		return nil
	}
	clause := make(map[string]any, 2)
	if len(f.Categories) > 0 {
		cats := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			cats = append(cats, string(c))
		}
		clause["category"] = map[string]any{"$in": cats}
	}
	if f.Gender != "" {
		clause["gender"] = map[string]any{"$eq": string(f.Gender)}
	}
	return clause
}

type queryResponse struct {
	Matches []struct {
		ID       string   `json:"id"`
		Score    float64  `json:"score"`
		Metadata Metadata `json:"metadata"`
	} `json:"matches"`
}
