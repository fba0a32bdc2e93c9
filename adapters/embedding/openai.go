package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"clusterlab/internal/config"
	apperrors "clusterlab/internal/errors"
)

// Client calls an OpenAI-compatible embeddings endpoint. Inputs are
// chunked into batches, batches are fanned out with a bounded errgroup,
// and rate-limited or transient upstream failures are retried with
// exponential back-off.
type Client struct {
	baseURL        string
	apiKey         string
	model          string
	batchSize      int
	maxRetries     int
	maxConcurrency int
	httpClient     *http.Client
}

// NewClient creates an embedding client from configuration.
func NewClient(cfg config.EmbeddingConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		model:          cfg.Model,
		batchSize:      cfg.BatchSize,
		maxRetries:     cfg.MaxRetries,
		maxConcurrency: cfg.MaxConcurrency,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedBatch produces one embedding per input text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.apiKey == "" {
		return nil, apperrors.ConfigInvalid("EMBEDDING_API_KEY is not set")
	}

	out := make([][]float64, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxConcurrency)

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		offset, chunk := start, texts[start:end]
		g.Go(func() error {
			vectors, err := c.embedChunk(gctx, chunk)
			if err != nil {
				return err
			}
			for i, vec := range vectors {
				out[offset+i] = vec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// embedChunk sends one batch, retrying on HTTP 429 and 5xx responses.
func (c *Client) embedChunk(ctx context.Context, texts []string) ([][]float64, error) {
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[Embedding] Retry %d/%d after %v: %v", attempt, c.maxRetries, backoff, lastErr)
			select {
			case <-ctx.Done():
				return nil, apperrors.ExternalServiceError("embedding", ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		vectors, retryable, err := c.doRequest(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, apperrors.ExternalServiceError("embedding", lastErr)
}

func (c *Client) doRequest(ctx context.Context, texts []string) (vectors [][]float64, retryable bool, err error) {
	body, err := json.Marshal(embeddingRequest{Model: c.model, Input: texts})
	if err != nil {
		return nil, false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, truncate(respBody, 200))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, truncate(respBody, 200))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, false, fmt.Errorf("malformed embedding response: %w", err)
	}
	if len(parsed.Data) != len(texts) {
		return nil, false, fmt.Errorf("got %d embeddings for %d inputs", len(parsed.Data), len(texts))
	}

	vectors = make([][]float64, len(texts))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(texts) {
			return nil, false, fmt.Errorf("embedding index %d out of range", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, false, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
