// Package embedclient is the reference implementation of the embedder
// boundary: a callable embed(text) -> vector with a fixed dimensionality.
// The retrieval components only need the hybrid.Embedder signature; this
// adapter exists so the repository runs end to end against any
// OpenAI-compatible embeddings endpoint without extra wiring.
package embedclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/regcore/internal/errs"
)

// Config configures the reference embedder client.
type Config struct {
	APIKey     string
	Model      string // e.g. "text-embedding-3-small"
	Dimension  int    // must match the regulation's stored vector_dimension
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
	BaseURL    string       // optional, for tests / self-hosted endpoints
	HTTPClient *http.Client // optional (tests)
}

const (
	defaultModel      = "text-embedding-3-small"
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
	defaultTimeout    = 30 * time.Second
)

// Client calls an OpenAI-compatible embeddings endpoint, satisfying
// hybrid.Embedder.
type Client struct {
	client     openai.Client
	model      string
	dimension  int
	maxRetries int
	retryDelay time.Duration
}

// New builds a Client from cfg, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		client:     openai.NewClient(opts...),
		model:      cfg.Model,
		dimension:  cfg.Dimension,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
	}
}

// Dimension returns the embedding dimensionality this client was
// configured for.
func (c *Client) Dimension() int {
	return c.dimension
}

// Embed turns text into its embedding vector, retrying transient
// provider failures before reporting an external failure.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	var out []float32

	err := retry.Do(
		func() error {
			params := openai.EmbeddingNewParams{
				Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
				Model: openai.EmbeddingModel(c.model),
			}
			if c.dimension > 0 {
				params.Dimensions = openai.Int(int64(c.dimension))
			}

			resp, err := c.client.Embeddings.New(ctx, params)
			if err != nil {
				return err
			}
			if len(resp.Data) == 0 {
				return fmt.Errorf("embeddings response contained no vectors")
			}

			vec := resp.Data[0].Embedding
			out = make([]float32, len(vec))
			for i, v := range vec {
				out[i] = float32(v)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.maxRetries)),
		retry.Delay(c.retryDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w: %v", errs.ErrExternal, err)
	}
	if c.dimension > 0 && len(out) != c.dimension {
		return nil, fmt.Errorf("embedder returned dimension %d, configured for %d: %w", len(out), c.dimension, errs.ErrIntegrity)
	}
	return out, nil
}
