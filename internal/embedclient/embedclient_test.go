package embedclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackzampolin/regcore/internal/errs"
)

func embeddingsServer(t *testing.T, vector []float64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 0, "embedding": vector},
			},
			"usage": map[string]any{"prompt_tokens": 4, "total_tokens": 4},
		})
	}))
}

func TestEmbedReturnsVector(t *testing.T) {
	srv := embeddingsServer(t, []float64{0.1, 0.2, 0.3})
	defer srv.Close()

	c := New(Config{APIKey: "test", BaseURL: srv.URL, Dimension: 3})
	vec, err := c.Embed(context.Background(), "电压质量要求")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 {
		t.Fatalf("len(vec) = %d, want 3", len(vec))
	}
	if vec[0] != float32(0.1) {
		t.Errorf("vec[0] = %v, want 0.1", vec[0])
	}
}

func TestEmbedRejectsDimensionMismatch(t *testing.T) {
	srv := embeddingsServer(t, []float64{0.1, 0.2})
	defer srv.Close()

	c := New(Config{APIKey: "test", BaseURL: srv.URL, Dimension: 3, MaxRetries: 1})
	if _, err := c.Embed(context.Background(), "text"); !errs.Is(err, errs.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity for dimension mismatch, got %v", err)
	}
}

func TestEmbedWrapsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{APIKey: "test", BaseURL: srv.URL, MaxRetries: 1})
	if _, err := c.Embed(context.Background(), "text"); !errs.Is(err, errs.ErrExternal) {
		t.Fatalf("expected ErrExternal, got %v", err)
	}
}
