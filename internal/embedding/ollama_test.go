package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

func newTestOllama(t *testing.T, url, model string, dims int, opts ...Option) *LangChainEmbedder {
	t.Helper()
	e, err := NewOllamaEmbedder(url, model, dims, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || req.Prompt != "hello" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	e := newTestOllama(t, server.URL+"/", "test-model", 3, WithLogger(zap.NewNop()))
	emb, err := e.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(emb) != 3 {
		t.Errorf("expected 3 dims, got %d", len(emb))
	}
}

func TestOllamaEmbedder_EmbedBatch(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{float32(n)},
		})
	}))
	defer server.Close()

	e := newTestOllama(t, server.URL, "m", 1, WithHTTPClient(server.Client()))
	results, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(results) != 3 || results[0][0] != 1 || results[2][0] != 3 {
		t.Errorf("unexpected results: %v", results)
	}
}

func TestOllamaEmbedder_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"bad json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("{"))
		}},
		{"empty embedding", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{}})
		}},
		{"wrong dimension", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{1, 2}})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()
			e := newTestOllama(t, server.URL, "m", 3)
			if _, err := e.Embed(context.Background(), "test"); !errors.Is(err, ErrEmbedding) {
				t.Errorf("error = %v, want ErrEmbedding", err)
			}
		})
	}
}

func TestOllamaEmbedder_EmptyTextSkipsCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("server should not be called")
	}))
	defer server.Close()
	e := newTestOllama(t, server.URL, "m", 3)
	if _, err := e.Embed(context.Background(), ""); !errors.Is(err, ErrEmbedding) {
		t.Errorf("error = %v, want ErrEmbedding", err)
	}
}

func TestOllamaEmbedder_DefaultModel(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.Model
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float32{1}})
	}))
	defer server.Close()
	if _, err := newTestOllama(t, server.URL, "", 1).Embed(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if got != defaultOllamaModel {
		t.Errorf("model = %q, want %q", got, defaultOllamaModel)
	}
}
