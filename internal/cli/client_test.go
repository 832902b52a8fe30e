package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func TestClient_Ask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/ask" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req models.AskRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		_ = json.NewEncoder(w).Encode(models.AskResponse{Answer: "echo: " + req.Query, Query: req.Query})
	}))
	defer server.Close()

	c := NewClient(server.URL+"/", nil)
	resp, err := c.Ask(context.Background(), models.AskRequest{Query: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "echo: hello" {
		t.Errorf("answer = %q", resp.Answer)
	}
}

func TestClient_Upload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, h, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.IngestResult{Filename: h.Filename, Chunks: 1})
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("some text"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := NewClient(server.URL, nil).Upload(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Filename != "notes.txt" || res.Chunks != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"document already ingested"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, nil).Status(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "document already ingested" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	if _, err := NewClient(url, nil).Status(context.Background()); err == nil {
		t.Error("expected error for closed server")
	}
}
