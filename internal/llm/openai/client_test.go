package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("unexpected messages: %+v", req.Messages)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "the summary"}},
			},
		})
	}))
	defer server.Close()

	client := New("key-1", "gpt-4o-mini").WithBaseURL(server.URL)
	got, ok := client.GenerateResponse(context.Background(), "summarize")
	if !ok || got != "the summary" {
		t.Fatalf("unexpected result: %q ok=%v", got, ok)
	}
}

func TestGenerateResponseAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad key", "type": "invalid_request_error"},
		})
	}))
	defer server.Close()

	client := New("bad", "gpt-4o-mini").WithBaseURL(server.URL)
	if _, ok := client.GenerateResponse(context.Background(), "hi"); ok {
		t.Fatalf("expected failure")
	}
}

func TestValidateConfigRequiresKey(t *testing.T) {
	if New("", "gpt-4o-mini").ValidateConfig() {
		t.Fatalf("expected invalid config without key")
	}
	if !New("key", "").ValidateConfig() {
		t.Fatalf("expected default model to satisfy config")
	}
}
