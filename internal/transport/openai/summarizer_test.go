package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
	"github.com/kailas-cloud/wordser/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterUpstreamMetrics()
	os.Exit(m.Run())
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func newChoice(i int, content string) chatChoice {
	c := chatChoice{Index: i, FinishReason: "stop"}
	c.Message.Role = "assistant"
	c.Message.Content = content
	return c
}

func newTestSummarizer(baseURL string) *Summarizer {
	return NewSummarizer(&Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		Model:        "test-model",
		SystemPrompt: "Summarize.",
		MaxTokens:    64,
		Candidates:   2,
		Logger:       zap.NewNop(),
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req struct {
			Model     string `json:"model"`
			N         int    `json:"n"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || req.N != 2 || req.MaxTokens != 64 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "long text" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		resp := chatResponse{ID: "c1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = []chatChoice{newChoice(0, "  first summary \n"), newChoice(1, "second summary")}
		resp.Usage.TotalTokens = 30

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	got, err := newTestSummarizer(server.URL).Summarize(context.Background(), "long text")
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if len(got) != 2 || got[0] != "first summary" || got[1] != "second summary" {
		t.Errorf("unexpected candidates: %q", got)
	}
}

func TestSummarizer_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := chatResponse{ID: "c1", Object: "chat.completion", Model: "test-model"}
		resp.Choices = []chatChoice{newChoice(0, "   ")}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	_, err := newTestSummarizer(server.URL).Summarize(context.Background(), "text")
	if !errors.Is(err, domain.ErrEngineExecutionFailed) {
		t.Fatalf("expected ErrEngineExecutionFailed, got %v", err)
	}
}

func TestSummarizer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "context length exceeded",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestSummarizer(server.URL).Summarize(context.Background(), "text")
	if !errors.Is(err, domain.ErrEngineExecutionFailed) {
		t.Fatalf("expected ErrEngineExecutionFailed, got %v", err)
	}
}

func TestSummarizer_OverloadedIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"detail": "model is loading"}`))
	}))
	defer server.Close()

	_, err := newTestSummarizer(server.URL).Summarize(context.Background(), "text")
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestSummarizer_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestSummarizer(url).Summarize(context.Background(), "text")
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable, got %v", err)
	}
}

func TestSummarizer_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/models/test-model":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"id": "test-model", "object": "model", "owned_by": "local"})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"message": "model not found"}})
		}
	}))
	defer server.Close()

	if err := newTestSummarizer(server.URL).Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	missing := NewSummarizer(&Config{BaseURL: server.URL, Model: "other", Logger: zap.NewNop()})
	err := missing.Load(context.Background())
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Fatalf("expected ErrEngineUnavailable for unknown model, got %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail":"boom"}`)); got != "boom" {
		t.Errorf("extractDetail = %q, want boom", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("extractDetail = %q, want empty", got)
	}
}
