package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
	"github.com/kailas-cloud/wordser/internal/metrics"
)

const tracerName = "github.com/kailas-cloud/wordser/internal/transport/openai"

// Summarizer is a summarization engine backed by an OpenAI-compatible chat API
// (OpenAI, vLLM, llama.cpp server, Ollama). It holds no per-request state.
type Summarizer struct {
	client       *openai.Client
	model        string
	systemPrompt string
	maxTokens    int
	candidates   int
	logger       *zap.Logger
	tracer       trace.Tracer
}

// Config holds the engine settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	MaxTokens    int
	Candidates   int
	HTTPClient   *http.Client
	Logger       *zap.Logger
}

// NewSummarizer creates the engine client. No network calls are made; see Load.
func NewSummarizer(cfg *Config) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	candidates := cfg.Candidates
	if candidates <= 0 {
		candidates = 1
	}

	return &Summarizer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: cfg.SystemPrompt,
		maxTokens:    cfg.MaxTokens,
		candidates:   candidates,
		logger:       cfg.Logger,
		tracer:       otel.Tracer(tracerName),
	}
}

// Load verifies that the engine is reachable and serves the configured model.
// Called once at startup.
func (s *Summarizer) Load(ctx context.Context) error {
	if _, err := s.client.GetModel(ctx, s.model); err != nil {
		return fmt.Errorf("load model %s: %w", s.model, classifyError(err))
	}
	return nil
}

// HealthCheck verifies engine availability via ListModels (free endpoint).
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// Summarize implements domain.Summarizer. Candidates are returned in the order
// the engine produced them.
func (s *Summarizer) Summarize(ctx context.Context, text string) ([]string, error) {
	ctx, span := s.tracer.Start(ctx, "summarizer.summarize",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("summarizer.model", s.model),
			attribute.Int("summarizer.input_chars", len(text)),
		),
	)
	defer span.End()

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens: s.maxTokens,
		N:         s.candidates,
	}

	start := time.Now()

	resp, err := s.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		err = classifyError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "engine error")
		return nil, err
	}

	out := make([]string, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		if summary := strings.TrimSpace(c.Message.Content); summary != "" {
			out = append(out, summary)
		}
	}
	if len(out) == 0 {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		span.SetStatus(codes.Error, "empty response")
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrEngineExecutionFailed)
	}

	metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "success").Inc()
	metrics.SummarizerRequestDuration.WithLabelValues(s.model).Observe(duration.Seconds())
	span.SetAttributes(
		attribute.Int("summarizer.candidates", len(out)),
		attribute.Int("summarizer.total_tokens", resp.Usage.TotalTokens),
	)

	s.logger.Debug("Summarization completed",
		zap.String("model", s.model),
		zap.Int("candidates", len(out)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return out, nil
}

// classifyError maps client errors onto the domain taxonomy. The engine answered
// with an error: execution failed. The engine could not be reached, or reported
// itself overloaded: unavailable.
func classifyError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("engine error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, sentinelForStatus(reqErr.HTTPStatusCode))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("engine error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, sentinelForStatus(apiErr.HTTPStatusCode))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("engine request: %v: %w", err, domain.ErrEngineExecutionFailed)
	}

	return fmt.Errorf("engine request failed: %v: %w", err, domain.ErrEngineUnavailable)
}

func sentinelForStatus(status int) error {
	switch status {
	case http.StatusNotFound, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return domain.ErrEngineUnavailable
	default:
		return domain.ErrEngineExecutionFailed
	}
}

// extractDetail extracts the "detail" field from a JSON error body (FastAPI-style servers).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
