package wordser

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/config"
	"github.com/kailas-cloud/wordser/internal/domain"
	openaiEngine "github.com/kailas-cloud/wordser/internal/transport/openai"
	thesaurusClient "github.com/kailas-cloud/wordser/internal/transport/thesaurus"
	healthuc "github.com/kailas-cloud/wordser/internal/usecase/health"
	summaryuc "github.com/kailas-cloud/wordser/internal/usecase/summary"
	synonymsuc "github.com/kailas-cloud/wordser/internal/usecase/synonyms"
)

const (
	defaultThesaurusURL = "https://www.dictionaryapi.com/api/v3/references/thesaurus/json"
	engineLoadTimeout   = 10 * time.Second
	healthTimeout       = 3 * time.Second
)

// Internal interfaces for substitution in tests.
type synonymUseCase interface {
	Lookup(ctx context.Context, word string) ([]string, error)
}

type summaryUseCase interface {
	Summarize(ctx context.Context, text string) (string, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the wordser SDK entry point. Safe for concurrent use.
type Client struct {
	synonyms  synonymUseCase
	summary   summaryUseCase
	healthSvc healthUseCase
	obs       *observer
}

// HealthStatus represents the aggregated engine health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component → "ok"/"error"
}

// New creates a Client. When an OpenAI engine is configured its model is
// verified using ctx; a failed check is returned as ErrEngineUnavailable.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		thesaurusBaseURL: defaultThesaurusURL,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.thesaurusKey == "" {
		return nil, fmt.Errorf("wordser: thesaurus key required (use WithThesaurusKey): %w", domain.ErrConfiguration)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}

	logger := zap.NewNop()
	thesaurus := thesaurusClient.NewClient(thesaurusClient.Config{
		BaseURL: cfg.thesaurusBaseURL,
		APIKey:  cfg.thesaurusKey,
		Timeout: cfg.thesaurusTimeout,
		Logger:  logger,
	})

	checkers := map[string]healthuc.Checker{}
	if hc, ok := engine.(domain.HealthChecker); ok {
		checkers["summarizer"] = hc
	}

	return &Client{
		synonyms:  synonymsuc.New(thesaurus, logger),
		summary:   summaryuc.New(engine, cfg.workers, logger),
		healthSvc: healthuc.New(checkers, healthTimeout),
		obs:       obs,
	}, nil
}

func buildEngine(ctx context.Context, cfg *clientConfig) (Summarizer, error) {
	if cfg.summarizer != nil {
		return cfg.summarizer, nil
	}
	if cfg.engine == nil {
		return nil, nil
	}

	prompt := cfg.engine.prompt
	if prompt == "" {
		prompt = config.DefaultSystemPrompt
	}
	engine := openaiEngine.NewSummarizer(&openaiEngine.Config{
		APIKey:       cfg.engine.apiKey,
		BaseURL:      cfg.engine.baseURL,
		Model:        cfg.engine.model,
		SystemPrompt: prompt,
		MaxTokens:    256,
		Candidates:   1,
		Logger:       zap.NewNop(),
	})

	loadCtx, cancel := context.WithTimeout(ctx, engineLoadTimeout)
	defer cancel()
	if err := engine.Load(loadCtx); err != nil {
		return nil, fmt.Errorf("wordser: %w", err)
	}
	return engine, nil
}

// Synonyms returns the synonyms of word in provider order.
func (c *Client) Synonyms(ctx context.Context, word string) (syns []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("synonyms", start, err) }()

	return c.synonyms.Lookup(ctx, word)
}

// Summarize returns a single summary of text. Without a configured engine it
// fails with ErrEngineUnavailable.
func (c *Client) Summarize(ctx context.Context, text string) (summary string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("summarize", start, err) }()

	return c.summary.Summarize(ctx, text)
}

// Health checks the configured engine.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
