package wordser

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	thesaurusKey     string
	thesaurusBaseURL string
	thesaurusTimeout time.Duration

	summarizer Summarizer
	engine     *engineConfig
	workers    int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type engineConfig struct {
	baseURL string
	model   string
	apiKey  string
	prompt  string
}

// WithThesaurusKey sets the Merriam-Webster thesaurus API key. Required.
func WithThesaurusKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.thesaurusKey = key
	})
}

// WithThesaurusBaseURL overrides the thesaurus endpoint.
func WithThesaurusBaseURL(baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.thesaurusBaseURL = baseURL
	})
}

// WithThesaurusTimeout bounds each thesaurus request. Default: 10s.
func WithThesaurusTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.thesaurusTimeout = d
	})
}

// WithSummarizer plugs in a custom summarization engine.
func WithSummarizer(s Summarizer) Option {
	return optionFunc(func(c *clientConfig) {
		c.summarizer = s
	})
}

// WithOpenAIEngine uses an OpenAI-compatible chat completion endpoint as the
// summarization engine. The model is verified once in New.
func WithOpenAIEngine(baseURL, model, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.engine = &engineConfig{baseURL: baseURL, model: model, apiKey: apiKey}
	})
}

// WithWorkers bounds concurrent summarization calls. Default: number of CPUs.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
