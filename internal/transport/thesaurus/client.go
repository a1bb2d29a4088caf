// Package thesaurus is the HTTP client for the Merriam-Webster thesaurus API.
// It returns raw documents; interpretation lives in domain/thesaurus.
package thesaurus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
	"github.com/kailas-cloud/wordser/internal/metrics"
)

// Client fetches thesaurus documents. Safe for concurrent use.
type Client struct {
	baseURL      string
	apiKey       string
	maxBodyBytes int64
	httpClient   *http.Client
	logger       *zap.Logger
}

// Config holds the client settings.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// NewClient creates a thesaurus client with a traced transport.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}
	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		maxBodyBytes: maxBody,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: cfg.Logger.With(zap.String("adapter", "thesaurus")),
	}
}

// Fetch returns the raw provider document for word. Transport failures, timeouts
// and non-2xx replies wrap domain.ErrUpstreamUnavailable.
func (c *Client) Fetch(ctx context.Context, word string) ([]byte, error) {
	reqURL := c.baseURL + "/" + url.PathEscape(word) + "?key=" + url.QueryEscape(c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	body, err := c.do(req)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ThesaurusRequestsTotal.WithLabelValues(status).Inc()
	metrics.ThesaurusRequestDuration.WithLabelValues(status).Observe(duration.Seconds())

	if err != nil {
		c.logger.Warn("Thesaurus request failed",
			zap.String("word", word),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("Thesaurus response",
		zap.String("word", word),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)
	return body, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: request failed: %w: %w", redact(err), domain.ErrUpstreamUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("thesaurus: unexpected status %d: %w", resp.StatusCode, domain.ErrUpstreamUnavailable)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("thesaurus: read body: %w: %w", err, domain.ErrUpstreamUnavailable)
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, fmt.Errorf("thesaurus: body exceeds %d bytes: %w", c.maxBodyBytes, domain.ErrUpstreamUnavailable)
	}
	return body, nil
}

// redact strips the request URL (which carries the API key) from transport errors.
func redact(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
	}
	return err
}
