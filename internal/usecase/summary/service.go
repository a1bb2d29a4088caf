// Package summary adapts a summarization engine to the one-summary-per-request
// contract of the HTTP API and bounds how many engine calls run at once.
package summary

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/kailas-cloud/wordser/internal/domain"
	logpkg "github.com/kailas-cloud/wordser/internal/logger"
	"github.com/kailas-cloud/wordser/internal/metrics"
)

// Service produces a single summary for a text.
type Service struct {
	engine  domain.Summarizer
	workers *semaphore.Weighted
	logger  *zap.Logger
}

// New creates a Service. engine may be nil when the engine failed to load;
// every request then fails with domain.ErrEngineUnavailable.
// workers <= 0 defaults to the number of CPUs.
func New(engine domain.Summarizer, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Service{
		engine:  engine,
		workers: semaphore.NewWeighted(int64(workers)),
		logger:  logger,
	}
}

// Available reports whether an engine is loaded.
func (s *Service) Available() bool {
	return s.engine != nil
}

// Summarize runs the engine on text and returns the first candidate.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("txt is required: %w", domain.ErrInvalidInput)
	}
	if s.engine == nil {
		return "", fmt.Errorf("summarizer not loaded: %w", domain.ErrEngineUnavailable)
	}

	waitStart := time.Now()
	if err := s.workers.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for summarizer worker: %w: %w", err, domain.ErrEngineExecutionFailed)
	}
	defer s.workers.Release(1)
	wait := time.Since(waitStart)
	metrics.SummarizerQueueWait.Observe(wait.Seconds())

	candidates, err := s.engine.Summarize(ctx, text)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", fmt.Errorf("engine returned no candidates: %w", domain.ErrEngineExecutionFailed)
	}

	logpkg.FromContext(ctx, s.logger).Debug("Summary produced",
		zap.Int("input_chars", len(text)),
		zap.Int("candidates", len(candidates)),
		zap.Duration("queue_wait", wait),
	)
	return candidates[0], nil
}
