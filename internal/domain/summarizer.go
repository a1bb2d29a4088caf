package domain

import "context"

// Summarizer is the summarization engine contract shared between layers.
// Implementations are created once at startup and must be safe for concurrent use.
type Summarizer interface {
	// Summarize returns one or more candidate summaries, best first.
	Summarize(ctx context.Context, text string) ([]string, error)
}

// HealthChecker verifies availability of an external dependency.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
