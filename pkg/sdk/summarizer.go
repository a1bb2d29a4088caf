package wordser

import "context"

// Summarizer is a summarization engine. It returns one or more candidate
// summaries, best first, and must be safe for concurrent use.
type Summarizer interface {
	Summarize(ctx context.Context, text string) ([]string, error)
}
