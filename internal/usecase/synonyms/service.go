package synonyms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wordser/internal/domain"
	"github.com/kailas-cloud/wordser/internal/domain/thesaurus"
	logpkg "github.com/kailas-cloud/wordser/internal/logger"
	"github.com/kailas-cloud/wordser/internal/metrics"
)

// payloadLogLimit bounds how much of a rejected provider document is logged.
const payloadLogLimit = 512

// Fetcher retrieves raw thesaurus documents.
type Fetcher interface {
	Fetch(ctx context.Context, word string) ([]byte, error)
}

// Service looks up synonyms for a word.
type Service struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// New creates a Service.
func New(fetcher Fetcher, logger *zap.Logger) *Service {
	return &Service{fetcher: fetcher, logger: logger}
}

// Lookup fetches the provider document for word and extracts its synonyms.
// The upstream is never called for an empty word.
func (s *Service) Lookup(ctx context.Context, word string) ([]string, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, fmt.Errorf("word is required: %w", domain.ErrInvalidInput)
	}

	raw, err := s.fetcher.Fetch(ctx, word)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", word, err)
	}

	syns, err := thesaurus.Extract(raw)
	if err != nil {
		s.logExtractionFailure(ctx, word, raw, err)
		return nil, fmt.Errorf("extract synonyms for %q: %w", word, err)
	}
	return syns, nil
}

func (s *Service) logExtractionFailure(ctx context.Context, word string, raw []byte, err error) {
	fields := []zap.Field{
		zap.String("word", word),
		zap.ByteString("payload", truncate(raw, payloadLogLimit)),
		zap.Int("payload_bytes", len(raw)),
		zap.Error(err),
	}
	kind := "unknown"
	var ee *thesaurus.ExtractionError
	if errors.As(err, &ee) {
		kind = string(ee.Kind)
		fields = append(fields, zap.String("path", ee.Path))
		if ee.Field != "" {
			fields = append(fields, zap.String("field", ee.Field))
		}
	}
	fields = append(fields, zap.String("extraction_kind", kind))

	metrics.ExtractionFailuresTotal.WithLabelValues(kind).Inc()
	logpkg.FromContext(ctx, s.logger).Warn("Thesaurus document rejected", fields...)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
