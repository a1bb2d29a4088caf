package synonyms

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/wordser/internal/domain"
	"github.com/kailas-cloud/wordser/internal/domain/thesaurus"
)

// --- Mocks ---

type mockFetcher struct {
	body  []byte
	err   error
	calls atomic.Int32
	word  string
}

func (m *mockFetcher) Fetch(_ context.Context, word string) ([]byte, error) {
	m.calls.Add(1)
	m.word = word
	return m.body, m.err
}

// --- Tests ---

func TestLookup_Success(t *testing.T) {
	f := &mockFetcher{body: []byte(`[{"meta":{"syns":[["quick","fast"],["rapid"]]}}]`)}
	svc := New(f, zap.NewNop())

	got, err := svc.Lookup(context.Background(), " quick ")
	require.NoError(t, err)
	assert.Equal(t, []string{"quick", "fast", "rapid"}, got)
	assert.Equal(t, "quick", f.word)
}

func TestLookup_EmptyWordSkipsUpstream(t *testing.T) {
	f := &mockFetcher{}
	svc := New(f, zap.NewNop())

	for _, w := range []string{"", "   "} {
		_, err := svc.Lookup(context.Background(), w)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Zero(t, f.calls.Load())
}

func TestLookup_FetchError(t *testing.T) {
	f := &mockFetcher{err: fmt.Errorf("dial: %w", domain.ErrUpstreamUnavailable)}
	svc := New(f, zap.NewNop())

	got, err := svc.Lookup(context.Background(), "fast")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestLookup_ExtractionErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := &mockFetcher{body: []byte(`[{"meta":{"syns":[["a", 1]]}}]`)}
	svc := New(f, zap.New(core))

	got, err := svc.Lookup(context.Background(), "fast")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrUpstreamUnexpectedShape)

	var ee *thesaurus.ExtractionError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, thesaurus.KindUnexpectedShape, ee.Kind)

	entries := logs.FilterMessage("Thesaurus document rejected").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "unexpected_shape", fields["extraction_kind"])
	assert.Equal(t, "$[0].meta.syns[0][1]", fields["path"])
	assert.Equal(t, "fast", fields["word"])
}

func TestLookup_MalformedPayload(t *testing.T) {
	f := &mockFetcher{body: []byte(`<html>Service Unavailable</html>`)}
	svc := New(f, zap.NewNop())

	_, err := svc.Lookup(context.Background(), "fast")
	assert.ErrorIs(t, err, domain.ErrUpstreamMalformed)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, []byte("abc"), truncate([]byte("abc"), 5))
	assert.Equal(t, []byte("ab"), truncate([]byte("abc"), 2))
}
