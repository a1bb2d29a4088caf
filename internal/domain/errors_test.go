package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{ErrInvalidInput, "invalid_input"},
		{fmt.Errorf("fetch: %w", ErrUpstreamUnavailable), "upstream_unavailable"},
		{fmt.Errorf("decode: %w", ErrUpstreamMalformed), "upstream_malformed"},
		{fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrUpstreamUnexpectedShape)), "upstream_unexpected_shape"},
		{ErrEngineUnavailable, "engine_unavailable"},
		{ErrEngineExecutionFailed, "engine_execution_failed"},
		{ErrConfiguration, "configuration"},
		{errors.New("boom"), "internal"},
	}

	for _, tc := range tests {
		if got := Kind(tc.err); got != tc.want {
			t.Errorf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
