package wordser

import "github.com/kailas-cloud/wordser/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrConfiguration           = domain.ErrConfiguration
	ErrInvalidInput            = domain.ErrInvalidInput
	ErrUpstreamUnavailable     = domain.ErrUpstreamUnavailable
	ErrUpstreamMalformed       = domain.ErrUpstreamMalformed
	ErrUpstreamUnexpectedShape = domain.ErrUpstreamUnexpectedShape
	ErrEngineUnavailable       = domain.ErrEngineUnavailable
	ErrEngineExecutionFailed   = domain.ErrEngineExecutionFailed
)
