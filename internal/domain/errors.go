package domain

import "errors"

var (
	// ErrConfiguration signals missing or invalid startup configuration. Fatal.
	ErrConfiguration = errors.New("configuration error")
	// ErrInvalidInput signals a missing or empty request parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable signals a transport failure, timeout or non-2xx reply from the thesaurus provider.
	ErrUpstreamUnavailable = errors.New("thesaurus provider unavailable")
	// ErrUpstreamMalformed signals a provider body that is not valid JSON.
	ErrUpstreamMalformed = errors.New("thesaurus provider returned malformed json")
	// ErrUpstreamUnexpectedShape signals valid JSON without the expected fields or types.
	ErrUpstreamUnexpectedShape = errors.New("thesaurus provider returned unexpected shape")

	// ErrEngineUnavailable signals a summarization engine that failed to load or cannot be reached.
	ErrEngineUnavailable = errors.New("summarization engine unavailable")
	// ErrEngineExecutionFailed signals a summarization call that returned an error.
	ErrEngineExecutionFailed = errors.New("summarization engine execution failed")
)

// Kind returns a short, stable label for err suitable for logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, ErrUpstreamMalformed):
		return "upstream_malformed"
	case errors.Is(err, ErrUpstreamUnexpectedShape):
		return "upstream_unexpected_shape"
	case errors.Is(err, ErrEngineUnavailable):
		return "engine_unavailable"
	case errors.Is(err, ErrEngineExecutionFailed):
		return "engine_execution_failed"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	default:
		return "internal"
	}
}
