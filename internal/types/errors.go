package types

import "errors"

// ErrorKind classifies why an attempt or a call failed.
type ErrorKind string

const (
	KindConfiguration        ErrorKind = "configuration"
	KindAuthorizationMissing ErrorKind = "authorization_missing"
	KindTransport            ErrorKind = "transport"
	KindProviderHTTP         ErrorKind = "provider_http"
	KindEmptyResponse        ErrorKind = "empty_response"
	KindUserCancelled        ErrorKind = "user_cancelled"
	KindRateLimited          ErrorKind = "rate_limited"
	KindHost                 ErrorKind = "host"
)

var (
	ErrConfiguration        = errors.New("generation provider is not configured")
	ErrAuthorizationMissing = errors.New("remote endpoint requires an API key")
	ErrExhausted            = errors.New("all endpoint candidates failed")
	ErrUserCancelled        = errors.New("generation cancelled by user")
	ErrRateLimited          = errors.New("generation spend limit reached")
	ErrHost                 = errors.New("host-mediated generation failed")
)

// GenerationError is returned by the pipeline for expected failures. It
// matches the sentinel for its kind through errors.Is.
type GenerationError struct {
	Kind    ErrorKind
	Message string
}

func (e *GenerationError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Message
}

// Is maps the error kind onto its sentinel.
func (e *GenerationError) Is(target error) bool {
	switch e.Kind {
	case KindConfiguration:
		return target == ErrConfiguration
	case KindAuthorizationMissing:
		return target == ErrAuthorizationMissing
	case KindTransport, KindProviderHTTP, KindEmptyResponse:
		return target == ErrExhausted
	case KindUserCancelled:
		return target == ErrUserCancelled
	case KindRateLimited:
		return target == ErrRateLimited
	case KindHost:
		return target == ErrHost
	}
	return false
}
