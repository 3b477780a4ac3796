package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies why a translation call failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork covers transport failures: DNS, refused connections, resets.
	KindNetwork
	// KindProvider is a provider-side failure (5xx, malformed response).
	KindProvider
	// KindRateLimited is an HTTP 429 or quota answer.
	KindRateLimited
	// KindTimeout is a deadline hit while waiting for the provider.
	KindTimeout
	// KindUnavailable means the call was refused locally (open circuit breaker).
	KindUnavailable
	// KindEmptyResult is a successful call that returned no text.
	KindEmptyResult
	// KindInvalidLanguage is an unknown or unsupported language code.
	KindInvalidLanguage
	// KindAuth is a missing or rejected credential.
	KindAuth
	// KindCanceled means the caller's context was canceled.
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindProvider:
		return "provider"
	case KindRateLimited:
		return "rate_limited"
	case KindTimeout:
		return "timeout"
	case KindUnavailable:
		return "unavailable"
	case KindEmptyResult:
		return "empty_result"
	case KindInvalidLanguage:
		return "invalid_language"
	case KindAuth:
		return "auth"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt can reasonably succeed.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindInvalidLanguage, KindAuth, KindCanceled:
		return false
	default:
		return true
	}
}

// TranslationError is the typed failure returned by every service.
type TranslationError struct {
	Service string
	Kind    ErrorKind
	Err     error
}

func (e *TranslationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s failure", e.Service, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Service, e.Kind, e.Err)
}

func (e *TranslationError) Unwrap() error {
	return e.Err
}

// NewError builds a TranslationError, deriving the kind from ctx errors when
// kind is KindUnknown or KindNetwork.
func NewError(service string, kind ErrorKind, err error) *TranslationError {
	switch {
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	}
	return &TranslationError{Service: service, Kind: kind, Err: err}
}

// KindOf extracts the kind from err; plain errors are KindUnknown.
func KindOf(err error) ErrorKind {
	var te *TranslationError
	if errors.As(err, &te) {
		return te.Kind
	}
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindUnknown
}

// IsRetryable is KindOf(err).Retryable() with nil treated as not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err).Retryable()
}

// statusKind maps an HTTP status to the error kind the retry policy uses.
func statusKind(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindAuth
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code == http.StatusBadRequest:
		// Providers answer 400 for unsupported language pairs.
		return KindInvalidLanguage
	default:
		return KindProvider
	}
}

// fail records err on result and returns the typed error, the way every
// service reports failures.
func fail(result *ServiceResult, kind ErrorKind, err error) (*ServiceResult, error) {
	te := NewError(result.ServiceName, kind, err)
	result.Error = te.Error()
	return result, te
}
