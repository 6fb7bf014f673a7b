package generativeAI

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingCredential is returned before any network call when the
	// provider has no API key configured.
	ErrMissingCredential = errors.New("provider credential not configured")
	// ErrEmptyResponse means the envelope carried no text to parse.
	ErrEmptyResponse = errors.New("provider returned no text content")
	// ErrTimeout means the shared deadline fired while the call was in flight.
	ErrTimeout = errors.New("provider call timed out")
	// ErrCircuitOpen means the provider's breaker rejected the call.
	ErrCircuitOpen = errors.New("provider circuit open")
)

// ProviderError is a non-success answer from a provider endpoint. Status is
// zero when the request never produced an HTTP response.
type ProviderError struct {
	Provider string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: request failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: status %d: %v", e.Provider, e.Status, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedJSONError wraps the parse error of a provider payload.
type MalformedJSONError struct {
	Provider string
	Err      error
}

func (e *MalformedJSONError) Error() string {
	return fmt.Sprintf("%s: malformed JSON payload: %v", e.Provider, e.Err)
}

func (e *MalformedJSONError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is an HTTP 429 from a provider.
func IsQuotaExceeded(err error) bool {
	var pErr *ProviderError
	return errors.As(err, &pErr) && pErr.Status == http.StatusTooManyRequests
}

// IsTransportFailure reports whether err is a provider-side failure: a
// non-success status, an empty or malformed payload, or an open breaker.
func IsTransportFailure(err error) bool {
	var pErr *ProviderError
	var mErr *MalformedJSONError
	return errors.As(err, &pErr) ||
		errors.As(err, &mErr) ||
		errors.Is(err, ErrEmptyResponse) ||
		errors.Is(err, ErrCircuitOpen)
}
