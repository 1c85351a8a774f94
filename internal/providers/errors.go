package providers

import "fmt"

// APIError is a structured error payload returned by a provider's API.
type APIError struct {
	Provider   string
	StatusCode int
	Title      string
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: api error %d: %s: %s", e.Provider, e.StatusCode, e.Title, e.Detail)
}

// AuthenticationError covers rejected credentials and expired tokens.
type AuthenticationError struct {
	Provider string
	Detail   string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %s", e.Provider, e.Detail)
}

// ResourceNotFoundError is a 404 from the provider.
type ResourceNotFoundError struct {
	Provider string
	Resource string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s: resource not found: %s", e.Provider, e.Resource)
}

// ResponseFormatError wraps a payload the adapter could not decode.
type ResponseFormatError struct {
	Provider string
	Err      error
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("%s: unexpected response format: %v", e.Provider, e.Err)
}

func (e *ResponseFormatError) Unwrap() error {
	return e.Err
}

// TimeoutError marks an attempt that did not complete within its bound.
type TimeoutError struct {
	Provider string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: attempt timed out", e.Provider)
}

// TransportError wraps a failure below the HTTP layer (DNS, connect, TLS).
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
