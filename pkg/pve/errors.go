package pve

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions that carry no structured payload.
var (
	// ErrNotAuthenticated is returned by resource clients when a call is
	// attempted before Login succeeded. It is raised locally, before any
	// network traffic.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidResponse is returned when a response is too malformed to
	// classify: no body where one is required, or a shape that does not
	// resemble the API envelope at all.
	ErrInvalidResponse = errors.New("invalid response")

	ErrConfigRequired  = errors.New("config is required")
	ErrBaseURLRequired = errors.New("base URL is required")
)

// AuthenticationError indicates a failed login exchange, or a request
// that was rejected with 401/403 while the session claimed to be
// authenticated. Reason carries diagnostic detail; Err, when set, is the
// underlying cause (e.g. a decode failure during login).
type AuthenticationError struct {
	Reason string
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}

	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NetworkError indicates a transport-level failure: DNS resolution,
// connection refused, timeout. The request never produced an HTTP status.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx HTTP status from the API that is not an
// authentication or not-found condition.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

// DecodingError indicates a response body that did not parse into the
// expected shape.
type DecodingError struct {
	Err error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("decoding response: %v", e.Err)
}

func (e *DecodingError) Unwrap() error {
	return e.Err
}

// NotFoundError indicates a logical 404 on a known resource path, or a
// null "data" field on a lookup-by-id call.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	if e.Identifier == "" {
		return "resource not found"
	}

	return fmt.Sprintf("resource not found: %s", e.Identifier)
}

// ConfigurationError indicates caller-supplied connection parameters
// that could not form a valid endpoint.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

// IsAuthenticationFailed checks if the error is an authentication failure.
func IsAuthenticationFailed(err error) bool {
	authErr := &AuthenticationError{}

	return errors.As(err, &authErr)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	nfErr := &NotFoundError{}

	return errors.As(err, &nfErr)
}

// IsNetworkError checks if the error is a transport-level failure.
func IsNetworkError(err error) bool {
	netErr := &NetworkError{}

	return errors.As(err, &netErr)
}

// IsAPIError checks if the error is a classified non-2xx API response.
// When it is, the status code is returned alongside.
func IsAPIError(err error) (int, bool) {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}

	return 0, false
}

// IsDecodingError checks if the error is a response decode failure.
func IsDecodingError(err error) bool {
	decErr := &DecodingError{}

	return errors.As(err, &decErr)
}

// IsNotAuthenticated checks if the error is the local pre-flight
// not-authenticated condition.
func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}
