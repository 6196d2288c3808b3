package alvys

import (
	"fmt"
	"net/http"
)

// APIError is a non-success response from the Alvys API. The paginator
// inspects it to tell end-of-data (not found) apart from real failures.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("alvys API error (status %d) on %s: %s", e.StatusCode, e.Endpoint, e.Body)
	}
	return fmt.Sprintf("alvys API error (status %d) on %s", e.StatusCode, e.Endpoint)
}

// NotFound reports whether this response is the not-found/no-content signal
// Alvys returns for a page past the end of the result set.
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusNoContent
}

// AuthError is a failure to obtain a bearer token for a tenant. Fatal for
// that client's export: nothing can proceed without a token.
type AuthError struct {
	TenantID string
	Err      error
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed for tenant %s: %v", e.TenantID, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *AuthError) Unwrap() error {
	return e.Err
}
