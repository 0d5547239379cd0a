package bakeryapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrUnreachable marks transport-level failures: the endpoint could not be
// reached or the response could not be read. Callers surface these with a
// generic message rather than the raw error.
var ErrUnreachable = errors.New("bakery api unreachable")

// AuthError is a non-2xx response from the API. Detail carries the server's
// human-readable message when the payload included one.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api rejected request (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api rejected request (%d)", e.StatusCode)
}

// Message returns the server's detail when present, otherwise fallback.
func (e *AuthError) Message(fallback string) string {
	if e.Detail != "" {
		return e.Detail
	}
	return fallback
}

// IsNotFound reports whether the error is an API 404.
func IsNotFound(err error) bool {
	var apiErr *AuthError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func newAuthError(statusCode int, payload []byte) *AuthError {
	var body struct {
		Detail string `json:"detail"`
	}
	// Non-JSON error payloads are fine, the detail just stays empty.
	_ = json.Unmarshal(payload, &body)

	return &AuthError{StatusCode: statusCode, Detail: body.Detail}
}
