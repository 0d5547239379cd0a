package session

import (
	"errors"

	"github.com/jafsabakes/storefront/bakeryapi"
)

// GenericLoginFailure is shown when the failure carries no server message:
// transport errors, malformed tokens, storage failures.
const GenericLoginFailure = "Login failed"

// FailureMessage maps a Login error to the message shown inline on the login
// form. Rejected credentials surface the server's detail verbatim; everything
// else gets the generic fallback.
func FailureMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *bakeryapi.AuthError
	if errors.As(err, &apiErr) {
		return apiErr.Message(GenericLoginFailure)
	}
	return GenericLoginFailure
}

// IsRejected reports whether the login failed because the endpoint rejected
// the credentials, as opposed to a transport or decode failure.
func IsRejected(err error) bool {
	var apiErr *bakeryapi.AuthError
	return errors.As(err, &apiErr)
}
