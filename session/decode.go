package session

import (
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// DecodeError means an access token could not be decoded into an identity.
// A decode failure at login time is a login failure, never a partial session.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode access token: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("decode access token: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// DecodeAccessToken extracts the identity carried in an access token without
// any network call and without verifying the signature: the token is trusted
// as issued. The payload must be the middle of three dot-separated segments,
// base64url-encoded JSON carrying at least user_id; is_staff and is_superuser
// default to false when absent. The username comes from the caller, not from
// the token's subject claim.
func DecodeAccessToken(accessToken, usernameHint string) (User, error) {
	parsed, _, err := jwtlib.NewParser().ParseUnverified(accessToken, jwtlib.MapClaims{})
	if err != nil {
		return User{}, &DecodeError{Reason: "malformed token", Err: err}
	}

	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return User{}, &DecodeError{Reason: "payload is not a JSON object"}
	}

	userID, ok := numericClaim(claims["user_id"])
	if !ok {
		return User{}, &DecodeError{Reason: "payload missing user_id"}
	}

	isStaff, _ := claims["is_staff"].(bool)
	isSuperuser, _ := claims["is_superuser"].(bool)

	return User{
		ID:          userID,
		Username:    usernameHint,
		IsStaff:     isStaff,
		IsSuperuser: isSuperuser,
	}, nil
}

// numericClaim accepts the numeric encodings encoding/json produces for the
// user_id claim.
func numericClaim(value any) (int64, bool) {
	switch v := value.(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	}
	return 0, false
}
