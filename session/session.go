// Package session owns the authentication session lifecycle: decoding access
// tokens into identities, hydrating persisted sessions at startup, and the
// login/logout state machine consulted by the route guard.
package session

import "encoding/json"

// User is the identity carried by an authenticated session. The JSON shape is
// the persisted profile snapshot written to the credential store at login.
type User struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	IsStaff     bool   `json:"isStaff"`
	IsSuperuser bool   `json:"isSuperuser"`
}

// IsAdmin reports whether the user may access the back office.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// EncodeProfile serialises the user snapshot for persistence.
func EncodeProfile(u User) (string, error) {
	encoded, err := json.Marshal(u)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// DecodeProfile parses a persisted profile snapshot.
func DecodeProfile(raw string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, err
	}
	return u, nil
}

// State is the lifecycle state of a Manager.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Credentials are the login form values.
type Credentials struct {
	Username string
	Password string
}
