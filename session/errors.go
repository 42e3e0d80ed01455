package session

import "errors"

var (
	// ErrNotAuthenticated is returned before any network call when no
	// access token is held.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired means no refresh token is held or the server
	// rejected it. No retry is possible; callers route the user back to
	// the login flow.
	ErrSessionExpired = errors.New("session expired")
)

// AuthError is a credential or registration rejection by the server.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// ValidationError is a locally detected input problem. It never reaches the
// network and carries the first violated rule only.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
