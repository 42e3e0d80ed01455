// Package session owns the client-side session: the access/refresh token
// pair, the cached user profile and the single chokepoint every
// authenticated request passes through.
package session

import "github.com/biolaureat/learn-client/api"

// Session is the durable client state. It is a value type: the Manager
// replaces it wholesale, readers always see a fully-formed old or new value.
type Session struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	User         *api.User `json:"user,omitempty"`
}

// Authenticated reports whether the session holds an access token. A cached
// user record without a token does not count.
func (s Session) Authenticated() bool {
	return s.AccessToken != ""
}
