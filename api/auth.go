package api

import (
	"context"
	"net/http"
	"strings"
)

// Credentials identifies a user at login. Exactly one of Email or Username is
// set; the server accepts either.
type Credentials struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
}

// NewCredentials routes a free-form identifier to the email or username
// field, the same way the login form does.
func NewCredentials(identifier, password string) Credentials {
	creds := Credentials{Password: password}
	id := strings.TrimSpace(identifier)
	if strings.Contains(id, "@") {
		creds.Email = id
	} else {
		creds.Username = id
	}
	return creds
}

// Registration is the payload for creating an account. Validation happens in
// the session package before this ever reaches the network.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the profile record the server returns.
type User struct {
	ID                int    `json:"id,omitempty"`
	Username          string `json:"username,omitempty"`
	Email             string `json:"email,omitempty"`
	TotalScore        int    `json:"total_score,omitempty"`
	CurrentStreak     int    `json:"current_streak,omitempty"`
	LongestStreak     int    `json:"longest_streak,omitempty"`
	LastQuizDate      string `json:"last_quiz_date,omitempty"`
	LastDailyQuizDate string `json:"last_daily_quiz_date,omitempty"`
}

// TokenGrant is the response of the login, register and refresh endpoints.
// RefreshToken and User are optional: refresh responses may omit the user and
// rotate or keep the refresh token.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, creds Credentials) (*TokenGrant, error) {
	var grant TokenGrant
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, "", creds, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Register creates an account. Servers that auto-login return a token pair;
// otherwise the grant carries empty tokens.
func (c *Client) Register(ctx context.Context, reg Registration) (*TokenGrant, error) {
	var grant TokenGrant
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, "", reg, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Refresh exchanges a refresh token for a fresh access token. The refresh
// token travels as a bearer credential on this endpoint.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	var grant TokenGrant
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, refreshToken, nil, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies a partial profile update and returns the new record.
func (c *Client) UpdateProfile(ctx context.Context, token string, fields map[string]any) (*User, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/profile", nil, token, fields, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
