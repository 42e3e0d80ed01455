package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/biolaureat/learn-client/api"
)

// Tokens about to expire are treated as expired so a request is not sent
// with a credential that dies in flight.
const expiryLeeway = 10 * time.Second

// AuthAPI is the slice of the API client the Manager needs.
type AuthAPI interface {
	Login(ctx context.Context, creds api.Credentials) (*api.TokenGrant, error)
	Register(ctx context.Context, reg api.Registration) (*api.TokenGrant, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenGrant, error)
	Profile(ctx context.Context, token string) (*api.User, error)
	UpdateProfile(ctx context.Context, token string, fields map[string]any) (*api.User, error)
}

// Manager maintains exactly one active session. All authenticated calls go
// through Authorized, which attaches the access token and performs at most
// one refresh-and-retry on a 401.
type Manager struct {
	api     AuthAPI
	store   Store
	log     zerolog.Logger
	nowTime func() time.Time

	mu   sync.RWMutex
	sess Session

	// Coalesces concurrent refreshes: if several calls discover an expired
	// token at once, only one network refresh runs and all waiters share
	// its outcome.
	refreshGroup singleflight.Group
}

// ManagerOption modifies a Manager during construction.
type ManagerOption func(*Manager)

// WithLogger sets the Manager's logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager creates a Manager. Call Restore afterwards to pick up a
// persisted session.
func NewManager(authAPI AuthAPI, store Store, options ...ManagerOption) (*Manager, error) {
	if authAPI == nil {
		return nil, errors.New("[NewManager] auth API is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}

	manager := &Manager{
		api:     authAPI,
		store:   store,
		log:     zerolog.Nop(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Restore loads the persisted session, if any.
func (m *Manager) Restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "[Manager.Restore] load session")
	}
	m.mu.Lock()
	m.sess = sess
	m.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current session. Callers never mutate
// session state directly.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sess
}

// Authenticated reports whether an access token is held.
func (m *Manager) Authenticated() bool {
	return m.Snapshot().Authenticated()
}

// User returns the cached profile, or nil when unauthenticated. A stale user
// record without an access token is not exposed.
func (m *Manager) User() *api.User {
	sess := m.Snapshot()
	if !sess.Authenticated() {
		return nil
	}
	return sess.User
}

// Login exchanges an identifier (email or username) and password for a
// session. Server rejections surface as *AuthError, transport failures as
// *api.TransportError.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*api.User, error) {
	grant, err := m.api.Login(ctx, api.NewCredentials(identifier, password))
	if err != nil {
		return nil, asAuthError(err)
	}
	m.replace(ctx, Session{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		User:         grant.User,
	})
	return grant.User, nil
}

// Register validates the form locally, then creates the account. When the
// server auto-logs-in (returns tokens), the session is adopted immediately.
func (m *Manager) Register(ctx context.Context, reg Registration) (*api.User, error) {
	if err := reg.validate(); err != nil {
		return nil, err
	}
	grant, err := m.api.Register(ctx, api.Registration{
		Username: strings.TrimSpace(reg.Username),
		Email:    strings.TrimSpace(reg.Email),
		Password: reg.Password,
	})
	if err != nil {
		return nil, asAuthError(err)
	}
	if grant.AccessToken != "" {
		m.replace(ctx, Session{
			AccessToken:  grant.AccessToken,
			RefreshToken: grant.RefreshToken,
			User:         grant.User,
		})
	}
	return grant.User, nil
}

// Refresh exchanges the stored refresh token for a new access token.
// Concurrent callers are coalesced into a single network call. A server
// rejection clears the session and returns ErrSessionExpired.
func (m *Manager) Refresh(ctx context.Context) error {
	_, err, _ := m.refreshGroup.Do("refresh", func() (any, error) {
		m.mu.RLock()
		refreshToken := m.sess.RefreshToken
		m.mu.RUnlock()

		if refreshToken == "" {
			return nil, ErrSessionExpired
		}

		grant, err := m.api.Refresh(ctx, refreshToken)
		if err != nil {
			var apiErr *api.Error
			if errors.As(err, &apiErr) {
				m.log.Warn().Int("status", apiErr.Status).Msg("refresh token rejected")
				m.clear(ctx)
				return nil, ErrSessionExpired
			}
			return nil, err
		}

		m.mu.Lock()
		next := m.sess
		next.AccessToken = grant.AccessToken
		if grant.RefreshToken != "" { // rotated
			next.RefreshToken = grant.RefreshToken
		}
		if grant.User != nil {
			next.User = grant.User
		}
		m.sess = next
		m.mu.Unlock()
		m.persist(ctx, next)
		return nil, nil
	})
	return err
}

// Authorized runs call with the current access token attached. On a 401 it
// refreshes exactly once and retries the call once; a second 401 propagates
// as-is. With no token held it fails before any network activity.
func (m *Manager) Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	sess := m.Snapshot()
	if !sess.Authenticated() {
		return ErrNotAuthenticated
	}

	token := sess.AccessToken
	if m.tokenExpired(token) {
		// The token is visibly dead; refresh up front instead of burning
		// a request on a guaranteed 401.
		if err := m.Refresh(ctx); err != nil {
			return err
		}
		token = m.Snapshot().AccessToken
	}

	err := call(ctx, token)
	if err == nil || !api.IsUnauthorized(err) {
		return err
	}

	if err := m.Refresh(ctx); err != nil {
		return err
	}
	return call(ctx, m.Snapshot().AccessToken)
}

// Logout clears the session and the backing store. Idempotent: logging out
// with no active session is a no-op.
func (m *Manager) Logout(ctx context.Context) {
	m.clear(ctx)
}

// Profile fetches the server-side profile and updates the cached user.
func (m *Manager) Profile(ctx context.Context) (*api.User, error) {
	var user *api.User
	err := m.Authorized(ctx, func(ctx context.Context, token string) error {
		fetched, err := m.api.Profile(ctx, token)
		if err != nil {
			return err
		}
		user = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.adoptUser(ctx, user)
	return user, nil
}

// UpdateProfile applies a partial update and caches the returned record.
func (m *Manager) UpdateProfile(ctx context.Context, fields map[string]any) (*api.User, error) {
	var user *api.User
	err := m.Authorized(ctx, func(ctx context.Context, token string) error {
		updated, err := m.api.UpdateProfile(ctx, token, fields)
		if err != nil {
			return err
		}
		user = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.adoptUser(ctx, user)
	return user, nil
}

// replace swaps in a whole new session and persists it.
func (m *Manager) replace(ctx context.Context, next Session) {
	m.mu.Lock()
	m.sess = next
	m.mu.Unlock()
	m.persist(ctx, next)
}

func (m *Manager) adoptUser(ctx context.Context, user *api.User) {
	m.mu.Lock()
	next := m.sess
	next.User = user
	m.sess = next
	m.mu.Unlock()
	m.persist(ctx, next)
}

func (m *Manager) clear(ctx context.Context) {
	m.mu.Lock()
	m.sess = Session{}
	m.mu.Unlock()
	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("failed to clear session store")
	}
}

func (m *Manager) persist(ctx context.Context, sess Session) {
	if err := m.store.Save(ctx, sess); err != nil {
		m.log.Warn().Err(err).Msg("failed to persist session")
	}
}

// tokenExpired decodes the access token's exp claim without verifying the
// signature (the server owns verification). Opaque tokens report false and
// fall back to reactive 401 handling.
func (m *Manager) tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(m.nowTime().Add(expiryLeeway))
}

// asAuthError converts server rejections into *AuthError while leaving
// transport failures untouched.
func asAuthError(err error) error {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return &AuthError{Message: apiErr.Message}
	}
	return err
}
