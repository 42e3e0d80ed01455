package session

import "context"

// Store persists one session across restarts. Save replaces the whole
// session, Clear removes every stored field together.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, sess Session) error
	Clear(ctx context.Context) error
}
