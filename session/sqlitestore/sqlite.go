// Package sqlitestore persists the session in a local SQLite database, the
// durable key-value storage that survives client restarts.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/session"
)

// Storage keys. Everything under them is cleared together on logout.
const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

var _ session.Store = (*Store)(nil)

// Store implements session.Store on a single-table key-value schema.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the database at dbPath.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.New] create database directory")
	}

	dsn := dbPath + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.New] open database")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "[sqlitestore.New] ping database")
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) initSchema() error {
	const query = `
	CREATE TABLE IF NOT EXISTS client_state (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := s.db.Exec(query); err != nil {
		return errors.Wrap(err, "[sqlitestore] create schema")
	}
	return nil
}

// Load reassembles the session from stored keys. Missing keys yield an empty
// session, never an error.
func (s *Store) Load(ctx context.Context) (session.Session, error) {
	var sess session.Session

	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return session.Session{}, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return session.Session{}, err
	}
	userJSON, err := s.get(ctx, keyUser)
	if err != nil {
		return session.Session{}, err
	}

	sess.AccessToken = access
	sess.RefreshToken = refresh
	if userJSON != "" {
		var user api.User
		if err := json.Unmarshal([]byte(userJSON), &user); err == nil {
			sess.User = &user
		}
		// A corrupt user record is dropped; tokens still load.
	}
	return sess, nil
}

// Save replaces the stored session atomically.
func (s *Store) Save(ctx context.Context, sess session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[sqlitestore.Save] begin transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := setTx(ctx, tx, keyAccessToken, sess.AccessToken); err != nil {
		return err
	}
	if err := setTx(ctx, tx, keyRefreshToken, sess.RefreshToken); err != nil {
		return err
	}
	userJSON := ""
	if sess.User != nil {
		data, err := json.Marshal(sess.User)
		if err != nil {
			return errors.Wrap(err, "[sqlitestore.Save] marshal user")
		}
		userJSON = string(data)
	}
	if err := setTx(ctx, tx, keyUser, userJSON); err != nil {
		return err
	}

	return errors.Wrap(tx.Commit(), "[sqlitestore.Save] commit")
}

// Clear removes every stored key in one statement.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM client_state`)
	return errors.Wrap(err, "[sqlitestore.Clear] delete state")
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "[sqlitestore] read key %q", key)
	}
	return value, nil
}

func setTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO client_state (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return errors.Wrapf(err, "[sqlitestore] write key %q", key)
}
