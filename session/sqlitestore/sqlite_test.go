package sqlitestore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/session"
	"github.com/biolaureat/learn-client/session/sqlitestore"
)

func newStore(t *testing.T, dbPath string) *sqlitestore.Store {
	t.Helper()
	store, err := sqlitestore.New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFreshStoreLoadsEmptySession(t *testing.T) {
	store := newStore(t, filepath.Join(t.TempDir(), "session.db"))

	sess, err := store.Load(context.Background())
	require.NoError(t, err)
	require.False(t, sess.Authenticated())
	require.Nil(t, sess.User)
}

func TestSaveAndLoadRoundtrip(t *testing.T) {
	store := newStore(t, filepath.Join(t.TempDir(), "session.db"))
	ctx := context.Background()

	saved := session.Session{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		User:         &api.User{ID: 7, Username: "ana", TotalScore: 42},
	}
	require.NoError(t, store.Save(ctx, saved))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-1", loaded.AccessToken)
	require.Equal(t, "refresh-1", loaded.RefreshToken)
	require.NotNil(t, loaded.User)
	require.Equal(t, "ana", loaded.User.Username)
	require.Equal(t, 42, loaded.User.TotalScore)
}

func TestSaveOverwritesPreviousSession(t *testing.T) {
	store := newStore(t, filepath.Join(t.TempDir(), "session.db"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.Session{AccessToken: "old", User: &api.User{ID: 1}}))
	require.NoError(t, store.Save(ctx, session.Session{AccessToken: "new"}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", loaded.AccessToken)
	require.Nil(t, loaded.User)
}

func TestClearRemovesSession(t *testing.T) {
	store := newStore(t, filepath.Join(t.TempDir(), "session.db"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, session.Session{AccessToken: "access-1", RefreshToken: "refresh-1"}))
	require.NoError(t, store.Clear(ctx))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.False(t, loaded.Authenticated())
	require.Empty(t, loaded.RefreshToken)
}

func TestSessionSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	first, err := sqlitestore.New(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, session.Session{AccessToken: "persisted"}))
	require.NoError(t, first.Close())

	second := newStore(t, dbPath)
	loaded, err := second.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "persisted", loaded.AccessToken)
}
