package repofake

import (
	"context"
	"sync"

	"github.com/biolaureat/learn-client/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests.
type FakeStore struct {
	mu   sync.Mutex
	sess session.Session

	SaveCalls  int
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (s *FakeStore) Load(ctx context.Context) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, nil
}

func (s *FakeStore) Save(ctx context.Context, sess session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = sess
	s.SaveCalls++
	return nil
}

func (s *FakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = session.Session{}
	s.ClearCalls++
	return nil
}
