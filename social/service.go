// Package social wraps the friends endpoints: search, mutual add/remove,
// listing and aggregate statistics.
package social

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/biolaureat/learn-client/api"
)

// ErrEmptyQuery is returned before any network call when the search term is
// blank.
var ErrEmptyQuery = errors.New("search query is required")

// Backend is the slice of the API client the social service needs.
type Backend interface {
	SearchUsers(ctx context.Context, token, q string) ([]api.Friend, error)
	AddFriend(ctx context.Context, token string, friendID int) error
	RemoveFriend(ctx context.Context, token string, friendID int) error
	Friends(ctx context.Context, token string) ([]api.Friend, error)
	FriendsStatistics(ctx context.Context, token string) (*api.FriendsStats, error)
}

// Authorizer is the session manager's authenticated-request chokepoint.
type Authorizer interface {
	Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error
}

// Service exposes the friends panel operations.
type Service struct {
	backend  Backend
	sessions Authorizer
}

// NewService creates a social Service.
func NewService(backend Backend, sessions Authorizer) (*Service, error) {
	if backend == nil {
		return nil, errors.New("[social.NewService] backend is required")
	}
	if sessions == nil {
		return nil, errors.New("[social.NewService] session authorizer is required")
	}
	return &Service{backend: backend, sessions: sessions}, nil
}

// Search finds users by partial username or email.
func (s *Service) Search(ctx context.Context, q string) ([]api.Friend, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	var found []api.Friend
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		users, err := s.backend.SearchUsers(ctx, token, q)
		found = users
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// Add creates a mutual friendship with the given user.
func (s *Service) Add(ctx context.Context, friendID int) error {
	return s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		return s.backend.AddFriend(ctx, token, friendID)
	})
}

// Remove dissolves a friendship on both sides.
func (s *Service) Remove(ctx context.Context, friendID int) error {
	return s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		return s.backend.RemoveFriend(ctx, token, friendID)
	})
}

// List returns the caller's friends.
func (s *Service) List(ctx context.Context) ([]api.Friend, error) {
	var friends []api.Friend
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		listed, err := s.backend.Friends(ctx, token)
		friends = listed
		return err
	})
	if err != nil {
		return nil, err
	}
	return friends, nil
}

// Stats returns aggregate statistics over the friend list.
func (s *Service) Stats(ctx context.Context) (*api.FriendsStats, error) {
	var stats *api.FriendsStats
	err := s.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		fetched, err := s.backend.FriendsStatistics(ctx, token)
		stats = fetched
		return err
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}
