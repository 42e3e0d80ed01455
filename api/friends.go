package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Friend is the public view of another user.
type Friend struct {
	ID                    int            `json:"id"`
	Username              string         `json:"username"`
	TotalScore            int            `json:"total_score,omitempty"`
	CurrentStreak         int            `json:"current_streak,omitempty"`
	CompletedModulesCount int            `json:"completed_modules_count,omitempty"`
	ModulesProgress       map[string]int `json:"modules_progress,omitempty"`
}

// FriendsStats summarises the caller's friend list.
type FriendsStats struct {
	Count   int      `json:"count"`
	Friends []Friend `json:"friends"`
	Summary struct {
		AvgScore  float64 `json:"avg_score"`
		TopScore  int     `json:"top_score"`
		TopUserID int     `json:"top_user_id"`
	} `json:"summary"`
}

// SearchUsers finds users by partial username or email.
func (c *Client) SearchUsers(ctx context.Context, token, q string) ([]Friend, error) {
	query := url.Values{"q": {q}}
	var found []Friend
	if err := c.do(ctx, http.MethodGet, "/api/friends/search", query, token, nil, &found); err != nil {
		return nil, err
	}
	return found, nil
}

// AddFriend creates a mutual friendship.
func (c *Client) AddFriend(ctx context.Context, token string, friendID int) error {
	body := map[string]int{"friend_id": friendID}
	return c.do(ctx, http.MethodPost, "/api/friends/add", nil, token, body, nil)
}

// RemoveFriend dissolves a friendship on both sides.
func (c *Client) RemoveFriend(ctx context.Context, token string, friendID int) error {
	path := fmt.Sprintf("/api/friends/%d", friendID)
	return c.do(ctx, http.MethodDelete, path, nil, token, nil, nil)
}

// Friends lists the caller's friends.
func (c *Client) Friends(ctx context.Context, token string) ([]Friend, error) {
	var friends []Friend
	if err := c.do(ctx, http.MethodGet, "/api/friends/list", nil, token, nil, &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// FriendsStatistics returns aggregate statistics for the friend list.
func (c *Client) FriendsStatistics(ctx context.Context, token string) (*FriendsStats, error) {
	var stats FriendsStats
	if err := c.do(ctx, http.MethodGet, "/api/friends/stats", nil, token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
