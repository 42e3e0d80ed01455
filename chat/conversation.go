// Package chat holds a chatbot conversation: a rolling local history sent
// with every prompt so the bot keeps context across turns.
package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/biolaureat/learn-client/api"
)

// historyLimit bounds the rolling history; older turns fall off so request
// bodies stay small.
const historyLimit = 20

// ErrEmptyPrompt is returned before any network call for a blank prompt.
var ErrEmptyPrompt = errors.New("prompt is required")

// Backend is the slice of the API client the conversation needs.
type Backend interface {
	Chat(ctx context.Context, token string, req api.ChatRequest) (string, error)
}

// Authorizer is the session manager's authenticated-request chokepoint.
type Authorizer interface {
	Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error
}

// Conversation is one chatbot session. Module optionally narrows the lesson
// context the bot answers from.
type Conversation struct {
	backend  Backend
	sessions Authorizer
	module   string

	mu      sync.Mutex
	history []api.ChatMessage
}

// NewConversation starts an empty conversation. module may be empty, a
// module number, or "all".
func NewConversation(backend Backend, sessions Authorizer, module string) (*Conversation, error) {
	if backend == nil {
		return nil, errors.New("[chat.NewConversation] backend is required")
	}
	if sessions == nil {
		return nil, errors.New("[chat.NewConversation] session authorizer is required")
	}
	return &Conversation{backend: backend, sessions: sessions, module: module}, nil
}

// Ask sends the prompt with the rolling history and appends both the prompt
// and the reply to it. A failed request leaves the history untouched.
func (c *Conversation) Ask(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	c.mu.Lock()
	history := make([]api.ChatMessage, len(c.history))
	copy(history, c.history)
	c.mu.Unlock()

	req := api.ChatRequest{
		Prompt:  prompt,
		Module:  c.module,
		History: history,
	}

	var reply string
	err := c.sessions.Authorized(ctx, func(ctx context.Context, token string) error {
		answered, err := c.backend.Chat(ctx, token, req)
		reply = answered
		return err
	})
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.history = append(c.history,
		api.ChatMessage{Role: "user", Content: prompt},
		api.ChatMessage{Role: "assistant", Content: reply},
	)
	if len(c.history) > historyLimit {
		c.history = c.history[len(c.history)-historyLimit:]
	}
	c.mu.Unlock()

	return reply, nil
}

// History returns a copy of the conversation so far.
func (c *Conversation) History() []api.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]api.ChatMessage, len(c.history))
	copy(out, c.history)
	return out
}

// Reset drops the history, starting the conversation over.
func (c *Conversation) Reset() {
	c.mu.Lock()
	c.history = nil
	c.mu.Unlock()
}
