package api

import (
	"context"
	"net/http"
)

// ChatMessage is one turn of a chatbot conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest asks the tutoring chatbot a question. Module optionally narrows
// the lesson context ("all" widens it to every unlocked module).
type ChatRequest struct {
	Prompt  string        `json:"prompt"`
	Module  string        `json:"module,omitempty"`
	History []ChatMessage `json:"history,omitempty"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat sends a prompt plus rolling history and returns the bot's reply.
func (c *Client) Chat(ctx context.Context, token string, req ChatRequest) (string, error) {
	var res chatResponse
	if err := c.do(ctx, http.MethodPost, "/api/chatbot/respond", nil, token, req, &res); err != nil {
		return "", err
	}
	return res.Reply, nil
}
