package chat_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/biolaureat/learn-client/api"
	"github.com/biolaureat/learn-client/chat"
)

type passAuthorizer struct{}

func (passAuthorizer) Authorized(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	return call(ctx, "test-token")
}

type fakeChatBackend struct {
	reply   string
	err     error
	lastReq api.ChatRequest
	calls   int
}

func (f *fakeChatBackend) Chat(ctx context.Context, token string, req api.ChatRequest) (string, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newConversation(t *testing.T, backend *fakeChatBackend, module string) *chat.Conversation {
	t.Helper()
	conv, err := chat.NewConversation(backend, passAuthorizer{}, module)
	require.NoError(t, err)
	return conv
}

func TestAskAppendsBothTurns(t *testing.T) {
	backend := &fakeChatBackend{reply: "mitoza are patru faze"}
	conv := newConversation(t, backend, "3")

	reply, err := conv.Ask(context.Background(), "  ce este mitoza?  ")
	require.NoError(t, err)
	require.Equal(t, "mitoza are patru faze", reply)

	// The prompt travels trimmed with the module and the history so far.
	require.Equal(t, "ce este mitoza?", backend.lastReq.Prompt)
	require.Equal(t, "3", backend.lastReq.Module)
	require.Empty(t, backend.lastReq.History)

	history := conv.History()
	require.Len(t, history, 2)
	require.Equal(t, api.ChatMessage{Role: "user", Content: "ce este mitoza?"}, history[0])
	require.Equal(t, api.ChatMessage{Role: "assistant", Content: "mitoza are patru faze"}, history[1])
}

func TestAskSendsPriorHistory(t *testing.T) {
	backend := &fakeChatBackend{reply: "ok"}
	conv := newConversation(t, backend, "")

	_, err := conv.Ask(context.Background(), "first")
	require.NoError(t, err)
	_, err = conv.Ask(context.Background(), "second")
	require.NoError(t, err)

	require.Len(t, backend.lastReq.History, 2)
	require.Equal(t, "first", backend.lastReq.History[0].Content)
}

func TestAskRejectsEmptyPrompt(t *testing.T) {
	backend := &fakeChatBackend{}
	conv := newConversation(t, backend, "")

	_, err := conv.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, chat.ErrEmptyPrompt)
	require.Equal(t, 0, backend.calls)
}

func TestFailedAskLeavesHistoryUntouched(t *testing.T) {
	backend := &fakeChatBackend{reply: "ok"}
	conv := newConversation(t, backend, "")

	_, err := conv.Ask(context.Background(), "first")
	require.NoError(t, err)

	backend.err = &api.TransportError{Err: context.DeadlineExceeded}
	_, err = conv.Ask(context.Background(), "second")
	require.Error(t, err)
	require.Len(t, conv.History(), 2)
}

func TestHistoryIsBounded(t *testing.T) {
	backend := &fakeChatBackend{reply: "r"}
	conv := newConversation(t, backend, "")

	for i := 0; i < 15; i++ {
		_, err := conv.Ask(context.Background(), fmt.Sprintf("prompt %d", i))
		require.NoError(t, err)
	}

	history := conv.History()
	require.Len(t, history, 20)
	// Oldest turns fell off; the window starts at prompt 5.
	require.Equal(t, "prompt 5", history[0].Content)
	require.Equal(t, "user", history[0].Role)
}

func TestResetClearsHistory(t *testing.T) {
	backend := &fakeChatBackend{reply: "r"}
	conv := newConversation(t, backend, "")

	_, err := conv.Ask(context.Background(), "first")
	require.NoError(t, err)

	conv.Reset()
	require.Empty(t, conv.History())
}
