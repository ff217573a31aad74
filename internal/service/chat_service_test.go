package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/pkg/api"
)

func TestChat(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	carol := env.user(t, "carol@example.com")
	p := tripWithMembers(t, env, alice, bob)

	send := func(c clients, text string) error {
		_, err := c.chat.SendMessage(context.Background(), connect.NewRequest(&api.SendMessageRequest{ProjectID: p.ID, Message: text}))
		return err
	}

	require.NoError(t, send(env.as(alice), "Flights booked"))
	require.NoError(t, send(env.as(bob), "Nice!"))
	requireCode(t, send(env.as(bob), "   "), connect.CodeInvalidArgument)
	requireCode(t, send(env.as(carol), "hello?"), connect.CodePermissionDenied)

	resp, err := env.as(bob).chat.ListMessages(context.Background(), connect.NewRequest(&api.ListMessagesRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Messages, 2)
	assert.Equal(t, alice.Email, resp.Msg.Messages[0].User)
	assert.Equal(t, "Flights booked", resp.Msg.Messages[0].Message)
	assert.Equal(t, bob.Email, resp.Msg.Messages[1].User)

	_, err = env.as(carol).chat.ListMessages(context.Background(), connect.NewRequest(&api.ListMessagesRequest{ProjectID: p.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	var chats int
	for _, ev := range env.events.all() {
		if ev.Resource == feed.ResourceChats {
			assert.Equal(t, p.ID, ev.ProjectID)
			chats++
		}
	}
	assert.Equal(t, 2, chats)
}
