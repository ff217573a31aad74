package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

// ChatService implements the ChatService RPC interface.
type ChatService struct {
	store  storage.Store
	access *Access
	events feed.Publisher
}

// NewChatService creates a chat service.
func NewChatService(store storage.Store, events feed.Publisher) *ChatService {
	return &ChatService{store: store, access: NewAccess(store), events: events}
}

// SendMessage appends a line to the project chat, signed with the caller's email.
func (s *ChatService) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Msg.Message) == "" {
		return nil, invalidArgument("message", "This field is required")
	}
	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	msg := &models.ChatMessage{
		ProjectID: req.Msg.ProjectID,
		User:      user.Email,
		Message:   req.Msg.Message,
	}
	if err := s.store.CreateChatMessage(ctx, msg); err != nil {
		slog.Error("SendMessage failed", "project_id", msg.ProjectID, "error", err)
		return nil, toConnectError(err)
	}
	s.events.Publish(feed.Event{Resource: feed.ResourceChats, Action: feed.ActionCreated, ProjectID: msg.ProjectID, ID: msg.ID})

	return connect.NewResponse(&api.SendMessageResponse{Message: toAPIChat(msg)}), nil
}

// ListMessages returns the project chat, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, req *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	msgs, err := s.store.ListChatMessages(ctx, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	res := make([]*api.ChatMessage, len(msgs))
	for i := range msgs {
		res[i] = toAPIChat(&msgs[i])
	}
	return connect.NewResponse(&api.ListMessagesResponse{Messages: res}), nil
}
