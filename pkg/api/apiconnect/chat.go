package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/pkg/api"
)

// ChatServiceName is the fully-qualified service name. The service is the per-project message board.
const ChatServiceName = "triplan.v1.ChatService"

// Procedure paths, used for routing and in interceptors.
const (
	ChatServiceSendMessageProcedure  = "/triplan.v1.ChatService/SendMessage"
	ChatServiceListMessagesProcedure = "/triplan.v1.ChatService/ListMessages"
)

// ChatServiceHandler is implemented by the server.
type ChatServiceHandler interface {
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
	ListMessages(context.Context, *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error)
}

// NewChatServiceHandler builds an HTTP handler for svc. Mount it at the returned path.
func NewChatServiceHandler(svc ChatServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/triplan.v1.ChatService/", routes{
		ChatServiceSendMessageProcedure:  connect.NewUnaryHandler(ChatServiceSendMessageProcedure, svc.SendMessage, opts...),
		ChatServiceListMessagesProcedure: connect.NewUnaryHandler(ChatServiceListMessagesProcedure, svc.ListMessages, opts...),
	}
}

// ChatServiceClient calls a remote ChatService.
type ChatServiceClient interface {
	SendMessage(context.Context, *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error)
	ListMessages(context.Context, *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error)
}

// NewChatServiceClient creates a client for the server at baseURL.
func NewChatServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ChatServiceClient {
	opts = clientOptions(opts)
	return &chatServiceClient{
		sendMessage:  connect.NewClient[api.SendMessageRequest, api.SendMessageResponse](httpClient, baseURL+ChatServiceSendMessageProcedure, opts...),
		listMessages: connect.NewClient[api.ListMessagesRequest, api.ListMessagesResponse](httpClient, baseURL+ChatServiceListMessagesProcedure, opts...),
	}
}

type chatServiceClient struct {
	sendMessage  *connect.Client[api.SendMessageRequest, api.SendMessageResponse]
	listMessages *connect.Client[api.ListMessagesRequest, api.ListMessagesResponse]
}

func (c *chatServiceClient) SendMessage(ctx context.Context, req *connect.Request[api.SendMessageRequest]) (*connect.Response[api.SendMessageResponse], error) {
	return c.sendMessage.CallUnary(ctx, req)
}

func (c *chatServiceClient) ListMessages(ctx context.Context, req *connect.Request[api.ListMessagesRequest]) (*connect.Response[api.ListMessagesResponse], error) {
	return c.listMessages.CallUnary(ctx, req)
}
