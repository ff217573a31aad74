package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/pkg/api"
)

// ItineraryServiceName is the fully-qualified service name. The service manages proposed activities, voting and the final plan.
const ItineraryServiceName = "triplan.v1.ItineraryService"

// Procedure paths, used for routing and in interceptors.
const (
	ItineraryServiceCreateItemProcedure   = "/triplan.v1.ItineraryService/CreateItem"
	ItineraryServiceListItemsProcedure    = "/triplan.v1.ItineraryService/ListItems"
	ItineraryServiceGroupedItemsProcedure = "/triplan.v1.ItineraryService/GroupedItems"
	ItineraryServiceFinalPlanProcedure    = "/triplan.v1.ItineraryService/FinalPlan"
	ItineraryServiceToggleVoteProcedure   = "/triplan.v1.ItineraryService/ToggleVote"
	ItineraryServiceChangeStatusProcedure = "/triplan.v1.ItineraryService/ChangeStatus"
	ItineraryServiceDeleteItemProcedure   = "/triplan.v1.ItineraryService/DeleteItem"
)

// ItineraryServiceHandler is implemented by the server.
type ItineraryServiceHandler interface {
	CreateItem(context.Context, *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	GroupedItems(context.Context, *connect.Request[api.GroupedItemsRequest]) (*connect.Response[api.GroupedItemsResponse], error)
	FinalPlan(context.Context, *connect.Request[api.FinalPlanRequest]) (*connect.Response[api.FinalPlanResponse], error)
	ToggleVote(context.Context, *connect.Request[api.ToggleVoteRequest]) (*connect.Response[api.ToggleVoteResponse], error)
	ChangeStatus(context.Context, *connect.Request[api.ChangeStatusRequest]) (*connect.Response[api.ChangeStatusResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
}

// NewItineraryServiceHandler builds an HTTP handler for svc. Mount it at the returned path.
func NewItineraryServiceHandler(svc ItineraryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/triplan.v1.ItineraryService/", routes{
		ItineraryServiceCreateItemProcedure:   connect.NewUnaryHandler(ItineraryServiceCreateItemProcedure, svc.CreateItem, opts...),
		ItineraryServiceListItemsProcedure:    connect.NewUnaryHandler(ItineraryServiceListItemsProcedure, svc.ListItems, opts...),
		ItineraryServiceGroupedItemsProcedure: connect.NewUnaryHandler(ItineraryServiceGroupedItemsProcedure, svc.GroupedItems, opts...),
		ItineraryServiceFinalPlanProcedure:    connect.NewUnaryHandler(ItineraryServiceFinalPlanProcedure, svc.FinalPlan, opts...),
		ItineraryServiceToggleVoteProcedure:   connect.NewUnaryHandler(ItineraryServiceToggleVoteProcedure, svc.ToggleVote, opts...),
		ItineraryServiceChangeStatusProcedure: connect.NewUnaryHandler(ItineraryServiceChangeStatusProcedure, svc.ChangeStatus, opts...),
		ItineraryServiceDeleteItemProcedure:   connect.NewUnaryHandler(ItineraryServiceDeleteItemProcedure, svc.DeleteItem, opts...),
	}
}

// ItineraryServiceClient calls a remote ItineraryService.
type ItineraryServiceClient interface {
	CreateItem(context.Context, *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error)
	ListItems(context.Context, *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error)
	GroupedItems(context.Context, *connect.Request[api.GroupedItemsRequest]) (*connect.Response[api.GroupedItemsResponse], error)
	FinalPlan(context.Context, *connect.Request[api.FinalPlanRequest]) (*connect.Response[api.FinalPlanResponse], error)
	ToggleVote(context.Context, *connect.Request[api.ToggleVoteRequest]) (*connect.Response[api.ToggleVoteResponse], error)
	ChangeStatus(context.Context, *connect.Request[api.ChangeStatusRequest]) (*connect.Response[api.ChangeStatusResponse], error)
	DeleteItem(context.Context, *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error)
}

// NewItineraryServiceClient creates a client for the server at baseURL.
func NewItineraryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ItineraryServiceClient {
	opts = clientOptions(opts)
	return &itineraryServiceClient{
		createItem:   connect.NewClient[api.CreateItemRequest, api.CreateItemResponse](httpClient, baseURL+ItineraryServiceCreateItemProcedure, opts...),
		listItems:    connect.NewClient[api.ListItemsRequest, api.ListItemsResponse](httpClient, baseURL+ItineraryServiceListItemsProcedure, opts...),
		groupedItems: connect.NewClient[api.GroupedItemsRequest, api.GroupedItemsResponse](httpClient, baseURL+ItineraryServiceGroupedItemsProcedure, opts...),
		finalPlan:    connect.NewClient[api.FinalPlanRequest, api.FinalPlanResponse](httpClient, baseURL+ItineraryServiceFinalPlanProcedure, opts...),
		toggleVote:   connect.NewClient[api.ToggleVoteRequest, api.ToggleVoteResponse](httpClient, baseURL+ItineraryServiceToggleVoteProcedure, opts...),
		changeStatus: connect.NewClient[api.ChangeStatusRequest, api.ChangeStatusResponse](httpClient, baseURL+ItineraryServiceChangeStatusProcedure, opts...),
		deleteItem:   connect.NewClient[api.DeleteItemRequest, api.DeleteItemResponse](httpClient, baseURL+ItineraryServiceDeleteItemProcedure, opts...),
	}
}

type itineraryServiceClient struct {
	createItem   *connect.Client[api.CreateItemRequest, api.CreateItemResponse]
	listItems    *connect.Client[api.ListItemsRequest, api.ListItemsResponse]
	groupedItems *connect.Client[api.GroupedItemsRequest, api.GroupedItemsResponse]
	finalPlan    *connect.Client[api.FinalPlanRequest, api.FinalPlanResponse]
	toggleVote   *connect.Client[api.ToggleVoteRequest, api.ToggleVoteResponse]
	changeStatus *connect.Client[api.ChangeStatusRequest, api.ChangeStatusResponse]
	deleteItem   *connect.Client[api.DeleteItemRequest, api.DeleteItemResponse]
}

func (c *itineraryServiceClient) CreateItem(ctx context.Context, req *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error) {
	return c.createItem.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	return c.listItems.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) GroupedItems(ctx context.Context, req *connect.Request[api.GroupedItemsRequest]) (*connect.Response[api.GroupedItemsResponse], error) {
	return c.groupedItems.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) FinalPlan(ctx context.Context, req *connect.Request[api.FinalPlanRequest]) (*connect.Response[api.FinalPlanResponse], error) {
	return c.finalPlan.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) ToggleVote(ctx context.Context, req *connect.Request[api.ToggleVoteRequest]) (*connect.Response[api.ToggleVoteResponse], error) {
	return c.toggleVote.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) ChangeStatus(ctx context.Context, req *connect.Request[api.ChangeStatusRequest]) (*connect.Response[api.ChangeStatusResponse], error) {
	return c.changeStatus.CallUnary(ctx, req)
}

func (c *itineraryServiceClient) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	return c.deleteItem.CallUnary(ctx, req)
}
