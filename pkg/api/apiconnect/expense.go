package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/pkg/api"
)

// ExpenseServiceName is the fully-qualified service name. The service records bills and splits them across the party.
const ExpenseServiceName = "triplan.v1.ExpenseService"

// Procedure paths, used for routing and in interceptors.
const (
	ExpenseServiceCreateBillProcedure        = "/triplan.v1.ExpenseService/CreateBill"
	ExpenseServiceListBillsProcedure         = "/triplan.v1.ExpenseService/ListBills"
	ExpenseServiceUpdateBillProcedure        = "/triplan.v1.ExpenseService/UpdateBill"
	ExpenseServiceDeleteBillProcedure        = "/triplan.v1.ExpenseService/DeleteBill"
	ExpenseServiceGetExpenseSummaryProcedure = "/triplan.v1.ExpenseService/GetExpenseSummary"
	ExpenseServiceGetBalancesProcedure       = "/triplan.v1.ExpenseService/GetBalances"
	ExpenseServiceScanBillProcedure          = "/triplan.v1.ExpenseService/ScanBill"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	GetExpenseSummary(context.Context, *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	ScanBill(context.Context, *connect.Request[api.ScanBillRequest]) (*connect.Response[api.ScanBillResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler for svc. Mount it at the returned path.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return "/triplan.v1.ExpenseService/", routes{
		ExpenseServiceCreateBillProcedure:        connect.NewUnaryHandler(ExpenseServiceCreateBillProcedure, svc.CreateBill, opts...),
		ExpenseServiceListBillsProcedure:         connect.NewUnaryHandler(ExpenseServiceListBillsProcedure, svc.ListBills, opts...),
		ExpenseServiceUpdateBillProcedure:        connect.NewUnaryHandler(ExpenseServiceUpdateBillProcedure, svc.UpdateBill, opts...),
		ExpenseServiceDeleteBillProcedure:        connect.NewUnaryHandler(ExpenseServiceDeleteBillProcedure, svc.DeleteBill, opts...),
		ExpenseServiceGetExpenseSummaryProcedure: connect.NewUnaryHandler(ExpenseServiceGetExpenseSummaryProcedure, svc.GetExpenseSummary, opts...),
		ExpenseServiceGetBalancesProcedure:       connect.NewUnaryHandler(ExpenseServiceGetBalancesProcedure, svc.GetBalances, opts...),
		ExpenseServiceScanBillProcedure:          connect.NewUnaryHandler(ExpenseServiceScanBillProcedure, svc.ScanBill, opts...),
	}
}

// ExpenseServiceClient calls a remote ExpenseService.
type ExpenseServiceClient interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	UpdateBill(context.Context, *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	GetExpenseSummary(context.Context, *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	ScanBill(context.Context, *connect.Request[api.ScanBillRequest]) (*connect.Response[api.ScanBillResponse], error)
}

// NewExpenseServiceClient creates a client for the server at baseURL.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ExpenseServiceClient {
	opts = clientOptions(opts)
	return &expenseServiceClient{
		createBill:        connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL+ExpenseServiceCreateBillProcedure, opts...),
		listBills:         connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL+ExpenseServiceListBillsProcedure, opts...),
		updateBill:        connect.NewClient[api.UpdateBillRequest, api.UpdateBillResponse](httpClient, baseURL+ExpenseServiceUpdateBillProcedure, opts...),
		deleteBill:        connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+ExpenseServiceDeleteBillProcedure, opts...),
		getExpenseSummary: connect.NewClient[api.GetExpenseSummaryRequest, api.GetExpenseSummaryResponse](httpClient, baseURL+ExpenseServiceGetExpenseSummaryProcedure, opts...),
		getBalances:       connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+ExpenseServiceGetBalancesProcedure, opts...),
		scanBill:          connect.NewClient[api.ScanBillRequest, api.ScanBillResponse](httpClient, baseURL+ExpenseServiceScanBillProcedure, opts...),
	}
}

type expenseServiceClient struct {
	createBill        *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	listBills         *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	updateBill        *connect.Client[api.UpdateBillRequest, api.UpdateBillResponse]
	deleteBill        *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	getExpenseSummary *connect.Client[api.GetExpenseSummaryRequest, api.GetExpenseSummaryResponse]
	getBalances       *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	scanBill          *connect.Client[api.ScanBillRequest, api.ScanBillResponse]
}

func (c *expenseServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *expenseServiceClient) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	return c.updateBill.CallUnary(ctx, req)
}

func (c *expenseServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetExpenseSummary(ctx context.Context, req *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error) {
	return c.getExpenseSummary.CallUnary(ctx, req)
}

func (c *expenseServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *expenseServiceClient) ScanBill(ctx context.Context, req *connect.Request[api.ScanBillRequest]) (*connect.Response[api.ScanBillResponse], error) {
	return c.scanBill.CallUnary(ctx, req)
}
