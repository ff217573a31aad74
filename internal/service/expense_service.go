package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/billscan"
	"github.com/mmynk/triplan/internal/calculator"
	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

const defaultBillDescription = "No description"

// BillScanner reads a receipt image. billscan.Client implements it.
type BillScanner interface {
	Extract(ctx context.Context, filename string, image io.Reader) (*billscan.Result, error)
}

// ExpenseOptions configures an ExpenseService. Zero values disable bill
// scanning and receipt storage.
type ExpenseOptions struct {
	Scanner BillScanner
	Media   objectstore.Store

	// IncludeOwner counts the owner in the per-person split.
	IncludeOwner bool
}

// ExpenseService implements the ExpenseService RPC interface.
type ExpenseService struct {
	store        storage.Store
	access       *Access
	events       feed.Publisher
	scanner      BillScanner
	media        objectstore.Store
	includeOwner bool
	now          func() time.Time
}

// NewExpenseService creates an expense service.
func NewExpenseService(store storage.Store, events feed.Publisher, opts ExpenseOptions) *ExpenseService {
	return &ExpenseService{
		store:        store,
		access:       NewAccess(store),
		events:       events,
		scanner:      opts.Scanner,
		media:        opts.Media,
		includeOwner: opts.IncludeOwner,
		now:          time.Now,
	}
}

func (s *ExpenseService) publish(action feed.Action, bill *models.Bill) {
	s.events.Publish(feed.Event{Resource: feed.ResourceBills, Action: action, ProjectID: bill.ProjectID, ID: bill.ID})
}

func (s *ExpenseService) today() string {
	return s.now().UTC().Format(dateLayout)
}

// billFields applies defaults and validation shared by create and update.
func (s *ExpenseService) billFields(bill *models.Bill, date, description string, raw api.RawItems) error {
	date = strings.TrimSpace(date)
	if date == "" {
		date = s.today()
	} else if _, err := parseDate("date", date); err != nil {
		return err
	}
	bill.Date = date

	bill.Description = strings.TrimSpace(description)
	if bill.Description == "" {
		bill.Description = defaultBillDescription
	}

	items, err := calculator.NormalizeBillItems(raw)
	if err != nil {
		return &models.ValidationError{Field: "items", Message: err.Error()}
	}
	bill.Items = items
	return bill.Validate()
}

// CreateBill records an expense paid by the caller.
func (s *ExpenseService) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateBill request received", "project_id", req.Msg.ProjectID, "price", req.Msg.Price)

	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	bill := &models.Bill{
		ProjectID:  req.Msg.ProjectID,
		Time:       strings.TrimSpace(req.Msg.Time),
		Price:      req.Msg.Price,
		AddedUser:  user,
		ReceiptURL: req.Msg.ReceiptURL,
	}
	if err := s.billFields(bill, req.Msg.Date, req.Msg.Description, req.Msg.Items); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateBill(ctx, bill); err != nil {
		slog.Error("CreateBill failed", "project_id", bill.ProjectID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionCreated, bill)

	return connect.NewResponse(&api.CreateBillResponse{Bill: toAPIBill(bill)}), nil
}

// ListBills returns a project's bills, newest first.
func (s *ExpenseService) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.View(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.store.ListBillsByProject(ctx, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	res := make([]*api.Bill, len(bills))
	for i := range bills {
		res[i] = toAPIBill(&bills[i])
	}
	return connect.NewResponse(&api.ListBillsResponse{Bills: res}), nil
}

// ownBill loads a bill and checks the caller recorded it.
func (s *ExpenseService) ownBill(ctx context.Context, user models.UserRef, billID string) (*models.Bill, error) {
	if billID == "" {
		return nil, &models.ValidationError{Field: "bill_id", Message: "This field is required"}
	}
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Member(ctx, user, bill.ProjectID); err != nil {
		return nil, err
	}
	if bill.AddedUser.ID != user.ID {
		return nil, ErrNotCreator
	}
	return bill, nil
}

// UpdateBill replaces a bill's fields. Only the member who recorded it may edit.
func (s *ExpenseService) UpdateBill(ctx context.Context, req *connect.Request[api.UpdateBillRequest]) (*connect.Response[api.UpdateBillResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.ownBill(ctx, user, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}

	bill.Time = strings.TrimSpace(req.Msg.Time)
	bill.Price = req.Msg.Price
	bill.ReceiptURL = req.Msg.ReceiptURL
	if err := s.billFields(bill, req.Msg.Date, req.Msg.Description, req.Msg.Items); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		slog.Error("UpdateBill failed", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionUpdated, bill)

	return connect.NewResponse(&api.UpdateBillResponse{Bill: toAPIBill(bill)}), nil
}

// DeleteBill removes a bill. Only the member who recorded it may delete.
func (s *ExpenseService) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteBill request received", "bill_id", req.Msg.BillID)

	bill, err := s.ownBill(ctx, user, req.Msg.BillID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteBill(ctx, bill.ID); err != nil {
		slog.Error("DeleteBill failed", "bill_id", bill.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionDeleted, bill)

	return connect.NewResponse(&api.DeleteBillResponse{}), nil
}

// GetExpenseSummary returns the project total and the per-person share.
func (s *ExpenseService) GetExpenseSummary(ctx context.Context, req *connect.Request[api.GetExpenseSummaryRequest]) (*connect.Response[api.GetExpenseSummaryResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.access.View(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.store.ListBillsByProject(ctx, project.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	count := calculator.CollaboratorCount(project, s.includeOwner)
	summary := calculator.SummarizeExpenses(bills, count)

	slog.Debug("Expense summary computed",
		"project_id", project.ID,
		"total", summary.Total.String(),
		"divisor", summary.Divisor,
	)
	return connect.NewResponse(&api.GetExpenseSummaryResponse{
		Total:             summary.Total.StringFixed(2),
		PerPerson:         summary.PerPerson.StringFixed(2),
		CollaboratorCount: count,
		Divisor:           summary.Divisor,
		BillCount:         summary.BillCount,
	}), nil
}

// GetBalances splits every bill across all members and returns who owes whom.
func (s *ExpenseService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.access.View(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}

	bills, err := s.store.ListBillsByProject(ctx, project.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	emails := make(map[string]string, len(project.Collaborators)+1)
	members := make([]string, 0, len(project.Collaborators)+1)
	if owner, err := s.store.GetUserByID(ctx, project.OwnerID); err == nil {
		emails[owner.ID] = owner.Email
	}
	members = append(members, project.OwnerID)
	for _, c := range project.Collaborators {
		if c.ID == project.OwnerID {
			continue
		}
		emails[c.ID] = c.Email
		members = append(members, c.ID)
	}
	for _, b := range bills {
		if _, ok := emails[b.AddedUser.ID]; !ok {
			emails[b.AddedUser.ID] = b.AddedUser.Email
		}
	}

	balances, debts, err := calculator.CalculateProjectBalances(bills, members)
	if err != nil {
		slog.Error("GetBalances failed", "project_id", project.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:    toAPIBalances(balances, emails),
		Settlements: toAPISettlements(debts),
	}), nil
}

// ScanBill stores a receipt image and asks the bill-scan service to read
// it. The result is a draft for the client to review and submit through
// CreateBill. Failures are reported once and not retried.
func (s *ExpenseService) ScanBill(ctx context.Context, req *connect.Request[api.ScanBillRequest]) (*connect.Response[api.ScanBillResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ScanBill request received", "project_id", req.Msg.ProjectID, "filename", req.Msg.Filename, "bytes", len(req.Msg.Image))

	if len(req.Msg.Image) == 0 {
		return nil, invalidArgument("image", "This field is required")
	}
	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}
	if s.scanner == nil {
		return nil, toConnectError(ErrScanDisabled)
	}

	filename := objectstore.SanitizeName(req.Msg.Filename)
	var receiptURL string
	if s.media != nil {
		key := objectstore.Key("receipts", req.Msg.ProjectID, filename)
		receiptURL, err = s.media.Put(ctx, key, bytes.NewReader(req.Msg.Image))
		if err != nil {
			slog.Error("Failed to store receipt", "project_id", req.Msg.ProjectID, "error", err)
			return nil, toConnectError(mediaError(err))
		}
	}

	result, err := s.scanner.Extract(ctx, filename, bytes.NewReader(req.Msg.Image))
	if err != nil {
		slog.Warn("ScanBill failed", "project_id", req.Msg.ProjectID, "error", err)
		return nil, toConnectError(err)
	}

	date := result.Date
	if _, err := parseDate("date", date); err != nil || date == "" {
		date = s.today()
	}
	return connect.NewResponse(&api.ScanBillResponse{
		Date:       date,
		Time:       result.Time,
		Price:      result.Amount,
		Items:      toAPIBillItems(result.Items),
		ReceiptURL: receiptURL,
	}), nil
}
