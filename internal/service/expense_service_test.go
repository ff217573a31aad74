package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/billscan"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/pkg/api"
)

func createBill(t *testing.T, c clients, projectID string, price float64) *api.Bill {
	t.Helper()
	resp, err := c.expenses.CreateBill(context.Background(), connect.NewRequest(&api.CreateBillRequest{
		ProjectID:   projectID,
		Date:        "2024-03-01",
		Description: "Dinner",
		Price:       price,
	}))
	require.NoError(t, err)
	return resp.Msg.Bill
}

func TestGetExpenseSummary(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	owner := env.user(t, "owner@example.com")
	var collaborators []models.UserRef
	for i := 0; i < 5; i++ {
		collaborators = append(collaborators, env.user(t, fmt.Sprintf("friend%d@example.com", i)))
	}
	p := tripWithMembers(t, env, owner, collaborators...)

	for _, price := range []float64{100, 50, 25} {
		createBill(t, env.as(owner), p.ID, price)
	}

	resp, err := env.as(collaborators[0]).expenses.GetExpenseSummary(context.Background(), connect.NewRequest(&api.GetExpenseSummaryRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Equal(t, "175.00", resp.Msg.Total)
	assert.Equal(t, "35.00", resp.Msg.PerPerson)
	assert.Equal(t, 5, resp.Msg.CollaboratorCount)
	assert.Equal(t, 5, resp.Msg.Divisor)
	assert.Equal(t, 3, resp.Msg.BillCount)
}

func TestGetExpenseSummary_NoCollaborators(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	owner := env.user(t, "owner@example.com")
	p := tripWithMembers(t, env, owner)
	createBill(t, env.as(owner), p.ID, 80)

	resp, err := env.as(owner).expenses.GetExpenseSummary(context.Background(), connect.NewRequest(&api.GetExpenseSummaryRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Msg.CollaboratorCount)
	assert.Equal(t, 1, resp.Msg.Divisor)
	assert.Equal(t, "80.00", resp.Msg.PerPerson)
}

func TestGetExpenseSummary_IncludeOwner(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{IncludeOwner: true})
	owner := env.user(t, "owner@example.com")
	bob := env.user(t, "bob@example.com")
	p := tripWithMembers(t, env, owner, bob)
	createBill(t, env.as(owner), p.ID, 90)

	resp, err := env.as(owner).expenses.GetExpenseSummary(context.Background(), connect.NewRequest(&api.GetExpenseSummaryRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Msg.Divisor)
	assert.Equal(t, "45.00", resp.Msg.PerPerson)
}

func TestCreateBill_Defaults(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	env.expenses.now = func() time.Time { return time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC) }
	alice := env.user(t, "alice@example.com")
	p := tripWithMembers(t, env, alice)

	resp, err := env.as(alice).expenses.CreateBill(context.Background(), connect.NewRequest(&api.CreateBillRequest{
		ProjectID: p.ID,
		Price:     12.5,
		Items:     api.RawItems(`{"Pizza": 2, "Beer": 1}`),
	}))
	require.NoError(t, err)

	bill := resp.Msg.Bill
	assert.Equal(t, "2024-03-09", bill.Date)
	assert.Equal(t, "No description", bill.Description)
	assert.Equal(t, []api.BillItem{{Name: "Beer", Count: 1}, {Name: "Pizza", Count: 2}}, bill.Items)
	assert.Equal(t, alice.ID, bill.AddedUser.ID)
}

func TestCreateBill_Validation(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := tripWithMembers(t, env, alice)

	tests := []struct {
		name string
		as   models.UserRef
		req  *api.CreateBillRequest
		code connect.Code
	}{
		{"negative price", alice, &api.CreateBillRequest{ProjectID: p.ID, Price: -1}, connect.CodeInvalidArgument},
		{"bad date", alice, &api.CreateBillRequest{ProjectID: p.ID, Date: "March 1st"}, connect.CodeInvalidArgument},
		{"bad items", alice, &api.CreateBillRequest{ProjectID: p.ID, Items: api.RawItems(`"pizza"`)}, connect.CodeInvalidArgument},
		{"non-member", bob, &api.CreateBillRequest{ProjectID: p.ID, Price: 10}, connect.CodePermissionDenied},
		{"unknown project", alice, &api.CreateBillRequest{ProjectID: "missing", Price: 10}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.as(tt.as).expenses.CreateBill(context.Background(), connect.NewRequest(tt.req))
			requireCode(t, err, tt.code)
		})
	}
}

func TestUpdateAndDeleteBill(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := tripWithMembers(t, env, alice, bob)
	bill := createBill(t, env.as(alice), p.ID, 40)

	update := &api.UpdateBillRequest{
		BillID:      bill.ID,
		Date:        "2024-03-02",
		Description: "Lunch",
		Price:       42,
		Items:       api.RawItems(`["Soup", "Bread"]`),
	}

	_, err := env.as(bob).expenses.UpdateBill(context.Background(), connect.NewRequest(update))
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := env.as(alice).expenses.UpdateBill(context.Background(), connect.NewRequest(update))
	require.NoError(t, err)
	assert.Equal(t, "Lunch", resp.Msg.Bill.Description)
	assert.Equal(t, 42.0, resp.Msg.Bill.Price)
	assert.Equal(t, []api.BillItem{{Name: "Soup", Count: 1}, {Name: "Bread", Count: 1}}, resp.Msg.Bill.Items)

	_, err = env.as(bob).expenses.DeleteBill(context.Background(), connect.NewRequest(&api.DeleteBillRequest{BillID: bill.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.as(alice).expenses.DeleteBill(context.Background(), connect.NewRequest(&api.DeleteBillRequest{BillID: bill.ID}))
	require.NoError(t, err)

	list, err := env.as(alice).expenses.ListBills(context.Background(), connect.NewRequest(&api.ListBillsRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Empty(t, list.Msg.Bills)
}

func TestListBills_NewestFirst(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	p := tripWithMembers(t, env, alice)
	c := env.as(alice)

	for _, date := range []string{"2024-03-01", "2024-03-03", "2024-03-02"} {
		_, err := c.expenses.CreateBill(context.Background(), connect.NewRequest(&api.CreateBillRequest{ProjectID: p.ID, Date: date, Price: 1}))
		require.NoError(t, err)
	}

	resp, err := c.expenses.ListBills(context.Background(), connect.NewRequest(&api.ListBillsRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	var dates []string
	for _, b := range resp.Msg.Bills {
		dates = append(dates, b.Date)
	}
	assert.Equal(t, []string{"2024-03-03", "2024-03-02", "2024-03-01"}, dates)
}

func TestGetBalances(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := tripWithMembers(t, env, alice, bob)

	createBill(t, env.as(alice), p.ID, 100)
	createBill(t, env.as(bob), p.ID, 40)

	resp, err := env.as(alice).expenses.GetBalances(context.Background(), connect.NewRequest(&api.GetBalancesRequest{ProjectID: p.ID}))
	require.NoError(t, err)

	byEmail := make(map[string]*api.MemberBalance)
	for _, b := range resp.Msg.Balances {
		byEmail[b.Email] = b
	}
	require.Len(t, byEmail, 2)
	assert.Equal(t, "30.00", byEmail[alice.Email].NetBalance)
	assert.Equal(t, "-30.00", byEmail[bob.Email].NetBalance)

	require.Len(t, resp.Msg.Settlements, 1)
	assert.Equal(t, api.Settlement{FromMemberID: bob.ID, ToMemberID: alice.ID, Amount: "30.00"}, *resp.Msg.Settlements[0])
}

func TestScanBill(t *testing.T) {
	var gotFile string
	scanServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/extract-info/" {
			http.NotFound(w, r)
			return
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		io.Copy(io.Discard, f)
		gotFile = header.Filename

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"date":   "2024-03-01",
			"time":   "19:45",
			"amount": "42.50",
			"items":  map[string]int{"Pizza": 2},
		})
	}))
	defer scanServer.Close()

	env := setupTestServer(t, ExpenseOptions{Scanner: billscan.New(scanServer.URL, 5*time.Second)})
	alice := env.user(t, "alice@example.com")
	p := tripWithMembers(t, env, alice)

	resp, err := env.as(alice).expenses.ScanBill(context.Background(), connect.NewRequest(&api.ScanBillRequest{
		ProjectID: p.ID,
		Filename:  "receipt #1.jpg",
		Image:     []byte("jpeg bytes"),
	}))
	require.NoError(t, err)

	assert.Equal(t, "receipt__1.jpg", gotFile)
	assert.Equal(t, "2024-03-01", resp.Msg.Date)
	assert.Equal(t, "19:45", resp.Msg.Time)
	assert.Equal(t, 42.5, resp.Msg.Price)
	assert.Equal(t, []api.BillItem{{Name: "Pizza", Count: 2}}, resp.Msg.Items)
	assert.Equal(t, "http://media.test/receipts/"+p.ID+"/receipt__1.jpg", resp.Msg.ReceiptURL)

	stored, err := os.ReadFile(filepath.Join(env.mediaDir, "receipts", p.ID, "receipt__1.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(stored))
}

func TestScanBill_Failures(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model offline", http.StatusBadGateway)
	}))
	defer failing.Close()

	t.Run("service error", func(t *testing.T) {
		env := setupTestServer(t, ExpenseOptions{Scanner: billscan.New(failing.URL, 5*time.Second)})
		alice := env.user(t, "alice@example.com")
		p := tripWithMembers(t, env, alice)

		_, err := env.as(alice).expenses.ScanBill(context.Background(), connect.NewRequest(&api.ScanBillRequest{
			ProjectID: p.ID, Filename: "r.jpg", Image: []byte("x"),
		}))
		requireCode(t, err, connect.CodeUnavailable)
	})

	t.Run("not configured", func(t *testing.T) {
		env := setupTestServer(t, ExpenseOptions{})
		alice := env.user(t, "alice@example.com")
		p := tripWithMembers(t, env, alice)

		_, err := env.as(alice).expenses.ScanBill(context.Background(), connect.NewRequest(&api.ScanBillRequest{
			ProjectID: p.ID, Filename: "r.jpg", Image: []byte("x"),
		}))
		requireCode(t, err, connect.CodeUnavailable)
	})

	t.Run("empty image", func(t *testing.T) {
		env := setupTestServer(t, ExpenseOptions{})
		alice := env.user(t, "alice@example.com")
		p := tripWithMembers(t, env, alice)

		_, err := env.as(alice).expenses.ScanBill(context.Background(), connect.NewRequest(&api.ScanBillRequest{ProjectID: p.ID}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})
}
