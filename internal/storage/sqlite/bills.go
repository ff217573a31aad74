package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/triplan/internal/models"
)

const billColumns = `id, project_id, date, time, description, price, added_user_id, added_user_email, receipt_url, created_at`

// CreateBill persists a new bill with its items.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	if bill.CreatedAt == 0 {
		bill.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO bills ("+billColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		bill.ID, bill.ProjectID, bill.Date, bill.Time, bill.Description, bill.Price,
		bill.AddedUser.ID, bill.AddedUser.Email, bill.ReceiptURL, bill.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertBillItems(ctx, tx, bill.ID, bill.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertBillItems(ctx context.Context, tx *sql.Tx, billID string, items []models.BillItem) error {
	for i, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO bill_items (bill_id, position, name, count) VALUES (?, ?, ?, ?)",
			billID, i, item.Name, item.Count,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill item: %w", err)
		}
	}
	return nil
}

// GetBill retrieves a bill by ID, including its items.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+billColumns+" FROM bills WHERE id = ?", billID)
	bill, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("bill", billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	items, err := s.billItems(ctx, []string{bill.ID})
	if err != nil {
		return nil, err
	}
	bill.Items = items[bill.ID]
	if bill.Items == nil {
		bill.Items = []models.BillItem{}
	}
	return &bill, nil
}

// ListBillsByProject returns a project's bills, most recent expense date first.
func (s *SQLiteStore) ListBillsByProject(ctx context.Context, projectID string) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+billColumns+" FROM bills WHERE project_id = ? ORDER BY date DESC, created_at DESC, rowid DESC",
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	var ids []string
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
		ids = append(ids, bill.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}

	items, err := s.billItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range bills {
		bills[i].Items = items[bills[i].ID]
		if bills[i].Items == nil {
			bills[i].Items = []models.BillItem{}
		}
	}
	return bills, nil
}

// UpdateBill replaces a bill's editable fields and items.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE bills SET date = ?, time = ?, description = ?, price = ?, receipt_url = ? WHERE id = ?",
		bill.Date, bill.Time, bill.Description, bill.Price, bill.ReceiptURL, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	} else if n == 0 {
		return notFound("bill", bill.ID)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM bill_items WHERE bill_id = ?", bill.ID); err != nil {
		return fmt.Errorf("failed to delete old bill items: %w", err)
	}
	if err := insertBillItems(ctx, tx, bill.ID, bill.Items); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteBill removes a bill and its items.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound("bill", billID)
	}
	return nil
}

func (s *SQLiteStore) billItems(ctx context.Context, billIDs []string) (map[string][]models.BillItem, error) {
	out := make(map[string][]models.BillItem, len(billIDs))
	if len(billIDs) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(billIDs))
	for i, id := range billIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT bill_id, name, count FROM bill_items
		 WHERE bill_id IN (`+placeholders(len(billIDs))+`)
		 ORDER BY bill_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get bill items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var billID string
		var item models.BillItem
		if err := rows.Scan(&billID, &item.Name, &item.Count); err != nil {
			return nil, fmt.Errorf("failed to scan bill item: %w", err)
		}
		out[billID] = append(out[billID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bill items: %w", err)
	}
	return out, nil
}

func scanBill(row rowScanner) (models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.ProjectID, &b.Date, &b.Time, &b.Description, &b.Price,
		&b.AddedUser.ID, &b.AddedUser.Email, &b.ReceiptURL, &b.CreatedAt)
	return b, err
}
