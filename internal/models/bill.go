package models

// Bill represents an expense recorded against a project.
// Bills are split evenly across the party; see calculator.SummarizeExpenses.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// ProjectID is the trip this expense belongs to.
	ProjectID string

	// Date is the calendar date of the expense (YYYY-MM-DD).
	Date string

	// Time is the time of day printed on the receipt, if known (free form).
	Time string

	Description string

	// Price is the amount paid. Never negative.
	Price float64

	// Items are the receipt lines in canonical form.
	Items []BillItem

	// AddedUser is the collaborator who recorded (and paid) the bill.
	// Only this user may edit or delete it.
	AddedUser UserRef

	// ReceiptURL is the public URL of the scanned receipt image, if any.
	ReceiptURL string

	// CreatedAt is the Unix timestamp when the bill was recorded.
	CreatedAt int64
}

// BillItem is one receipt line. Count defaults to 1 when the source only
// listed names.
type BillItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Validate checks the price invariant.
func (b *Bill) Validate() error {
	if b.Price < 0 {
		return &ValidationError{Field: "price", Message: "price must not be negative"}
	}
	return nil
}
