package api

// CreateBillRequest records an expense. Date defaults to today and
// Description to "No description".
type CreateBillRequest struct {
	ProjectID   string   `json:"project_id"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Items       RawItems `json:"items,omitempty"`
	ReceiptURL  string   `json:"receipt_url"`
}

type CreateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type ListBillsRequest struct {
	ProjectID string `json:"project_id"`
}

type ListBillsResponse struct {
	Bills []*Bill `json:"bills"`
}

type UpdateBillRequest struct {
	BillID      string   `json:"bill_id"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Items       RawItems `json:"items,omitempty"`
	ReceiptURL  string   `json:"receipt_url"`
}

type UpdateBillResponse struct {
	Bill *Bill `json:"bill"`
}

type DeleteBillRequest struct {
	BillID string `json:"bill_id"`
}

type DeleteBillResponse struct{}

type GetExpenseSummaryRequest struct {
	ProjectID string `json:"project_id"`
}

// GetExpenseSummaryResponse is the even split of all bills.
// Divisor is max(CollaboratorCount, 1).
type GetExpenseSummaryResponse struct {
	Total             string `json:"total"`
	PerPerson         string `json:"per_person"`
	CollaboratorCount int    `json:"collaborator_count"`
	Divisor           int    `json:"divisor"`
	BillCount         int    `json:"bill_count"`
}

type GetBalancesRequest struct {
	ProjectID string `json:"project_id"`
}

type GetBalancesResponse struct {
	Balances    []*MemberBalance `json:"balances"`
	Settlements []*Settlement    `json:"settlements"`
}

// ScanBillRequest uploads a receipt photo. Image is raw bytes (base64 in JSON).
type ScanBillRequest struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	Image     []byte `json:"image"`
}

// ScanBillResponse is a prefilled bill the user reviews before CreateBill.
type ScanBillResponse struct {
	Date       string     `json:"date"`
	Time       string     `json:"time"`
	Price      float64    `json:"price"`
	Items      []BillItem `json:"items"`
	ReceiptURL string     `json:"receipt_url"`
}
