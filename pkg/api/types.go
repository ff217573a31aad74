// Package api defines the TriPlan wire messages. They are plain Go structs
// encoded as JSON by the codec in package apiconnect.
//
// Dates without a time of day are "YYYY-MM-DD"; instants are RFC 3339.
// Money is a decimal string with two places ("35.00") where it is computed,
// and a JSON number where the client enters it.
package api

import "encoding/json"

// User is a registered account as shown to other users.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// UserRef is the {id, email} pair stored on votes, bills and collaborators.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Project is a trip.
type Project struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Destination   string    `json:"destination"`
	Description   string    `json:"description,omitempty"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	Status        string    `json:"status"`
	Private       bool      `json:"private"`
	Collaborators []UserRef `json:"collaborators"`
	ImageLink     string    `json:"image_link,omitempty"`
	OwnerID       string    `json:"owner_id"`
	CreatedAt     int64     `json:"created_at"`
}

// ItineraryItem is a proposed activity.
type ItineraryItem struct {
	ID             string    `json:"id"`
	ProjectID      string    `json:"project_id"`
	Title          string    `json:"title"`
	Date           string    `json:"date,omitempty"`
	Location       string    `json:"location"`
	TypeOfActivity string    `json:"type_of_activity"`
	Notes          string    `json:"notes,omitempty"`
	MediaURLs      []string  `json:"media_urls"`
	AddedBy        UserRef   `json:"added_by"`
	Status         string    `json:"status"`
	Votes          []UserRef `json:"votes"`
	VoteCount      int       `json:"vote_count"`
	CreatedAt      int64     `json:"created_at"`
}

// DayGroup is one "Day N" section of a grouped itinerary.
type DayGroup struct {
	Day   int             `json:"day"`
	Date  string          `json:"date"`
	Items []ItineraryItem `json:"items"`
}

// BillItem is one receipt line.
type BillItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Bill is a recorded expense.
type Bill struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Date        string     `json:"date"`
	Time        string     `json:"time,omitempty"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Items       []BillItem `json:"items"`
	AddedUser   UserRef    `json:"added_user"`
	ReceiptURL  string     `json:"receipt_url,omitempty"`
	CreatedAt   int64      `json:"created_at"`
}

// ChatMessage is one line of project chat.
type ChatMessage struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	User      string `json:"user"`
	Message   string `json:"message"`
	CreatedAt int64  `json:"created_at"`
}

// Photo is a gallery image.
type Photo struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// MemberBalance is one member's position across all bills.
// Positive NetBalance means the member is owed money.
type MemberBalance struct {
	MemberID   string `json:"member_id"`
	Email      string `json:"email"`
	NetBalance string `json:"net_balance"`
	TotalPaid  string `json:"total_paid"`
	TotalOwed  string `json:"total_owed"`
}

// Settlement is a suggested payment that clears balances.
type Settlement struct {
	FromMemberID string `json:"from_member_id"`
	ToMemberID   string `json:"to_member_id"`
	Amount       string `json:"amount"`
}

// RawItems carries receipt items in any accepted shape: a list of names, a
// name to count map, or a list of {name, count}.
type RawItems = json.RawMessage
