package models

import (
	"strings"
	"time"
)

// ItineraryStatus is the proposal state of an itinerary item.
type ItineraryStatus string

const (
	StatusVoting    ItineraryStatus = "Voting"
	StatusConfirmed ItineraryStatus = "Confirmed"
	StatusCanceled  ItineraryStatus = "Canceled"
)

// Valid reports whether s is one of the three itinerary statuses.
func (s ItineraryStatus) Valid() bool {
	switch s {
	case StatusVoting, StatusConfirmed, StatusCanceled:
		return true
	}
	return false
}

// ItineraryItem is a single proposed activity, subject to group voting.
type ItineraryItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// ProjectID is the trip this item belongs to.
	ProjectID string

	Title string

	// Date is when the activity happens. Only the calendar date is used for
	// grouping; a zero Date means the item has no usable date.
	Date time.Time

	Location       string
	TypeOfActivity string
	Notes          string

	// MediaURLs are links attached to the proposal (photos, booking pages).
	MediaURLs []string

	// AddedBy is the collaborator who proposed the item.
	// Only this user may change its status or delete it.
	AddedBy UserRef

	Status ItineraryStatus

	// Votes holds at most one entry per user ID.
	Votes []UserRef

	// Version is bumped on every write and used for compare-and-swap updates.
	Version int64

	// CreatedAt is the Unix timestamp when the item was proposed.
	CreatedAt int64
}

// Validate checks the fields the proposal form marks as required.
func (i *ItineraryItem) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return &ValidationError{Field: "title", Message: "This field is required"}
	}
	if i.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "This field is required"}
	}
	if strings.TrimSpace(i.Location) == "" {
		return &ValidationError{Field: "location", Message: "This field is required"}
	}
	if strings.TrimSpace(i.TypeOfActivity) == "" {
		return &ValidationError{Field: "type_of_activity", Message: "This field is required"}
	}
	if i.Status != "" && !i.Status.Valid() {
		return &ValidationError{Field: "status", Message: "unknown status " + string(i.Status)}
	}
	return nil
}
