package itinerary

import (
	"errors"
	"fmt"

	"github.com/mmynk/triplan/internal/models"
)

var (
	// ErrPermissionDenied is returned when someone other than the item's
	// creator tries to change its status.
	ErrPermissionDenied = errors.New("only the member who proposed this item can change its status")

	// ErrInvalidStatus is returned for a status outside Voting/Confirmed/Canceled.
	ErrInvalidStatus = errors.New("invalid itinerary status")
)

// HasVoted reports whether userID appears in votes.
func HasVoted(votes []models.UserRef, userID string) bool {
	for _, v := range votes {
		if v.ID == userID {
			return true
		}
	}
	return false
}

// ToggleVote removes userID's vote if present, otherwise appends
// {userID, email}. It returns a new slice and never yields duplicate IDs.
// Voting is allowed in every status; the status itself is not touched.
func ToggleVote(votes []models.UserRef, userID, email string) []models.UserRef {
	out := make([]models.UserRef, 0, len(votes)+1)
	removed := false
	for _, v := range votes {
		if v.ID == userID {
			removed = true
			continue
		}
		out = append(out, v)
	}
	if !removed {
		out = append(out, models.UserRef{ID: userID, Email: email})
	}
	return out
}

// CanChangeStatus reports whether userID may change the item's status.
// Clients use it to disable the status control for everyone else.
func CanChangeStatus(item models.ItineraryItem, userID string) bool {
	return userID != "" && item.AddedBy.ID == userID
}

// ChangeStatus moves item to status on behalf of requestingUserID.
// Any status is reachable from any other, but only the item's creator may
// make the change. On error the returned item is the unchanged input.
func ChangeStatus(item models.ItineraryItem, status models.ItineraryStatus, requestingUserID string) (models.ItineraryItem, error) {
	if !CanChangeStatus(item, requestingUserID) {
		return item, ErrPermissionDenied
	}
	if !status.Valid() {
		return item, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	item.Status = status
	return item, nil
}

// ResetForClone prepares a copy of item for a cloned project: the cloner
// becomes the proposer, notes are cleared and voting starts over.
func ResetForClone(item models.ItineraryItem, projectID string, cloner models.UserRef) models.ItineraryItem {
	item.ID = ""
	item.ProjectID = projectID
	item.AddedBy = cloner
	item.Notes = ""
	item.Status = models.StatusVoting
	item.Votes = []models.UserRef{}
	item.Version = 0
	item.CreatedAt = 0
	item.MediaURLs = append([]string(nil), item.MediaURLs...)
	return item
}
