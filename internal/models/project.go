package models

import (
	"fmt"
	"strings"
	"time"
)

// ProjectStatus is the lifecycle state of a trip.
type ProjectStatus string

const (
	ProjectPlanning  ProjectStatus = "Planning"
	ProjectCompleted ProjectStatus = "Completed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	return s == ProjectPlanning || s == ProjectCompleted
}

// Project represents a trip being planned.
// It is owned by one user and optionally shared with collaborators.
type Project struct {
	// ID is the unique identifier for the project (UUID format).
	ID string

	// Title is the display name of the trip (e.g., "Lisbon Spring Break").
	Title string

	Destination string
	Description string

	// StartDate and EndDate bound the trip. StartDate must not be after EndDate.
	StartDate time.Time
	EndDate   time.Time

	Status ProjectStatus

	// Private projects are only visible to the owner and collaborators.
	Private bool

	// Collaborators are the users granted access besides the owner.
	Collaborators []UserRef

	// ImageLink is the public URL of the cover image, if any.
	ImageLink string

	// OwnerID is the user ID of the project's creator.
	OwnerID string

	// CreatedAt is the Unix timestamp when the project was created.
	CreatedAt int64
}

// IsOwner reports whether userID owns the project.
func (p *Project) IsOwner(userID string) bool {
	return userID != "" && p.OwnerID == userID
}

// IsCollaborator reports whether userID was invited to the project.
func (p *Project) IsCollaborator(userID string) bool {
	for _, c := range p.Collaborators {
		if c.ID == userID {
			return true
		}
	}
	return false
}

// IsMember reports whether userID is the owner or a collaborator.
func (p *Project) IsMember(userID string) bool {
	return p.IsOwner(userID) || p.IsCollaborator(userID)
}

// CanView reports whether userID may read the project and its children.
// Public projects are readable by any authenticated user.
func (p *Project) CanView(userID string) bool {
	return !p.Private || p.IsMember(userID)
}

// Validate checks required fields and the date ordering invariant.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &ValidationError{Field: "title", Message: "This field is required"}
	}
	if strings.TrimSpace(p.Destination) == "" {
		return &ValidationError{Field: "destination", Message: "This field is required"}
	}
	if p.Status != "" && !p.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", p.Status)}
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.StartDate.After(p.EndDate) {
		return &ValidationError{Field: "end_date", Message: "end date must not be before start date"}
	}
	return nil
}
