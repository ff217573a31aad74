// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/triplan/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by compare-and-swap updates when the record
	// changed since it was read.
	ErrConflict = errors.New("record was modified concurrently")
)

// ItineraryFilter narrows ListItineraries. Zero values mean "any".
type ItineraryFilter struct {
	ProjectID string
	Status    models.ItineraryStatus
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ProjectStore persists projects.
type ProjectStore interface {
	// CreateProject persists a new project.
	// The project.ID and CreatedAt fields will be populated by the store.
	CreateProject(ctx context.Context, project *models.Project) error

	// CloneProject persists project and items atomically. Each item's
	// ProjectID is set to the new project's ID.
	CloneProject(ctx context.Context, project *models.Project, items []models.ItineraryItem) error

	// GetProject retrieves a project by its ID.
	// Returns ErrNotFound if the project does not exist.
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// ListProjects returns every project, newest first.
	ListProjects(ctx context.Context) ([]*models.Project, error)

	// UpdateProject replaces the mutable fields of an existing project.
	UpdateProject(ctx context.Context, project *models.Project) error

	// AddCollaborator appends a collaborator if not already present.
	AddCollaborator(ctx context.Context, projectID string, user models.UserRef) error

	// DeleteProject removes a project and everything it owns.
	DeleteProject(ctx context.Context, projectID string) error

	// CompleteProjectsEndedBefore marks Planning projects whose end date is
	// before cutoff as Completed and returns their IDs.
	CompleteProjectsEndedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// ItineraryStore persists itinerary items.
type ItineraryStore interface {
	CreateItinerary(ctx context.Context, item *models.ItineraryItem) error
	GetItinerary(ctx context.Context, itemID string) (*models.ItineraryItem, error)
	ListItineraries(ctx context.Context, filter ItineraryFilter) ([]models.ItineraryItem, error)

	// UpdateItineraryVotes writes votes only if the stored version still
	// equals expectedVersion, then bumps the version.
	// Returns ErrConflict when another write got there first.
	UpdateItineraryVotes(ctx context.Context, itemID string, votes []models.UserRef, expectedVersion int64) error

	// UpdateItineraryStatus is the compare-and-swap counterpart for status.
	UpdateItineraryStatus(ctx context.Context, itemID string, status models.ItineraryStatus, expectedVersion int64) error

	DeleteItinerary(ctx context.Context, itemID string) error
}

// BillStore persists bills.
type BillStore interface {
	CreateBill(ctx context.Context, bill *models.Bill) error
	GetBill(ctx context.Context, billID string) (*models.Bill, error)
	ListBillsByProject(ctx context.Context, projectID string) ([]models.Bill, error)
	UpdateBill(ctx context.Context, bill *models.Bill) error
	DeleteBill(ctx context.Context, billID string) error
}

// ChatStore persists chat messages.
type ChatStore interface {
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error

	// ListChatMessages returns a project's messages oldest first.
	ListChatMessages(ctx context.Context, projectID string) ([]models.ChatMessage, error)
}

// Store defines the full set of storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	ProjectStore
	ItineraryStore
	BillStore
	ChatStore

	// Close releases any resources held by the store.
	Close() error
}
