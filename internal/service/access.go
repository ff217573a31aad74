package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/auth"
	"github.com/mmynk/triplan/internal/middleware"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
)

// currentUser returns the authenticated caller set by the auth interceptor.
func currentUser(ctx context.Context) (models.UserRef, error) {
	user, ok := middleware.GetUser(ctx)
	if !ok {
		return models.UserRef{}, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return user, nil
}

// Access answers "may this user touch this project" for every service.
// Members are the owner and the collaborators. Public projects are readable
// by any signed-in user.
type Access struct {
	projects storage.ProjectStore
}

// NewAccess creates an access checker over projects.
func NewAccess(projects storage.ProjectStore) *Access {
	return &Access{projects: projects}
}

// View loads the project if user may read it.
func (a *Access) View(ctx context.Context, user models.UserRef, projectID string) (*models.Project, error) {
	if projectID == "" {
		return nil, invalidArgument("project_id", "This field is required")
	}
	project, err := a.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.CanView(user.ID) {
		return nil, ErrPrivate
	}
	return project, nil
}

// Member loads the project if user is the owner or a collaborator.
func (a *Access) Member(ctx context.Context, user models.UserRef, projectID string) (*models.Project, error) {
	project, err := a.View(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(user.ID) {
		return nil, ErrNotMember
	}
	return project, nil
}

// Owner loads the project if user owns it.
func (a *Access) Owner(ctx context.Context, user models.UserRef, projectID string) (*models.Project, error) {
	project, err := a.Member(ctx, user, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsOwner(user.ID) {
		return nil, ErrNotOwner
	}
	return project, nil
}

// Authorize reports whether user may watch projectID's change feed.
func (a *Access) Authorize(ctx context.Context, user models.UserRef, projectID string) error {
	_, err := a.View(ctx, user, projectID)
	return err
}
