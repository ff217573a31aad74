package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/triplan/internal/auth"
	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

// ProjectService implements the ProjectService RPC interface.
type ProjectService struct {
	store  storage.Store
	access *Access
	events feed.Publisher
	media  objectstore.Store
}

// NewProjectService creates a project service. media may be nil, in which
// case cover uploads fail with Unavailable.
func NewProjectService(store storage.Store, events feed.Publisher, media objectstore.Store) *ProjectService {
	return &ProjectService{
		store:  store,
		access: NewAccess(store),
		events: events,
		media:  media,
	}
}

func (s *ProjectService) publish(action feed.Action, projectID string) {
	s.events.Publish(feed.Event{Resource: feed.ResourceProjects, Action: action, ProjectID: projectID, ID: projectID})
}

// resolveCollaborators turns invite emails into user refs. The owner and
// duplicate addresses are dropped.
func (s *ProjectService) resolveCollaborators(ctx context.Context, ownerID string, emails []string) ([]models.UserRef, error) {
	refs := make([]models.UserRef, 0, len(emails))
	seen := make(map[string]bool, len(emails))
	for _, email := range emails {
		email = auth.NormalizeEmail(email)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true

		user, err := s.store.GetUserByEmail(ctx, email)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &models.ValidationError{Field: "collaborator_emails", Message: "no account for " + email}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up collaborator: %w", err)
		}
		if user.ID == ownerID {
			continue
		}
		refs = append(refs, user.Ref())
	}
	return refs, nil
}

func projectDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := parseDate("start_date", start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate("end_date", end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return startDate, endDate, nil
}

// CreateProject creates a trip owned by the caller.
func (s *ProjectService) CreateProject(ctx context.Context, req *connect.Request[api.CreateProjectRequest]) (*connect.Response[api.CreateProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateProject request received", "title", req.Msg.Title, "user_id", user.ID)

	start, end, err := projectDates(req.Msg.StartDate, req.Msg.EndDate)
	if err != nil {
		return nil, toConnectError(err)
	}
	collaborators, err := s.resolveCollaborators(ctx, user.ID, req.Msg.CollaboratorEmails)
	if err != nil {
		return nil, toConnectError(err)
	}

	private := true
	if req.Msg.Private != nil {
		private = *req.Msg.Private
	}

	project := &models.Project{
		Title:         strings.TrimSpace(req.Msg.Title),
		Destination:   strings.TrimSpace(req.Msg.Destination),
		Description:   req.Msg.Description,
		StartDate:     start,
		EndDate:       end,
		Status:        models.ProjectPlanning,
		Private:       private,
		Collaborators: collaborators,
		ImageLink:     req.Msg.ImageLink,
		OwnerID:       user.ID,
	}
	if err := project.Validate(); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		slog.Error("CreateProject failed", "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionCreated, project.ID)

	slog.Info("CreateProject completed", "project_id", project.ID)
	return connect.NewResponse(&api.CreateProjectResponse{Project: toAPIProject(project)}), nil
}

// GetProject returns a project the caller may view.
func (s *ProjectService) GetProject(ctx context.Context, req *connect.Request[api.GetProjectRequest]) (*connect.Response[api.GetProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	project, err := s.access.View(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetProjectResponse{Project: toAPIProject(project)}), nil
}

// ListProjects splits the visible projects into the caller's own, the ones
// they collaborate on and public ones from other users.
func (s *ProjectService) ListProjects(ctx context.Context, req *connect.Request[api.ListProjectsRequest]) (*connect.Response[api.ListProjectsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		slog.Error("ListProjects failed", "error", err)
		return nil, toConnectError(err)
	}

	res := &api.ListProjectsResponse{
		Owned:         []*api.Project{},
		Collaborating: []*api.Project{},
		Public:        []*api.Project{},
	}
	for _, p := range projects {
		switch {
		case p.IsOwner(user.ID):
			res.Owned = append(res.Owned, toAPIProject(p))
		case p.IsCollaborator(user.ID):
			res.Collaborating = append(res.Collaborating, toAPIProject(p))
		case !p.Private:
			res.Public = append(res.Public, toAPIProject(p))
		}
	}
	return connect.NewResponse(res), nil
}

// UpdateProject replaces a project's editable fields. Owner only.
func (s *ProjectService) UpdateProject(ctx context.Context, req *connect.Request[api.UpdateProjectRequest]) (*connect.Response[api.UpdateProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateProject request received", "project_id", req.Msg.ProjectID, "user_id", user.ID)

	project, err := s.access.Owner(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}

	start, end, err := projectDates(req.Msg.StartDate, req.Msg.EndDate)
	if err != nil {
		return nil, toConnectError(err)
	}
	collaborators, err := s.resolveCollaborators(ctx, user.ID, req.Msg.CollaboratorEmails)
	if err != nil {
		return nil, toConnectError(err)
	}

	project.Title = strings.TrimSpace(req.Msg.Title)
	project.Destination = strings.TrimSpace(req.Msg.Destination)
	project.Description = req.Msg.Description
	project.StartDate = start
	project.EndDate = end
	if req.Msg.Private != nil {
		project.Private = *req.Msg.Private
	}
	project.ImageLink = req.Msg.ImageLink
	project.Collaborators = collaborators
	if req.Msg.Status != "" {
		project.Status = models.ProjectStatus(req.Msg.Status)
	}
	if err := project.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateProject(ctx, project); err != nil {
		slog.Error("UpdateProject failed", "project_id", project.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionUpdated, project.ID)

	return connect.NewResponse(&api.UpdateProjectResponse{Project: toAPIProject(project)}), nil
}

// DeleteProject removes a project with its itinerary, bills and chat. Owner only.
func (s *ProjectService) DeleteProject(ctx context.Context, req *connect.Request[api.DeleteProjectRequest]) (*connect.Response[api.DeleteProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteProject request received", "project_id", req.Msg.ProjectID, "user_id", user.ID)

	if _, err := s.access.Owner(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.DeleteProject(ctx, req.Msg.ProjectID); err != nil {
		slog.Error("DeleteProject failed", "project_id", req.Msg.ProjectID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionDeleted, req.Msg.ProjectID)

	return connect.NewResponse(&api.DeleteProjectResponse{}), nil
}

// JoinProject adds the caller as a collaborator. It backs invite links, so
// private projects can be joined by anyone holding the id. Joining twice
// is a no-op.
func (s *ProjectService) JoinProject(ctx context.Context, req *connect.Request[api.JoinProjectRequest]) (*connect.Response[api.JoinProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ProjectID == "" {
		return nil, invalidArgument("project_id", "This field is required")
	}
	slog.Info("JoinProject request received", "project_id", req.Msg.ProjectID, "user_id", user.ID)

	project, err := s.store.GetProject(ctx, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !project.IsMember(user.ID) {
		if err := s.store.AddCollaborator(ctx, project.ID, user); err != nil {
			slog.Error("JoinProject failed", "project_id", project.ID, "error", err)
			return nil, toConnectError(err)
		}
		project.Collaborators = append(project.Collaborators, user)
		s.publish(feed.ActionUpdated, project.ID)
	}

	return connect.NewResponse(&api.JoinProjectResponse{Project: toAPIProject(project)}), nil
}

// CloneProject copies a visible project and its itinerary into a new
// private project owned by the caller. Items restart in Voting with no
// votes and no notes.
func (s *ProjectService) CloneProject(ctx context.Context, req *connect.Request[api.CloneProjectRequest]) (*connect.Response[api.CloneProjectResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CloneProject request received", "project_id", req.Msg.ProjectID, "user_id", user.ID)

	source, err := s.access.View(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if source.IsOwner(user.ID) {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("you already own this project"))
	}

	items, err := s.store.ListItineraries(ctx, storage.ItineraryFilter{ProjectID: source.ID})
	if err != nil {
		return nil, toConnectError(err)
	}

	clone := &models.Project{
		Title:       source.Title + " - Copy",
		Destination: source.Destination,
		Description: source.Description,
		StartDate:   source.StartDate,
		EndDate:     source.EndDate,
		Status:      models.ProjectPlanning,
		Private:     true,
		ImageLink:   source.ImageLink,
		OwnerID:     user.ID,
	}
	copies := make([]models.ItineraryItem, len(items))
	for i, item := range items {
		copies[i] = itinerary.ResetForClone(item, "", user)
	}
	if err := s.store.CloneProject(ctx, clone, copies); err != nil {
		slog.Error("CloneProject failed", "project_id", source.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionCreated, clone.ID)

	slog.Info("CloneProject completed", "source_id", source.ID, "project_id", clone.ID, "items", len(items))
	return connect.NewResponse(&api.CloneProjectResponse{
		Project:     toAPIProject(clone),
		ItemsCopied: len(items),
	}), nil
}

// UploadCoverImage stores a cover image and points the project at it. Owner only.
func (s *ProjectService) UploadCoverImage(ctx context.Context, req *connect.Request[api.UploadCoverImageRequest]) (*connect.Response[api.UploadCoverImageResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Data) == 0 {
		return nil, invalidArgument("data", "This field is required")
	}

	project, err := s.access.Owner(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if s.media == nil {
		return nil, toConnectError(ErrMediaUnavailable)
	}

	key := objectstore.Key("covers", project.ID, req.Msg.Filename)
	url, err := s.media.Put(ctx, key, bytes.NewReader(req.Msg.Data))
	if err != nil {
		slog.Error("UploadCoverImage failed", "project_id", project.ID, "error", err)
		return nil, toConnectError(mediaError(err))
	}

	project.ImageLink = url
	if err := s.store.UpdateProject(ctx, project); err != nil {
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionUpdated, project.ID)

	return connect.NewResponse(&api.UploadCoverImageResponse{Project: toAPIProject(project)}), nil
}

// mediaError keeps path errors as validation failures and reports the rest
// as storage outages.
func mediaError(err error) error {
	if errors.Is(err, objectstore.ErrInvalidPath) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrMediaUnavailable, err)
}
