package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v4"

	"github.com/mmynk/triplan/internal/export"
	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/itinerary"
	"github.com/mmynk/triplan/internal/metrics"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

const maxWriteRetries = 5

// ItineraryService implements the ItineraryService RPC interface.
type ItineraryService struct {
	store  storage.Store
	access *Access
	events feed.Publisher

	// newBackOff returns the retry policy for compare-and-swap writes.
	newBackOff func() backoff.BackOff
}

// NewItineraryService creates an itinerary service.
func NewItineraryService(store storage.Store, events feed.Publisher) *ItineraryService {
	return &ItineraryService{
		store:      store,
		access:     NewAccess(store),
		events:     events,
		newBackOff: defaultBackOff,
	}
}

func defaultBackOff() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 10 * time.Millisecond
	exp.MaxInterval = 200 * time.Millisecond
	exp.MaxElapsedTime = 2 * time.Second
	return backoff.WithMaxRetries(exp, maxWriteRetries)
}

func (s *ItineraryService) publish(action feed.Action, item *models.ItineraryItem) {
	s.events.Publish(feed.Event{Resource: feed.ResourceItineraries, Action: action, ProjectID: item.ProjectID, ID: item.ID})
}

// listItems loads a project's items, optionally narrowed to one status.
func (s *ItineraryService) listItems(ctx context.Context, projectID, status string) ([]models.ItineraryItem, error) {
	filter := storage.ItineraryFilter{ProjectID: projectID}
	if status != "" {
		filter.Status = models.ItineraryStatus(status)
		if !filter.Status.Valid() {
			return nil, &models.ValidationError{Field: "status", Message: "unknown status " + status}
		}
	}
	return s.store.ListItineraries(ctx, filter)
}

// CreateItem proposes an activity. The caller must be a project member.
func (s *ItineraryService) CreateItem(ctx context.Context, req *connect.Request[api.CreateItemRequest]) (*connect.Response[api.CreateItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateItem request received", "project_id", req.Msg.ProjectID, "title", req.Msg.Title)

	if _, err := s.access.Member(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	date, err := parseInstant("date", req.Msg.Date)
	if err != nil {
		return nil, toConnectError(err)
	}

	item := &models.ItineraryItem{
		ProjectID:      req.Msg.ProjectID,
		Title:          strings.TrimSpace(req.Msg.Title),
		Date:           date,
		Location:       strings.TrimSpace(req.Msg.Location),
		TypeOfActivity: strings.TrimSpace(req.Msg.TypeOfActivity),
		Notes:          req.Msg.Notes,
		MediaURLs:      req.Msg.MediaURLs,
		AddedBy:        user,
		Status:         models.StatusVoting,
		Votes:          []models.UserRef{},
	}
	if err := item.Validate(); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateItinerary(ctx, item); err != nil {
		slog.Error("CreateItem failed", "project_id", item.ProjectID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionCreated, item)

	return connect.NewResponse(&api.CreateItemResponse{Item: toAPIItem(*item)}), nil
}

// ListItems returns a project's items sorted by date.
func (s *ItineraryService) ListItems(ctx context.Context, req *connect.Request[api.ListItemsRequest]) (*connect.Response[api.ListItemsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.View(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	items, err := s.listItems(ctx, req.Msg.ProjectID, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListItemsResponse{Items: toAPIItems(itinerary.SortByDate(items))}), nil
}

// GroupedItems returns a project's items grouped into Day N buckets.
func (s *ItineraryService) GroupedItems(ctx context.Context, req *connect.Request[api.GroupedItemsRequest]) (*connect.Response[api.GroupedItemsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.View(ctx, user, req.Msg.ProjectID); err != nil {
		return nil, toConnectError(err)
	}

	items, err := s.listItems(ctx, req.Msg.ProjectID, req.Msg.Status)
	if err != nil {
		return nil, toConnectError(err)
	}
	grouping := itinerary.GroupByDate(items)
	return connect.NewResponse(&api.GroupedItemsResponse{
		Days:    toAPIDays(grouping),
		Skipped: grouping.Skipped,
	}), nil
}

// FinalPlan returns the confirmed items grouped by day.
func (s *ItineraryService) FinalPlan(ctx context.Context, req *connect.Request[api.FinalPlanRequest]) (*connect.Response[api.FinalPlanResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	_, plan, err := s.finalPlan(ctx, user, req.Msg.ProjectID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.FinalPlanResponse{
		Days:    toAPIDays(plan),
		Skipped: plan.Skipped,
	}), nil
}

func (s *ItineraryService) finalPlan(ctx context.Context, user models.UserRef, projectID string) (*models.Project, itinerary.Grouping, error) {
	project, err := s.access.View(ctx, user, projectID)
	if err != nil {
		return nil, itinerary.Grouping{}, err
	}
	items, err := s.store.ListItineraries(ctx, storage.ItineraryFilter{ProjectID: projectID, Status: models.StatusConfirmed})
	if err != nil {
		return nil, itinerary.Grouping{}, err
	}
	return project, itinerary.FinalPlan(items), nil
}

// updateWithRetry runs a read-modify-write on one item. mutate returns the
// item to store; write persists it guarded by the version read. Conflicts
// are retried with a fresh read, everything else fails at once.
func (s *ItineraryService) updateWithRetry(
	ctx context.Context,
	itemID string,
	mutate func(item models.ItineraryItem) (models.ItineraryItem, error),
	write func(item models.ItineraryItem, version int64) error,
) (models.ItineraryItem, error) {
	var updated models.ItineraryItem
	op := func() error {
		current, err := s.store.GetItinerary(ctx, itemID)
		if err != nil {
			return backoff.Permanent(err)
		}
		next, err := mutate(*current)
		if err != nil {
			return backoff.Permanent(err)
		}
		if err := write(next, current.Version); err != nil {
			if errors.Is(err, storage.ErrConflict) {
				metrics.VoteConflictsTotal.Inc()
				slog.Debug("Itinerary write conflict, retrying", "item_id", itemID)
				return err
			}
			return backoff.Permanent(err)
		}
		next.Version = current.Version + 1
		updated = next
		return nil
	}

	err := backoff.Retry(op, backoff.WithContext(s.newBackOff(), ctx))
	return updated, err
}

// memberOfItemProject checks that user belongs to the project owning itemID.
func (s *ItineraryService) memberOfItemProject(ctx context.Context, user models.UserRef, itemID string) (*models.ItineraryItem, error) {
	if itemID == "" {
		return nil, &models.ValidationError{Field: "item_id", Message: "This field is required"}
	}
	item, err := s.store.GetItinerary(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Member(ctx, user, item.ProjectID); err != nil {
		return nil, err
	}
	return item, nil
}

// ToggleVote adds the caller's vote, or removes it if already cast.
func (s *ItineraryService) ToggleVote(ctx context.Context, req *connect.Request[api.ToggleVoteRequest]) (*connect.Response[api.ToggleVoteResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ToggleVote request received", "item_id", req.Msg.ItemID, "user_id", user.ID)

	if _, err := s.memberOfItemProject(ctx, user, req.Msg.ItemID); err != nil {
		return nil, toConnectError(err)
	}

	item, err := s.updateWithRetry(ctx, req.Msg.ItemID,
		func(item models.ItineraryItem) (models.ItineraryItem, error) {
			item.Votes = itinerary.ToggleVote(item.Votes, user.ID, user.Email)
			return item, nil
		},
		func(item models.ItineraryItem, version int64) error {
			return s.store.UpdateItineraryVotes(ctx, item.ID, item.Votes, version)
		},
	)
	if err != nil {
		slog.Warn("ToggleVote failed", "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionUpdated, &item)

	return connect.NewResponse(&api.ToggleVoteResponse{Item: toAPIItem(item)}), nil
}

// ChangeStatus moves an item between Voting, Confirmed and Canceled. Only
// the member who proposed the item may do so.
func (s *ItineraryService) ChangeStatus(ctx context.Context, req *connect.Request[api.ChangeStatusRequest]) (*connect.Response[api.ChangeStatusResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ChangeStatus request received", "item_id", req.Msg.ItemID, "status", req.Msg.Status, "user_id", user.ID)

	if _, err := s.memberOfItemProject(ctx, user, req.Msg.ItemID); err != nil {
		return nil, toConnectError(err)
	}

	status := models.ItineraryStatus(req.Msg.Status)
	item, err := s.updateWithRetry(ctx, req.Msg.ItemID,
		func(item models.ItineraryItem) (models.ItineraryItem, error) {
			return itinerary.ChangeStatus(item, status, user.ID)
		},
		func(item models.ItineraryItem, version int64) error {
			return s.store.UpdateItineraryStatus(ctx, item.ID, item.Status, version)
		},
	)
	if err != nil {
		slog.Warn("ChangeStatus failed", "item_id", req.Msg.ItemID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionUpdated, &item)

	return connect.NewResponse(&api.ChangeStatusResponse{Item: toAPIItem(item)}), nil
}

// DeleteItem removes an item. Only its creator may delete it.
func (s *ItineraryService) DeleteItem(ctx context.Context, req *connect.Request[api.DeleteItemRequest]) (*connect.Response[api.DeleteItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteItem request received", "item_id", req.Msg.ItemID, "user_id", user.ID)

	item, err := s.memberOfItemProject(ctx, user, req.Msg.ItemID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if item.AddedBy.ID != user.ID {
		return nil, toConnectError(ErrNotCreator)
	}

	if err := s.store.DeleteItinerary(ctx, item.ID); err != nil {
		slog.Error("DeleteItem failed", "item_id", item.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.publish(feed.ActionDeleted, item)

	return connect.NewResponse(&api.DeleteItemResponse{}), nil
}

// FinalPlanPDF serves GET /final-plan/{file}, where file is the project id
// with an optional ".pdf" suffix. It expects the user in the request
// context (see middleware.RequireAuthHTTP).
func (s *ItineraryService) FinalPlanPDF(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	projectID := strings.TrimSuffix(r.PathValue("file"), ".pdf")

	project, plan, err := s.finalPlan(r.Context(), user, projectID)
	if err != nil {
		http.Error(w, err.Error(), httpStatus(toConnectError(err)))
		return
	}

	data, err := export.FinalPlanBytes(project, plan)
	if err != nil {
		slog.Error("Failed to render final plan", "project_id", projectID, "error", err)
		http.Error(w, "failed to render final plan", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(project)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// httpStatus maps a Connect error code onto the closest HTTP status.
func httpStatus(err error) int {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
