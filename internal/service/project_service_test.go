package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/middleware"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
	"github.com/mmynk/triplan/pkg/api"
)

func boolPtr(b bool) *bool { return &b }

func createProject(t *testing.T, c clients, req *api.CreateProjectRequest) *api.Project {
	t.Helper()
	resp, err := c.projects.CreateProject(context.Background(), connect.NewRequest(req))
	require.NoError(t, err)
	return resp.Msg.Project
}

func TestCreateProject(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	p := createProject(t, env.as(alice), &api.CreateProjectRequest{
		Title:              "Lisbon",
		Destination:        "Portugal",
		StartDate:          "2024-03-01",
		EndDate:            "2024-03-05",
		CollaboratorEmails: []string{"Bob@Example.com ", "alice@example.com", "bob@example.com"},
	})

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, alice.ID, p.OwnerID)
	assert.Equal(t, "Planning", p.Status)
	assert.True(t, p.Private, "projects are private unless asked otherwise")
	assert.Equal(t, "2024-03-01", p.StartDate)
	assert.Equal(t, []api.UserRef{{ID: bob.ID, Email: bob.Email}}, p.Collaborators)

	events := env.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, feed.Event{Resource: feed.ResourceProjects, Action: feed.ActionCreated, ProjectID: p.ID, ID: p.ID}, events[0])
}

func TestCreateProject_Validation(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	c := env.as(alice)

	tests := []struct {
		name string
		req  *api.CreateProjectRequest
	}{
		{"missing title", &api.CreateProjectRequest{Destination: "Portugal"}},
		{"missing destination", &api.CreateProjectRequest{Title: "Lisbon"}},
		{"bad date", &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal", StartDate: "01/03/2024"}},
		{"end before start", &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal", StartDate: "2024-03-05", EndDate: "2024-03-01"}},
		{"unknown collaborator", &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal", CollaboratorEmails: []string{"ghost@example.com"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.projects.CreateProject(context.Background(), connect.NewRequest(tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestCreateProject_Unauthenticated(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	anon := env.as(models.UserRef{})

	_, err := anon.projects.CreateProject(context.Background(), connect.NewRequest(&api.CreateProjectRequest{
		Title: "Lisbon", Destination: "Portugal",
	}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestListProjects(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	carol := env.user(t, "carol@example.com")

	owned := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal"})
	shared := createProject(t, env.as(bob), &api.CreateProjectRequest{
		Title: "Rome", Destination: "Italy", CollaboratorEmails: []string{alice.Email},
	})
	public := createProject(t, env.as(carol), &api.CreateProjectRequest{
		Title: "Oslo", Destination: "Norway", Private: boolPtr(false),
	})
	createProject(t, env.as(carol), &api.CreateProjectRequest{Title: "Secret", Destination: "Nowhere"})

	resp, err := env.as(alice).projects.ListProjects(context.Background(), connect.NewRequest(&api.ListProjectsRequest{}))
	require.NoError(t, err)

	ids := func(ps []*api.Project) []string {
		out := make([]string, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}
	assert.Equal(t, []string{owned.ID}, ids(resp.Msg.Owned))
	assert.Equal(t, []string{shared.ID}, ids(resp.Msg.Collaborating))
	assert.Equal(t, []string{public.ID}, ids(resp.Msg.Public))
}

func TestGetProject_Access(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")

	private := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal"})
	public := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Oslo", Destination: "Norway", Private: boolPtr(false)})

	_, err := env.as(bob).projects.GetProject(context.Background(), connect.NewRequest(&api.GetProjectRequest{ProjectID: private.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	resp, err := env.as(bob).projects.GetProject(context.Background(), connect.NewRequest(&api.GetProjectRequest{ProjectID: public.ID}))
	require.NoError(t, err)
	assert.Equal(t, "Oslo", resp.Msg.Project.Title)

	_, err = env.as(bob).projects.GetProject(context.Background(), connect.NewRequest(&api.GetProjectRequest{ProjectID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestUpdateProject(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := createProject(t, env.as(alice), &api.CreateProjectRequest{
		Title: "Lisbon", Destination: "Portugal", CollaboratorEmails: []string{bob.Email},
	})

	update := &api.UpdateProjectRequest{
		ProjectID:   p.ID,
		Title:       "Lisbon & Porto",
		Destination: "Portugal",
		EndDate:     "2024-03-09",
		Status:      "Completed",
	}

	t.Run("collaborator cannot edit", func(t *testing.T) {
		_, err := env.as(bob).projects.UpdateProject(context.Background(), connect.NewRequest(update))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("owner edits", func(t *testing.T) {
		resp, err := env.as(alice).projects.UpdateProject(context.Background(), connect.NewRequest(update))
		require.NoError(t, err)
		assert.Equal(t, "Lisbon & Porto", resp.Msg.Project.Title)
		assert.Equal(t, "Completed", resp.Msg.Project.Status)
		assert.Equal(t, "2024-03-09", resp.Msg.Project.EndDate)
		assert.Empty(t, resp.Msg.Project.Collaborators, "collaborator list is replaced")
	})

	t.Run("omitted private keeps project private", func(t *testing.T) {
		mallory := env.user(t, "mallory@example.com")
		resp, err := env.as(alice).projects.UpdateProject(context.Background(), connect.NewRequest(&api.UpdateProjectRequest{
			ProjectID: p.ID, Title: "Lisbon", Destination: "Portugal",
		}))
		require.NoError(t, err)
		assert.True(t, resp.Msg.Project.Private)

		_, err = env.as(mallory).projects.GetProject(context.Background(), connect.NewRequest(&api.GetProjectRequest{ProjectID: p.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("explicit private false publishes", func(t *testing.T) {
		resp, err := env.as(alice).projects.UpdateProject(context.Background(), connect.NewRequest(&api.UpdateProjectRequest{
			ProjectID: p.ID, Title: "Lisbon", Destination: "Portugal", Private: boolPtr(false),
		}))
		require.NoError(t, err)
		assert.False(t, resp.Msg.Project.Private)
	})

	t.Run("invalid status", func(t *testing.T) {
		bad := *update
		bad.Status = "Archived"
		_, err := env.as(alice).projects.UpdateProject(context.Background(), connect.NewRequest(&bad))
		requireCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestDeleteProject(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := createProject(t, env.as(alice), &api.CreateProjectRequest{
		Title: "Lisbon", Destination: "Portugal", CollaboratorEmails: []string{bob.Email},
	})

	_, err := env.as(bob).projects.DeleteProject(context.Background(), connect.NewRequest(&api.DeleteProjectRequest{ProjectID: p.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.as(alice).projects.DeleteProject(context.Background(), connect.NewRequest(&api.DeleteProjectRequest{ProjectID: p.ID}))
	require.NoError(t, err)

	_, err = env.as(alice).projects.GetProject(context.Background(), connect.NewRequest(&api.GetProjectRequest{ProjectID: p.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestJoinProject(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	p := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal"})

	for i := 0; i < 2; i++ {
		resp, err := env.as(bob).projects.JoinProject(context.Background(), connect.NewRequest(&api.JoinProjectRequest{ProjectID: p.ID}))
		require.NoError(t, err)
		assert.Equal(t, []api.UserRef{{ID: bob.ID, Email: bob.Email}}, resp.Msg.Project.Collaborators)
	}

	// The owner joining is a no-op.
	resp, err := env.as(alice).projects.JoinProject(context.Background(), connect.NewRequest(&api.JoinProjectRequest{ProjectID: p.ID}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Project.Collaborators, 1)

	_, err = env.as(bob).projects.JoinProject(context.Background(), connect.NewRequest(&api.JoinProjectRequest{ProjectID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestCloneProject(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	carol := env.user(t, "carol@example.com")

	src := createProject(t, env.as(alice), &api.CreateProjectRequest{
		Title: "Oslo", Destination: "Norway", StartDate: "2024-06-01", EndDate: "2024-06-04",
		Private: boolPtr(false), CollaboratorEmails: []string{bob.Email},
	})
	item := createItem(t, env.as(alice), src.ID, "Fjord cruise", "2024-06-02T10:00:00Z")
	_, err := env.as(bob).itinerary.ToggleVote(context.Background(), connect.NewRequest(&api.ToggleVoteRequest{ItemID: item.ID}))
	require.NoError(t, err)
	_, err = env.as(alice).itinerary.ChangeStatus(context.Background(), connect.NewRequest(&api.ChangeStatusRequest{ItemID: item.ID, Status: "Confirmed"}))
	require.NoError(t, err)

	t.Run("owner cannot clone", func(t *testing.T) {
		_, err := env.as(alice).projects.CloneProject(context.Background(), connect.NewRequest(&api.CloneProjectRequest{ProjectID: src.ID}))
		requireCode(t, err, connect.CodeFailedPrecondition)
	})

	resp, err := env.as(carol).projects.CloneProject(context.Background(), connect.NewRequest(&api.CloneProjectRequest{ProjectID: src.ID}))
	require.NoError(t, err)

	clone := resp.Msg.Project
	assert.NotEqual(t, src.ID, clone.ID)
	assert.Equal(t, "Oslo - Copy", clone.Title)
	assert.Equal(t, carol.ID, clone.OwnerID)
	assert.True(t, clone.Private)
	assert.Equal(t, "Planning", clone.Status)
	assert.Empty(t, clone.Collaborators)
	assert.Equal(t, "2024-06-01", clone.StartDate)
	assert.Equal(t, 1, resp.Msg.ItemsCopied)

	items, err := env.as(carol).itinerary.ListItems(context.Background(), connect.NewRequest(&api.ListItemsRequest{ProjectID: clone.ID}))
	require.NoError(t, err)
	require.Len(t, items.Msg.Items, 1)
	copied := items.Msg.Items[0]
	assert.Equal(t, "Fjord cruise", copied.Title)
	assert.Equal(t, "Voting", copied.Status)
	assert.Empty(t, copied.Votes)
	assert.Empty(t, copied.Notes)
	assert.Equal(t, carol.ID, copied.AddedBy.ID)
	assert.Equal(t, "2024-06-02T10:00:00Z", copied.Date)
}

// dupItemStore gives every cloned item the same ID so the copy fails
// partway through.
type dupItemStore struct {
	storage.Store
}

func (d *dupItemStore) CloneProject(ctx context.Context, project *models.Project, items []models.ItineraryItem) error {
	for i := range items {
		items[i].ID = "dup"
	}
	return d.Store.CloneProject(ctx, project, items)
}

func TestCloneProject_FailureLeavesNothing(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	carol := env.user(t, "carol@example.com")

	src := createProject(t, env.as(alice), &api.CreateProjectRequest{
		Title: "Oslo", Destination: "Norway", Private: boolPtr(false),
	})
	for _, title := range []string{"Fjord cruise", "Vigeland park", "Opera house"} {
		createItem(t, env.as(alice), src.ID, title, "2024-06-02")
	}

	svc := NewProjectService(&dupItemStore{Store: env.store}, feed.NewHub(), env.media)
	ctx := middleware.WithUser(context.Background(), carol)
	_, err := svc.CloneProject(ctx, connect.NewRequest(&api.CloneProjectRequest{ProjectID: src.ID}))
	requireCode(t, err, connect.CodeInternal)

	projects, err := env.store.ListProjects(context.Background())
	require.NoError(t, err)
	for _, p := range projects {
		assert.NotEqual(t, carol.ID, p.OwnerID, "failed clone left %q behind", p.Title)
	}

	resp, err := env.as(carol).projects.CloneProject(context.Background(), connect.NewRequest(&api.CloneProjectRequest{ProjectID: src.ID}))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Msg.ItemsCopied)
}

func TestCloneProject_PrivateSource(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	bob := env.user(t, "bob@example.com")
	src := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal"})

	_, err := env.as(bob).projects.CloneProject(context.Background(), connect.NewRequest(&api.CloneProjectRequest{ProjectID: src.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestUploadCoverImage(t *testing.T) {
	env := setupTestServer(t, ExpenseOptions{})
	alice := env.user(t, "alice@example.com")
	p := createProject(t, env.as(alice), &api.CreateProjectRequest{Title: "Lisbon", Destination: "Portugal"})

	resp, err := env.as(alice).projects.UploadCoverImage(context.Background(), connect.NewRequest(&api.UploadCoverImageRequest{
		ProjectID: p.ID,
		Filename:  "my cover (1).jpg",
		Data:      []byte("jpeg"),
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://media.test/covers/"+p.ID+"/my_cover__1_.jpg", resp.Msg.Project.ImageLink)

	_, err = env.as(alice).projects.UploadCoverImage(context.Background(), connect.NewRequest(&api.UploadCoverImageRequest{ProjectID: p.ID}))
	requireCode(t, err, connect.CodeInvalidArgument)
}
