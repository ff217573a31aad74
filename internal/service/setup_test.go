package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/triplan/internal/feed"
	"github.com/mmynk/triplan/internal/middleware"
	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/objectstore"
	"github.com/mmynk/triplan/internal/storage/sqlite"
	"github.com/mmynk/triplan/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testAuthInterceptor trusts the caller named in X-Test-User ("id|email").
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id, email, ok := strings.Cut(req.Header().Get(testUserHeader), "|"); ok {
				ctx = middleware.WithUser(ctx, models.UserRef{ID: id, Email: email})
			}
			return next(ctx, req)
		}
	}
}

// actingAs stamps every outgoing request with user.
func actingAs(user models.UserRef) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user.ID != "" {
				req.Header().Set(testUserHeader, user.ID+"|"+user.Email)
			}
			return next(ctx, req)
		}
	}
}

// recorder keeps every event published through the hub.
type recorder struct {
	mu     sync.Mutex
	events []feed.Event
}

func (r *recorder) add(ev feed.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) all() []feed.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]feed.Event(nil), r.events...)
}

type testEnv struct {
	store    *sqlite.SQLiteStore
	media    *objectstore.Local
	mediaDir string
	events   *recorder
	server   *httptest.Server

	projects  *ProjectService
	itinerary *ItineraryService
	expenses  *ExpenseService
}

// clients are Connect clients calling as one user.
type clients struct {
	projects  apiconnect.ProjectServiceClient
	itinerary apiconnect.ItineraryServiceClient
	expenses  apiconnect.ExpenseServiceClient
	chat      apiconnect.ChatServiceClient
	photos    apiconnect.PhotoServiceClient
}

// setupTestServer serves every project-scoped service over httptest against
// a temp SQLite database.
func setupTestServer(t *testing.T, opts ExpenseOptions) *testEnv {
	t.Helper()

	dir := t.TempDir()
	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	mediaDir := filepath.Join(dir, "media")
	media, err := objectstore.NewLocal(mediaDir, "http://media.test")
	require.NoError(t, err)
	if opts.Media == nil {
		opts.Media = media
	}

	hub := feed.NewHub()
	rec := &recorder{}
	hub.Subscribe(feed.AllResources, rec.add)

	env := &testEnv{
		store:     store,
		media:     media,
		mediaDir:  mediaDir,
		events:    rec,
		projects:  NewProjectService(store, hub, media),
		itinerary: NewItineraryService(store, hub),
		expenses:  NewExpenseService(store, hub, opts),
	}

	interceptors := connect.WithInterceptors(testAuthInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewProjectServiceHandler(env.projects, interceptors))
	mux.Handle(apiconnect.NewItineraryServiceHandler(env.itinerary, interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(env.expenses, interceptors))
	mux.Handle(apiconnect.NewChatServiceHandler(NewChatService(store, hub), interceptors))
	mux.Handle(apiconnect.NewPhotoServiceHandler(NewPhotoService(store, media), interceptors))
	env.server = httptest.NewServer(mux)

	t.Cleanup(func() {
		env.server.Close()
		store.Close()
	})
	return env
}

// user registers an account directly in the store.
func (e *testEnv) user(t *testing.T, email string) models.UserRef {
	t.Helper()
	u := models.NewUser(email, "", "not-a-real-hash")
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u.Ref()
}

func (e *testEnv) as(user models.UserRef) clients {
	opt := connect.WithInterceptors(actingAs(user))
	return clients{
		projects:  apiconnect.NewProjectServiceClient(http.DefaultClient, e.server.URL, opt),
		itinerary: apiconnect.NewItineraryServiceClient(http.DefaultClient, e.server.URL, opt),
		expenses:  apiconnect.NewExpenseServiceClient(http.DefaultClient, e.server.URL, opt),
		chat:      apiconnect.NewChatServiceClient(http.DefaultClient, e.server.URL, opt),
		photos:    apiconnect.NewPhotoServiceClient(http.DefaultClient, e.server.URL, opt),
	}
}

// requireCode fails unless err is a Connect error with code.
func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect error, got %T: %v", err, err)
	require.Equal(t, code, connectErr.Code(), "unexpected code: %v", err)
}
