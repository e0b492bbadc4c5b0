package migration

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/instantbranding/brandkit/internal/client/api"
	"github.com/instantbranding/brandkit/internal/client/drafts"
	"github.com/instantbranding/brandkit/internal/client/localdb"
	"github.com/instantbranding/brandkit/internal/client/models"
	"github.com/instantbranding/brandkit/internal/client/repositories/metadata"
	"github.com/instantbranding/brandkit/internal/client/session"
	"github.com/instantbranding/brandkit/internal/common"
	"github.com/instantbranding/brandkit/internal/logging"
	"github.com/instantbranding/brandkit/internal/server/auth"
	"github.com/instantbranding/brandkit/internal/server/httpapi"
	srvmodels "github.com/instantbranding/brandkit/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "6f1c2a9e-3d4b-4c5a-8e7f-0a1b2c3d4e5f"

var jwtSecret = []byte("test-secret")

type fixture struct {
	drafts   *drafts.Store
	sessions *session.Store
	notify   *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := localdb.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := metadata.NewSQLiteRepository(db)
	return &fixture{
		drafts:   drafts.NewStore(repo, logging.Discard()),
		sessions: session.NewStore(repo, logging.Discard()),
		notify:   &recordingNotifier{},
	}
}

func (f *fixture) workflow(imp ImporterFactory) *Workflow {
	return NewWorkflow(f.sessions, f.drafts, imp, f.notify, logging.Discard())
}

type recordingNotifier struct {
	mu        sync.Mutex
	succeeded []*api.ImportResult
	failed    []error
}

func (n *recordingNotifier) MigrationSucceeded(_ context.Context, res *api.ImportResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, res)
}

func (n *recordingNotifier) MigrationFailed(_ context.Context, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, err)
}

type importFunc func(ctx context.Context, d *models.Draft) (*api.ImportResult, error)

func (f importFunc) ImportDraft(ctx context.Context, d *models.Draft) (*api.ImportResult, error) {
	return f(ctx, d)
}

func staticImporter(fn importFunc) ImporterFactory {
	return func(string) Importer { return fn }
}

// accountServer is an in-memory stand-in for the account side of the API:
// it ensures users, imports drafts as brands and lists them.
type accountServer struct {
	mu     sync.Mutex
	brands map[string][]*srvmodels.Brand
}

func (s *accountServer) Ensure(_ context.Context, id, email string) (*srvmodels.User, error) {
	return &srvmodels.User{ID: id, Email: email, Plan: srvmodels.PlanFree}, nil
}

func (s *accountServer) Me(_ context.Context, id string) (*srvmodels.User, error) {
	return &srvmodels.User{ID: id}, nil
}

func (s *accountServer) CompleteOnboarding(_ context.Context, id string) (*srvmodels.User, error) {
	return &srvmodels.User{ID: id, OnboardingStatus: srvmodels.OnboardingComplete}, nil
}

func (s *accountServer) Import(_ context.Context, uid string, d *srvmodels.DraftImport) (*srvmodels.DraftImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, _ := d.Brand["name"].(string)
	b := &srvmodels.Brand{ID: "brand-1", UserID: uid, Name: name}
	s.brands[uid] = append(s.brands[uid], b)
	return &srvmodels.DraftImportResult{Brand: b, Action: srvmodels.ActionCreated}, nil
}

func (s *accountServer) List(_ context.Context, uid string) ([]*srvmodels.Brand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.brands[uid], nil
}

func (s *accountServer) Get(context.Context, string, string) (*srvmodels.Brand, error) {
	return nil, common.ErrNotFound
}

func (s *accountServer) Upsert(context.Context, string, map[string]any) (*srvmodels.Brand, srvmodels.UpsertAction, error) {
	return nil, "", common.ErrInternal
}

func (s *accountServer) Update(context.Context, string, string, map[string]any) (*srvmodels.Brand, error) {
	return nil, common.ErrInternal
}

func (s *accountServer) Delete(context.Context, string, string) error {
	return common.ErrInternal
}

func newAPI(t *testing.T) (*api.Client, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	acct := &accountServer{brands: map[string][]*srvmodels.Brand{}}
	router := httpapi.NewRouter(httpapi.Config{JWTSecret: jwtSecret}, httpapi.Services{
		Users:  acct,
		Brands: acct,
		Drafts: acct,
	}, logging.Discard())

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	token, err := auth.GenerateToken(userID, "visitor@example.com", jwtSecret, time.Hour)
	require.NoError(t, err)
	return api.NewClient(ts.URL, 5*time.Second), token
}

func TestAcmeDraftIsMigratedOnSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, token := newAPI(t)

	_, err := f.drafts.SaveBrand(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	w := f.workflow(func(tok string) Importer { return client.WithToken(tok) })

	parked, err := w.PrepareSignIn(ctx)
	require.NoError(t, err)
	require.True(t, parked)

	assert.Equal(t, StateComplete, w.OnAuthenticated(ctx, token))
	assert.NoError(t, w.Err())

	brands, err := client.WithToken(token).ListBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "Acme", brands[0]["name"])

	assert.Nil(t, f.drafts.Read(ctx))
	assert.Nil(t, f.sessions.Marker(ctx))

	require.Len(t, f.notify.succeeded, 1)
	assert.Equal(t, "Acme", f.notify.succeeded[0].Brand["name"])
}

func TestNumericBrandNameSurvivesMigration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client, token := newAPI(t)

	delta, err := models.ParseAssignments([]string{"name=2024"})
	require.NoError(t, err)
	_, err = f.drafts.SaveBrand(ctx, delta)
	require.NoError(t, err)

	w := f.workflow(func(tok string) Importer { return client.WithToken(tok) })
	_, err = w.PrepareSignIn(ctx)
	require.NoError(t, err)

	require.Equal(t, StateComplete, w.OnAuthenticated(ctx, token))
	brands, err := client.WithToken(token).ListBrands(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)
	assert.Equal(t, "2024", brands[0]["name"])
}

func TestNoMarker_StaysIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.drafts.SaveBrand(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	called := false
	w := f.workflow(staticImporter(func(context.Context, *models.Draft) (*api.ImportResult, error) {
		called = true
		return &api.ImportResult{}, nil
	}))

	assert.Equal(t, StateIdle, w.OnAuthenticated(ctx, "tok"))
	assert.False(t, called)
	assert.NotNil(t, f.drafts.Read(ctx))
	assert.Empty(t, f.notify.succeeded)
	assert.Empty(t, f.notify.failed)
}

func TestPrepareSignIn_NoDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parked, err := f.workflow(nil).PrepareSignIn(ctx)
	require.NoError(t, err)
	assert.False(t, parked)
	assert.Nil(t, f.sessions.Marker(ctx))
}

func TestFailure_ClearsDraftAndMarker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.drafts.SaveBrand(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	boom := errors.New("server exploded")
	w := f.workflow(staticImporter(func(context.Context, *models.Draft) (*api.ImportResult, error) {
		return nil, boom
	}))
	_, err = w.PrepareSignIn(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateFailed, w.OnAuthenticated(ctx, "tok"))
	assert.ErrorIs(t, w.Err(), boom)

	assert.Nil(t, f.drafts.Read(ctx))
	assert.Nil(t, f.sessions.Marker(ctx))
	require.Len(t, f.notify.failed, 1)
	assert.ErrorIs(t, f.notify.failed[0], boom)
	assert.Empty(t, f.notify.succeeded)

	assert.Equal(t, StateFailed, w.OnAuthenticated(ctx, "tok"))
	assert.Len(t, f.notify.failed, 1)
}

func TestRehydratesMarkerDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := models.NewDraft()
	d.Designs = append(d.Designs, models.DraftDesign{TempID: "draft-1-1", AssetType: "social-post"})
	require.NoError(t, f.sessions.SetMarker(ctx, d))

	var got *models.Draft
	var localDuringImport *models.Draft
	w := f.workflow(staticImporter(func(ctx context.Context, d *models.Draft) (*api.ImportResult, error) {
		got = d
		localDuringImport = f.drafts.Read(ctx)
		return &api.ImportResult{Action: "created"}, nil
	}))

	assert.Equal(t, StateComplete, w.OnAuthenticated(ctx, "tok"))
	require.NotNil(t, got)
	require.Len(t, got.Designs, 1)
	require.NotNil(t, localDuringImport)
	assert.Len(t, localDuringImport.Designs, 1)

	// designs only: nothing to announce
	assert.Empty(t, f.notify.succeeded)
	assert.Nil(t, f.drafts.Read(ctx))
}

func TestEmptyMarker_IsDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.sessions.SetMarker(ctx, models.NewDraft()))

	w := f.workflow(staticImporter(func(context.Context, *models.Draft) (*api.ImportResult, error) {
		t.Fatal("importer must not be called")
		return nil, nil
	}))

	assert.Equal(t, StateIdle, w.OnAuthenticated(ctx, "tok"))
	assert.Nil(t, f.sessions.Marker(ctx))
}

func TestRunsOncePerSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.drafts.SaveBrand(ctx, map[string]any{"name": "Acme"})
	require.NoError(t, err)

	release := make(chan struct{})
	started := make(chan struct{})
	var calls int
	var mu sync.Mutex
	w := f.workflow(staticImporter(func(context.Context, *models.Draft) (*api.ImportResult, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(started)
		<-release
		return &api.ImportResult{Action: "created"}, nil
	}))
	_, err = w.PrepareSignIn(ctx)
	require.NoError(t, err)

	first := make(chan State, 1)
	go func() { first <- w.OnAuthenticated(ctx, "tok") }()

	<-started
	assert.Equal(t, StateMigrating, w.OnAuthenticated(ctx, "tok"))
	close(release)

	assert.Equal(t, StateComplete, <-first)
	assert.Equal(t, StateComplete, w.OnAuthenticated(ctx, "tok"))

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestReset_AllowsNextSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var calls int
	w := f.workflow(staticImporter(func(context.Context, *models.Draft) (*api.ImportResult, error) {
		calls++
		return &api.ImportResult{Action: "created"}, nil
	}))

	assert.Equal(t, StateIdle, w.OnAuthenticated(ctx, "tok"))

	_, err := f.drafts.SaveBrand(ctx, map[string]any{"name": "Second"})
	require.NoError(t, err)
	_, err = w.PrepareSignIn(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateIdle, w.OnAuthenticated(ctx, "tok"))
	assert.Equal(t, 0, calls)

	w.Reset()
	assert.Equal(t, StateIdle, w.State())
	assert.Equal(t, StateComplete, w.OnAuthenticated(ctx, "tok"))
	assert.Equal(t, 1, calls)
}
