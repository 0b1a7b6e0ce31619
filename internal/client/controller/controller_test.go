package controller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskgate/internal/client/models"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/taskgate/internal/client/services"
	"github.com/dmitrijs2005/taskgate/internal/common"
	"github.com/dmitrijs2005/taskgate/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

type fixture struct {
	c     *Controller
	store *kv.MemoryStore
	repo  *tasks.KVRepository
	clock *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(epoch)
	auth := services.NewAuthService(clock, 0, []byte("secret"), logging.Nop())
	repo := tasks.NewKVRepository(store, clock, logging.Nop())
	return &fixture{
		c:     New(auth, repo, store, logging.Nop()),
		store: store,
		repo:  repo,
		clock: clock,
	}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.c.Login(context.Background(), services.DemoEmail, []byte(services.DemoPassword)))
}

func (f *fixture) add(t *testing.T, title string) models.Task {
	t.Helper()
	require.NoError(t, f.c.AddTask(context.Background(), TaskDraft{Title: title}))
	f.clock.Advance(time.Millisecond)
	s := f.c.State()
	return s.Tasks[len(s.Tasks)-1]
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestNew_StartsOnLoginView(t *testing.T) {
	f := newFixture(t)
	s := f.c.State()

	assert.Equal(t, ViewLogin, s.View)
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User)
	assert.Empty(t, s.Tasks)
}

func TestShowSignupAndBack_ClearsError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.Error(t, f.c.Login(ctx, "x@example.com", []byte("nope")))
	assert.Equal(t, MsgInvalidLogin, f.c.State().Error)

	f.c.ShowSignup()
	assert.Equal(t, ViewSignup, f.c.State().View)
	assert.Empty(t, f.c.State().Error)

	f.c.ShowLogin()
	assert.Equal(t, ViewLogin, f.c.State().View)
}

func TestLogin_PersistsSessionThenAuthenticates(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	s := f.c.State()
	assert.True(t, s.Authenticated())
	require.NotNil(t, s.User)
	assert.Equal(t, services.DemoUser, *s.User)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)

	token, ok := f.stored(t, common.AuthTokenKey)
	assert.True(t, ok)
	assert.NotEmpty(t, token)

	raw, ok := f.stored(t, common.UserKey)
	require.True(t, ok)
	var u models.User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, services.DemoUser, u)
}

func TestLogin_LoadsExistingTasks(t *testing.T) {
	f := newFixture(t)
	_, err := f.repo.Create(context.Background(), models.NewTask{Title: "left over"})
	require.NoError(t, err)

	f.login(t)
	s := f.c.State()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "left over", s.Tasks[0].Title)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)

	err := f.c.Login(context.Background(), services.DemoEmail, []byte("wrong"))
	require.ErrorIs(t, err, common.ErrorInvalidCredentials)

	s := f.c.State()
	assert.False(t, s.Authenticated())
	assert.Equal(t, MsgInvalidLogin, s.Error)
	assert.False(t, s.Loading)

	_, ok := f.stored(t, common.AuthTokenKey)
	assert.False(t, ok)
	_, ok = f.stored(t, common.UserKey)
	assert.False(t, ok)
}

func TestSignup_AuthenticatesAsNewUser(t *testing.T) {
	f := newFixture(t)
	f.c.ShowSignup()

	require.NoError(t, f.c.Signup(context.Background(), "Jane Roe", "jane@example.com", []byte("pw")))

	s := f.c.State()
	assert.True(t, s.Authenticated())
	require.NotNil(t, s.User)
	assert.Equal(t, "Jane Roe", s.User.Name)
	assert.Equal(t, "jane@example.com", s.User.Email)
	assert.NotEqual(t, services.DemoUser.ID, s.User.ID)
}

// failingSetStore rejects every write.
type failingSetStore struct {
	*kv.MemoryStore
}

func (s failingSetStore) Set(context.Context, string, string) error { return errors.New("quota exceeded") }
func (s failingSetStore) SetMany(context.Context, map[string]string) error {
	return errors.New("quota exceeded")
}

func TestSignup_PersistFailureKeepsUnauthenticated(t *testing.T) {
	store := failingSetStore{kv.NewMemoryStore()}
	clock := clockwork.NewFakeClockAt(epoch)
	c := New(
		services.NewAuthService(clock, 0, []byte("secret"), logging.Nop()),
		tasks.NewKVRepository(store, clock, logging.Nop()),
		store,
		logging.Nop(),
	)

	require.Error(t, c.Signup(context.Background(), "n", "e@example.com", nil))

	s := c.State()
	assert.False(t, s.Authenticated())
	assert.Nil(t, s.User)
	assert.Equal(t, MsgSignupFailed, s.Error)
}

func TestStart_RestoresStoredSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.add(t, "persisted")

	// a fresh controller over the same store, as after a reload
	restarted := New(
		services.NewAuthService(f.clock, 0, []byte("other-secret"), logging.Nop()),
		f.repo, f.store, logging.Nop(),
	)
	require.NoError(t, restarted.Start(context.Background()))

	s := restarted.State()
	assert.True(t, s.Authenticated())
	require.NotNil(t, s.User)
	assert.Equal(t, services.DemoUser, *s.User)
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "persisted", s.Tasks[0].Title)
}

func TestStart_TrustsAnyTokenWithoutRevalidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, common.AuthTokenKey, "mock-jwt-token"))
	require.NoError(t, f.store.Set(ctx, common.UserKey, `{"id":"9","name":"Ghost","email":"g@example.com"}`))

	require.NoError(t, f.c.Start(ctx))
	assert.True(t, f.c.State().Authenticated())
	assert.Equal(t, "Ghost", f.c.State().User.Name)
}

func TestStart_NoRestorableSession(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{name: "nothing stored"},
		{name: "token only", token: "t"},
		{name: "user only", user: `{"id":"1"}`},
		{name: "unreadable user", token: "t", user: `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			if tt.token != "" {
				require.NoError(t, f.store.Set(ctx, common.AuthTokenKey, tt.token))
			}
			if tt.user != "" {
				require.NoError(t, f.store.Set(ctx, common.UserKey, tt.user))
			}

			require.NoError(t, f.c.Start(ctx))
			assert.False(t, f.c.State().Authenticated())
		})
	}
}

func TestLogout_ClearsStoreAndState(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	task := f.add(t, "to be wiped")
	require.NoError(t, f.c.BeginEdit(task.ID))

	require.NoError(t, f.c.Logout(context.Background()))

	for _, k := range []string{common.AuthTokenKey, common.UserKey, common.TasksKey} {
		_, ok := f.stored(t, k)
		assert.False(t, ok, k)
	}

	s := f.c.State()
	assert.Equal(t, State{View: ViewLogin, Tasks: []models.Task{}}, s)

	restarted := New(services.NewAuthService(f.clock, 0, []byte("secret"), logging.Nop()), f.repo, f.store, logging.Nop())
	require.NoError(t, restarted.Start(context.Background()))
	assert.False(t, restarted.State().Authenticated())
}

func TestTaskOperations_RequireSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.c.LoadTasks(ctx), common.ErrorUnauthorized)
	assert.ErrorIs(t, f.c.AddTask(ctx, TaskDraft{Title: "x"}), common.ErrorUnauthorized)
	assert.ErrorIs(t, f.c.ToggleTask(ctx, "1"), common.ErrorUnauthorized)
	assert.ErrorIs(t, f.c.DeleteTask(ctx, "1"), common.ErrorUnauthorized)
	assert.ErrorIs(t, f.c.BeginEdit("1"), common.ErrorUnauthorized)
	assert.ErrorIs(t, f.c.SaveEdit(ctx, TaskDraft{Title: "x"}), common.ErrorUnauthorized)

	all, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddTask_AppendsRepositoryResultAndClearsForm(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	require.NoError(t, f.c.AddTask(context.Background(), TaskDraft{Title: "  Buy milk ", Description: "2l"}))

	s := f.c.State()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, "Buy milk", s.Tasks[0].Title, "title as stored, not as typed")
	assert.Equal(t, "2l", s.Tasks[0].Description)
	assert.False(t, s.Tasks[0].Completed)
	assert.Equal(t, TaskDraft{}, s.TaskForm)
	assert.Equal(t, models.Stats{Pending: 1}, f.c.Stats())
}

func TestAddTask_BlankTitleKeepsDraftAndSkipsStore(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	err := f.c.AddTask(context.Background(), TaskDraft{Title: "   ", Description: "keep me"})
	require.ErrorIs(t, err, common.ErrorValidation)

	s := f.c.State()
	assert.Empty(t, s.Tasks)
	assert.Equal(t, MsgTitleRequired, s.Error)
	assert.Equal(t, "keep me", s.TaskForm.Description)

	_, ok := f.stored(t, common.TasksKey)
	assert.False(t, ok)
}

func TestToggleTask(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	b := f.add(t, "b")
	ctx := context.Background()

	require.NoError(t, f.c.ToggleTask(ctx, a.ID))
	s := f.c.State()
	assert.True(t, s.Tasks[0].Completed)
	assert.False(t, s.Tasks[1].Completed)
	assert.Equal(t, "1 pending, 1 completed", f.c.Stats().String())

	stored, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, stored[0].Completed)
	assert.Empty(t, cmp.Diff(b, stored[1]))

	require.NoError(t, f.c.ToggleTask(ctx, a.ID))
	assert.False(t, f.c.State().Tasks[0].Completed)
}

func TestToggleTask_UnknownIDTouchesNothing(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.add(t, "a")

	err := f.c.ToggleTask(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Empty(t, f.c.State().Error)
}

func TestToggleTask_StaleListIsResynced(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	b := f.add(t, "b")

	// removed behind the controller's back
	require.NoError(t, f.repo.Delete(context.Background(), a.ID))

	err := f.c.ToggleTask(context.Background(), a.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)

	s := f.c.State()
	assert.Equal(t, MsgUpdateFailed, s.Error)
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, b.ID, s.Tasks[0].ID)
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	require.NoError(t, f.c.AddTask(ctx, TaskDraft{Title: "draft", Description: "old"}))
	task := f.c.State().Tasks[0]

	require.NoError(t, f.c.BeginEdit(task.ID))
	s := f.c.State()
	assert.Equal(t, task.ID, s.EditingID)
	assert.Equal(t, TaskDraft{Title: "draft", Description: "old"}, s.EditForm)

	require.NoError(t, f.c.SaveEdit(ctx, TaskDraft{Title: "final", Description: "new"}))
	s = f.c.State()
	assert.Empty(t, s.EditingID)
	assert.Equal(t, "final", s.Tasks[0].Title)
	assert.Equal(t, "new", s.Tasks[0].Description)
	assert.True(t, task.CreatedAt.Equal(s.Tasks[0].CreatedAt))

	stored, err := f.repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(s.Tasks, stored))
}

func TestEdit_OnlyOneTaskAtATime(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	b := f.add(t, "b")

	require.NoError(t, f.c.BeginEdit(a.ID))
	require.NoError(t, f.c.BeginEdit(b.ID))
	assert.Equal(t, b.ID, f.c.State().EditingID)

	f.c.CancelEdit()
	s := f.c.State()
	assert.Empty(t, s.EditingID)
	assert.Equal(t, TaskDraft{}, s.EditForm)
}

func TestEdit_OtherOperationsKeepEditMode(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	b := f.add(t, "b")
	ctx := context.Background()

	require.NoError(t, f.c.BeginEdit(a.ID))
	require.NoError(t, f.c.ToggleTask(ctx, b.ID))
	require.NoError(t, f.c.AddTask(ctx, TaskDraft{Title: "c"}))
	assert.Equal(t, a.ID, f.c.State().EditingID)

	require.NoError(t, f.c.DeleteTask(ctx, a.ID))
	assert.Empty(t, f.c.State().EditingID, "deleting the edited task leaves edit mode")
}

func TestSaveEdit_Errors(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	ctx := context.Background()

	require.ErrorIs(t, f.c.SaveEdit(ctx, TaskDraft{Title: "x"}), common.ErrorNotFound, "not editing")

	require.NoError(t, f.c.BeginEdit(a.ID))
	require.ErrorIs(t, f.c.SaveEdit(ctx, TaskDraft{Title: " "}), common.ErrorValidation)
	s := f.c.State()
	assert.Equal(t, a.ID, s.EditingID, "still editing after a rejected save")
	assert.Equal(t, "a", s.Tasks[0].Title)
	assert.Equal(t, MsgTitleRequired, s.Error)
}

func TestBeginEdit_UnknownID(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.ErrorIs(t, f.c.BeginEdit("missing"), common.ErrorNotFound)
}

func TestDeleteTask(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	b := f.add(t, "b")
	ctx := context.Background()

	require.NoError(t, f.c.DeleteTask(ctx, a.ID))
	s := f.c.State()
	require.Len(t, s.Tasks, 1)
	assert.Equal(t, b.ID, s.Tasks[0].ID)

	require.NoError(t, f.c.DeleteTask(ctx, "missing"), "deleting an unknown id is not an error")
	assert.Len(t, f.c.State().Tasks, 1)
}

// brokenRepo fails every call.
type brokenRepo struct{ err error }

func (r brokenRepo) List(context.Context) ([]models.Task, error) { return nil, r.err }
func (r brokenRepo) Create(context.Context, models.NewTask) (models.Task, error) {
	return models.Task{}, r.err
}
func (r brokenRepo) Update(context.Context, string, models.TaskPatch) (models.Task, error) {
	return models.Task{}, r.err
}
func (r brokenRepo) Delete(context.Context, string) error { return r.err }

func TestRepositoryFailures_KeepRenderedList(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	ctx := context.Background()
	before := f.c.State().Tasks

	boom := errors.New("storage offline")
	f.c.tasks = brokenRepo{err: boom}

	tests := []struct {
		name string
		op   func() error
		msg  string
	}{
		{name: "add", op: func() error { return f.c.AddTask(ctx, TaskDraft{Title: "b"}) }, msg: MsgAddFailed},
		{name: "toggle", op: func() error { return f.c.ToggleTask(ctx, a.ID) }, msg: MsgUpdateFailed},
		{name: "delete", op: func() error { return f.c.DeleteTask(ctx, a.ID) }, msg: MsgDeleteFailed},
		{name: "load", op: func() error { return f.c.LoadTasks(ctx) }, msg: MsgLoadFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.op(), boom)
			s := f.c.State()
			assert.Equal(t, tt.msg, s.Error)
			assert.Equal(t, before, s.Tasks)
			assert.False(t, s.Loading)
		})
	}
}

// removeFailStore refuses removals.
type removeFailStore struct {
	*kv.MemoryStore
}

func (s removeFailStore) Remove(context.Context, string) error { return errors.New("read-only") }

func TestLogout_StoreFailureKeepsSession(t *testing.T) {
	store := removeFailStore{kv.NewMemoryStore()}
	clock := clockwork.NewFakeClockAt(epoch)
	c := New(
		services.NewAuthService(clock, 0, []byte("secret"), logging.Nop()),
		tasks.NewKVRepository(store, clock, logging.Nop()),
		store,
		logging.Nop(),
	)
	require.NoError(t, c.Login(context.Background(), services.DemoEmail, []byte(services.DemoPassword)))

	require.Error(t, c.Logout(context.Background()))
	s := c.State()
	assert.True(t, s.Authenticated())
	assert.Equal(t, MsgLogoutFailed, s.Error)
}

// blockingAuth holds Login until released.
type blockingAuth struct {
	services.AuthService
	release chan struct{}
}

func (b blockingAuth) Login(ctx context.Context, email string, password []byte) (models.User, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
		return models.User{}, ctx.Err()
	}
	return b.AuthService.Login(ctx, email, password)
}

func TestLogin_LoadingWhilePending(t *testing.T) {
	store := kv.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(epoch)
	auth := blockingAuth{
		AuthService: services.NewAuthService(clock, 0, []byte("secret"), logging.Nop()),
		release:     make(chan struct{}),
	}
	c := New(auth, tasks.NewKVRepository(store, clock, logging.Nop()), store, logging.Nop())

	errCh := make(chan error, 1)
	go func() {
		errCh <- c.Login(context.Background(), services.DemoEmail, []byte(services.DemoPassword))
	}()

	require.Eventually(t, func() bool { return c.State().Loading }, time.Second, time.Millisecond)
	assert.False(t, c.State().Authenticated(), "not authenticated while pending")

	close(auth.release)
	require.NoError(t, <-errCh)

	s := c.State()
	assert.False(t, s.Loading)
	assert.True(t, s.Authenticated())
}

func TestState_ReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.add(t, "a")

	s := f.c.State()
	s.Tasks[0].Title = "mutated"
	s.User.Name = "mutated"

	fresh := f.c.State()
	assert.Equal(t, "a", fresh.Tasks[0].Title)
	assert.Equal(t, services.DemoUser.Name, fresh.User.Name)
}

func TestNextOperation_ClearsPreviousError(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	a := f.add(t, "a")
	ctx := context.Background()

	require.Error(t, f.c.AddTask(ctx, TaskDraft{Title: ""}))
	require.Equal(t, MsgTitleRequired, f.c.State().Error)

	require.ErrorIs(t, f.c.BeginEdit("missing"), common.ErrorNotFound)
	assert.Empty(t, f.c.State().Error)

	require.Error(t, f.c.AddTask(ctx, TaskDraft{Title: " "}))
	require.NoError(t, f.c.BeginEdit(a.ID))
	assert.Empty(t, f.c.State().Error)
}
