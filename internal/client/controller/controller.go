package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/taskgate/internal/async"
	"github.com/dmitrijs2005/taskgate/internal/client/models"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/tasks"
	"github.com/dmitrijs2005/taskgate/internal/client/services"
	"github.com/dmitrijs2005/taskgate/internal/common"
	"github.com/dmitrijs2005/taskgate/internal/logging"
)

type View string

const (
	ViewLogin  View = "login"
	ViewSignup View = "signup"
	ViewTasks  View = "tasks"
)

// Messages shown to the user when an operation fails.
const (
	MsgInvalidLogin  = "Invalid email or password"
	MsgSignupFailed  = "Signup failed. Please try again."
	MsgLoadFailed    = "Failed to load tasks"
	MsgAddFailed     = "Failed to add task"
	MsgUpdateFailed  = "Failed to update task"
	MsgDeleteFailed  = "Failed to delete task"
	MsgLogoutFailed  = "Failed to log out"
	MsgTitleRequired = "Task title is required"
)

// TaskDraft is the content of the add or edit form.
type TaskDraft struct {
	Title       string
	Description string
}

// State is a snapshot of the controller's transient state.
type State struct {
	View      View
	User      *models.User
	Tasks     []models.Task
	EditingID string
	EditForm  TaskDraft
	TaskForm  TaskDraft
	Loading   bool
	Error     string
}

// Authenticated reports whether a session is active.
func (s State) Authenticated() bool {
	return s.View == ViewTasks
}

type Controller struct {
	auth  services.AuthService
	tasks tasks.Repository
	store kv.Store
	log   logging.Logger

	mu    sync.Mutex
	state State
}

func New(auth services.AuthService, repo tasks.Repository, store kv.Store, log logging.Logger) *Controller {
	return &Controller{
		auth:  auth,
		tasks: repo,
		store: store,
		log:   log.With("component", "controller"),
		state: State{View: ViewLogin, Tasks: []models.Task{}},
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Tasks = make([]models.Task, len(c.state.Tasks))
	copy(s.Tasks, c.state.Tasks)
	if c.state.User != nil {
		u := *c.state.User
		s.User = &u
	}
	return s
}

// Stats counts pending and completed tasks in the current list.
func (c *Controller) Stats() models.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CountTasks(c.state.Tasks)
}

// Start restores a stored session. When both a token and a readable user are
// present the controller becomes Authenticated and loads tasks; the token is
// trusted as is.
func (c *Controller) Start(ctx context.Context) error {
	token, hasToken, err := c.store.Get(ctx, common.AuthTokenKey)
	if err != nil {
		return fmt.Errorf("read session token: %w", err)
	}
	raw, hasUser, err := c.store.Get(ctx, common.UserKey)
	if err != nil {
		return fmt.Errorf("read session user: %w", err)
	}
	if !hasToken || token == "" || !hasUser {
		return nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.Warn(ctx, "stored user is unreadable, session not restored", "err", err)
		return nil
	}

	c.mu.Lock()
	c.state.User = &user
	c.state.View = ViewTasks
	c.mu.Unlock()

	c.log.Info(ctx, "session restored", "user_id", user.ID)
	return c.LoadTasks(ctx)
}

// ShowLogin switches the unauthenticated view to the login form.
func (c *Controller) ShowLogin() {
	c.switchView(ViewLogin)
}

// ShowSignup switches the unauthenticated view to the signup form.
func (c *Controller) ShowSignup() {
	c.switchView(ViewSignup)
}

func (c *Controller) switchView(v View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.View == ViewTasks {
		return
	}
	c.state.View = v
	c.state.Error = ""
}

func (c *Controller) Login(ctx context.Context, email string, password []byte) error {
	user, err := run(ctx, c, func(ctx context.Context) (models.User, error) {
		return c.auth.Login(ctx, email, password)
	})
	if err != nil {
		c.fail(ctx, MsgInvalidLogin, err)
		return err
	}
	if err := c.establish(ctx, user); err != nil {
		c.fail(ctx, MsgInvalidLogin, err)
		return err
	}
	return c.LoadTasks(ctx)
}

func (c *Controller) Signup(ctx context.Context, name, email string, password []byte) error {
	user, err := run(ctx, c, func(ctx context.Context) (models.User, error) {
		return c.auth.Signup(ctx, name, email, password)
	})
	if err != nil {
		c.fail(ctx, MsgSignupFailed, err)
		return err
	}
	if err := c.establish(ctx, user); err != nil {
		c.fail(ctx, MsgSignupFailed, err)
		return err
	}
	return c.LoadTasks(ctx)
}

// establish persists the session and only then flips to Authenticated.
func (c *Controller) establish(ctx context.Context, user models.User) error {
	token, err := c.auth.IssueToken(user)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := kv.SetMany(ctx, c.store, map[string]string{
		common.AuthTokenKey: token,
		common.UserKey:      string(encoded),
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}

	c.mu.Lock()
	c.state = State{View: ViewTasks, User: &user, Tasks: []models.Task{}}
	c.mu.Unlock()

	c.log.Info(ctx, "session started", "user_id", user.ID)
	return nil
}

// Logout removes every session key from the store and resets transient
// state. If the store refuses, the session stays active and an error is shown.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.state.Error = ""
	c.mu.Unlock()

	if err := kv.RemoveMany(ctx, c.store, common.SessionKeys...); err != nil {
		c.fail(ctx, MsgLogoutFailed, err)
		return err
	}

	c.mu.Lock()
	c.state = State{View: ViewLogin, Tasks: []models.Task{}}
	c.mu.Unlock()

	c.log.Info(ctx, "logged out")
	return nil
}

// LoadTasks replaces the task list with the repository's content.
func (c *Controller) LoadTasks(ctx context.Context) error {
	if err := c.begin(); err != nil {
		return err
	}
	all, err := run(ctx, c, c.tasks.List)
	if err != nil {
		c.fail(ctx, MsgLoadFailed, err)
		return err
	}

	c.mu.Lock()
	c.state.Tasks = all
	c.mu.Unlock()
	return nil
}

// AddTask creates a task from draft. The draft is kept as the add form until
// the task is created, then the form is cleared.
func (c *Controller) AddTask(ctx context.Context, draft TaskDraft) error {
	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.TaskForm = draft
	c.mu.Unlock()

	if strings.TrimSpace(draft.Title) == "" {
		err := fmt.Errorf("%w: title is required", common.ErrorValidation)
		c.fail(ctx, MsgTitleRequired, err)
		return err
	}

	created, err := run(ctx, c, func(ctx context.Context) (models.Task, error) {
		return c.tasks.Create(ctx, models.NewTask{Title: draft.Title, Description: draft.Description})
	})
	if err != nil {
		c.fail(ctx, MsgAddFailed, err)
		return err
	}

	c.mu.Lock()
	c.state.Tasks = append(c.state.Tasks, created)
	c.state.TaskForm = TaskDraft{}
	c.mu.Unlock()
	return nil
}

// BeginEdit puts the task with the given id into edit mode, replacing any
// task already being edited, and seeds the edit form from it.
func (c *Controller) BeginEdit(id string) error {
	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.state.Tasks, id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}
	t := c.state.Tasks[i]
	c.state.EditingID = id
	c.state.EditForm = TaskDraft{Title: t.Title, Description: t.Description}
	return nil
}

// CancelEdit leaves edit mode without saving.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EditingID = ""
	c.state.EditForm = TaskDraft{}
}

// SaveEdit writes draft's title and description to the task being edited
// and leaves edit mode on success.
func (c *Controller) SaveEdit(ctx context.Context, draft TaskDraft) error {
	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	id := c.state.EditingID
	c.state.EditForm = draft
	c.mu.Unlock()

	if id == "" {
		return fmt.Errorf("no task is being edited: %w", common.ErrorNotFound)
	}
	if strings.TrimSpace(draft.Title) == "" {
		err := fmt.Errorf("%w: title is required", common.ErrorValidation)
		c.fail(ctx, MsgTitleRequired, err)
		return err
	}

	title, description := draft.Title, draft.Description
	updated, err := c.update(ctx, id, models.TaskPatch{Title: &title, Description: &description})
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.state.EditingID == updated.ID {
		c.state.EditingID = ""
		c.state.EditForm = TaskDraft{}
	}
	c.mu.Unlock()
	return nil
}

// ToggleTask flips the completion flag of a task in the current list.
// Unknown ids are reported without touching the store.
func (c *Controller) ToggleTask(ctx context.Context, id string) error {
	if err := c.begin(); err != nil {
		return err
	}

	c.mu.Lock()
	i := indexOf(c.state.Tasks, id)
	var completed bool
	if i >= 0 {
		completed = !c.state.Tasks[i].Completed
	}
	c.mu.Unlock()

	if i < 0 {
		return fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}

	_, err := c.update(ctx, id, models.TaskPatch{Completed: &completed})
	return err
}

// DeleteTask removes a task. The list changes only once the repository has
// confirmed the delete.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	if err := c.begin(); err != nil {
		return err
	}

	_, err := run(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.tasks.Delete(ctx, id)
	})
	if err != nil {
		c.fail(ctx, MsgDeleteFailed, err)
		return err
	}

	c.mu.Lock()
	if i := indexOf(c.state.Tasks, id); i >= 0 {
		c.state.Tasks = append(c.state.Tasks[:i:i], c.state.Tasks[i+1:]...)
	}
	if c.state.EditingID == id {
		c.state.EditingID = ""
		c.state.EditForm = TaskDraft{}
	}
	c.mu.Unlock()
	return nil
}

// update applies patch through the repository and swaps the returned task
// into the list. A not-found answer means the cached list is stale, so it is
// reloaded from the repository.
func (c *Controller) update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	updated, err := run(ctx, c, func(ctx context.Context) (models.Task, error) {
		return c.tasks.Update(ctx, id, patch)
	})
	if err != nil {
		c.fail(ctx, MsgUpdateFailed, err)
		if errors.Is(err, common.ErrorNotFound) {
			c.resync(ctx)
		}
		return models.Task{}, err
	}

	c.mu.Lock()
	if i := indexOf(c.state.Tasks, updated.ID); i >= 0 {
		c.state.Tasks[i] = updated
	}
	c.mu.Unlock()
	return updated, nil
}

func (c *Controller) resync(ctx context.Context) {
	all, err := c.tasks.List(ctx)
	if err != nil {
		c.log.Warn(ctx, "resync failed", "err", err)
		return
	}

	c.mu.Lock()
	c.state.Tasks = all
	if indexOf(all, c.state.EditingID) < 0 {
		c.state.EditingID = ""
		c.state.EditForm = TaskDraft{}
	}
	c.mu.Unlock()
}

// begin starts a task operation: it requires an active session and clears
// the error left by the previous operation.
func (c *Controller) begin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.View != ViewTasks {
		return common.ErrorUnauthorized
	}
	c.state.Error = ""
	return nil
}

func (c *Controller) fail(ctx context.Context, msg string, err error) {
	c.log.Warn(ctx, msg, "err", err)
	c.mu.Lock()
	c.state.Error = msg
	c.mu.Unlock()
}

func (c *Controller) setLoading(loading bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = loading
	if loading {
		c.state.Error = ""
	}
}

// run executes fn as a deferred operation while the Loading flag is set.
func run[T any](ctx context.Context, c *Controller, fn func(ctx context.Context) (T, error)) (T, error) {
	c.setLoading(true)
	defer c.setLoading(false)
	return async.Go(ctx, fn).Await(ctx)
}

func indexOf(all []models.Task, id string) int {
	if id == "" {
		return -1
	}
	for i, t := range all {
		if t.ID == id {
			return i
		}
	}
	return -1
}
