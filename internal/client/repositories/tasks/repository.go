package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/taskgate/internal/client/models"
	"github.com/dmitrijs2005/taskgate/internal/client/repositories/kv"
	"github.com/dmitrijs2005/taskgate/internal/common"
	"github.com/dmitrijs2005/taskgate/internal/logging"
	"github.com/jonboulle/clockwork"
)

// Repository describes the operations on the task collection.
type Repository interface {
	// List returns all tasks in creation order.
	List(ctx context.Context) ([]models.Task, error)

	// Create validates and appends a task, assigning its ID and CreatedAt.
	Create(ctx context.Context, task models.NewTask) (models.Task, error)

	// Update applies patch to the task with the given id and returns the
	// result, or common.ErrorNotFound.
	Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error)

	// Delete removes the task with the given id. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
}

type KVRepository struct {
	store kv.Store
	key   string
	clock clockwork.Clock
	log   logging.Logger
}

func NewKVRepository(store kv.Store, clock clockwork.Clock, log logging.Logger) *KVRepository {
	return &KVRepository{
		store: store,
		key:   common.TasksKey,
		clock: clock,
		log:   log.With("component", "tasks"),
	}
}

func (r *KVRepository) List(ctx context.Context) ([]models.Task, error) {
	return r.load(ctx)
}

func (r *KVRepository) Create(ctx context.Context, task models.NewTask) (models.Task, error) {
	task = task.Normalize()
	if task.Title == "" {
		return models.Task{}, fmt.Errorf("%w: title is required", common.ErrorValidation)
	}

	all, err := r.load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	now := r.clock.Now().UTC()
	created := models.Task{
		ID:          nextID(all, now.UnixMilli()),
		Title:       task.Title,
		Description: task.Description,
		CreatedAt:   now,
	}

	if err := r.save(ctx, append(all, created)); err != nil {
		return models.Task{}, err
	}

	r.log.Debug(ctx, "task created", "id", created.ID)
	return created, nil
}

func (r *KVRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	if patch.Title != nil {
		title := models.NewTask{Title: *patch.Title}.Normalize().Title
		if title == "" {
			return models.Task{}, fmt.Errorf("%w: title is required", common.ErrorValidation)
		}
		patch.Title = &title
	}

	all, err := r.load(ctx)
	if err != nil {
		return models.Task{}, err
	}

	i := indexOf(all, id)
	if i < 0 {
		return models.Task{}, fmt.Errorf("task %s: %w", id, common.ErrorNotFound)
	}
	all[i] = patch.Apply(all[i])

	if err := r.save(ctx, all); err != nil {
		return models.Task{}, err
	}

	r.log.Debug(ctx, "task updated", "id", id)
	return all[i], nil
}

func (r *KVRepository) Delete(ctx context.Context, id string) error {
	all, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}

	if err := r.save(ctx, kept); err != nil {
		return err
	}

	r.log.Debug(ctx, "task deleted", "id", id, "existed", len(kept) != len(all))
	return nil
}

func (r *KVRepository) load(ctx context.Context) ([]models.Task, error) {
	raw, ok, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	if !ok {
		return []models.Task{}, nil
	}

	var all []models.Task
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		r.log.Warn(ctx, "stored tasks are unreadable, treating as empty", "err", err)
		return []models.Task{}, nil
	}
	if all == nil {
		all = []models.Task{}
	}
	return all, nil
}

func (r *KVRepository) save(ctx context.Context, all []models.Task) error {
	b, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := r.store.Set(ctx, r.key, string(b)); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}

func indexOf(all []models.Task, id string) int {
	for i, t := range all {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// nextID derives an id from the creation time in milliseconds, stepping
// forward while it collides with an existing task.
func nextID(all []models.Task, millis int64) string {
	for {
		id := strconv.FormatInt(millis, 10)
		if indexOf(all, id) < 0 {
			return id
		}
		millis++
	}
}
