package cli

import (
	"context"

	"github.com/dmitrijs2005/taskgate/internal/client/controller"
)

// List reloads tasks from the store and prints them with a summary line.
func (a *App) List(ctx context.Context) error {
	if err := a.ctrl.LoadTasks(ctx); err != nil {
		return a.report(err)
	}
	a.printTasks()
	return nil
}

func (a *App) printTasks() {
	s := a.ctrl.State()
	if len(s.Tasks) == 0 {
		a.printf("No tasks yet\n")
	}
	for _, t := range s.Tasks {
		a.printf("%s\n", t)
	}
	a.printf("%s\n", a.ctrl.Stats())
}

// Add creates a task. When title is empty the user is prompted for it.
func (a *App) Add(ctx context.Context, title string) error {
	var err error
	if title == "" {
		if title, err = getSimpleText(a.reader, "Enter title", a.out); err != nil {
			return err
		}
	}
	description, err := getSimpleText(a.reader, "Enter description (optional)", a.out)
	if err != nil {
		return err
	}
	return a.AddTask(ctx, title, description)
}

// AddTask creates a task without prompting.
func (a *App) AddTask(ctx context.Context, title, description string) error {
	if err := a.ctrl.AddTask(ctx, controller.TaskDraft{Title: title, Description: description}); err != nil {
		return a.report(err)
	}
	s := a.ctrl.State()
	a.printf("Added %s\n", s.Tasks[len(s.Tasks)-1].ID)
	return nil
}

// Edit puts task id in edit mode and prompts for new values. An empty answer
// keeps the current value.
func (a *App) Edit(ctx context.Context, id string) error {
	if err := a.ctrl.BeginEdit(id); err != nil {
		return a.report(err)
	}
	draft := a.ctrl.State().EditForm

	title, err := getSimpleText(a.reader, "Title ["+draft.Title+"]", a.out)
	if err != nil {
		a.ctrl.CancelEdit()
		return err
	}
	description, err := getSimpleText(a.reader, "Description ["+draft.Description+"]", a.out)
	if err != nil {
		a.ctrl.CancelEdit()
		return err
	}
	if title != "" {
		draft.Title = title
	}
	if description != "" {
		draft.Description = description
	}

	if err := a.ctrl.SaveEdit(ctx, draft); err != nil {
		a.ctrl.CancelEdit()
		return a.report(err)
	}
	a.printf("Updated %s\n", id)
	return nil
}

func (a *App) Toggle(ctx context.Context, id string) error {
	if err := a.ctrl.ToggleTask(ctx, id); err != nil {
		return a.report(err)
	}
	for _, t := range a.ctrl.State().Tasks {
		if t.ID == id {
			a.printf("%s\n", t)
		}
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.ctrl.DeleteTask(ctx, id); err != nil {
		return a.report(err)
	}
	a.printf("Deleted %s\n", id)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	a.printf("%s\n", a.ctrl.Stats())
	return nil
}

// Status prints who is signed in and the task summary.
func (a *App) Status(ctx context.Context) error {
	s := a.ctrl.State()
	if s.User == nil {
		a.printf("Not signed in\n")
		return nil
	}
	a.printf("Signed in as %s <%s>\n", s.User.Name, s.User.Email)
	a.printf("%s\n", a.ctrl.Stats())
	return nil
}
