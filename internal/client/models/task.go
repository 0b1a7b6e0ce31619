package models

import (
	"fmt"
	"strings"
	"time"
)

// Task is a single unit of work. ID and CreatedAt are assigned on creation
// and never change.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (t Task) String() string {
	mark := "[ ]"
	if t.Completed {
		mark = "[x]"
	}
	s := fmt.Sprintf("%s %s  %s", mark, t.ID, t.Title)
	if t.Description != "" {
		s += " - " + t.Description
	}
	return s
}

// NewTask carries the caller-supplied fields of a task being created.
type NewTask struct {
	Title       string
	Description string
}

// Normalize trims surrounding whitespace from the title.
func (n NewTask) Normalize() NewTask {
	n.Title = strings.TrimSpace(n.Title)
	return n
}

// TaskPatch is a partial update: nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil
}

// Apply returns t with the patch's non-nil fields copied over.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// Stats summarises a task list the way the task header shows it.
type Stats struct {
	Pending   int
	Completed int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d pending, %d completed", s.Pending, s.Completed)
}

// CountTasks tallies pending and completed tasks.
func CountTasks(tasks []Task) Stats {
	var s Stats
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		} else {
			s.Pending++
		}
	}
	return s
}
