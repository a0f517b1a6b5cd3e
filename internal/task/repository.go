package task

import (
	"context"
	"time"
)

// Repository defines the storage interface for tasks.
type Repository interface {
	// CreateTask adds a new task to the repository.
	// Returns ErrConflict if the task overlaps an existing task on the same day.
	CreateTask(ctx context.Context, task *Task) error

	// GetTask retrieves a task by ID. Returns nil, nil if it does not exist.
	GetTask(ctx context.Context, id int64) (*Task, error)

	// UpdateTask replaces a task's day, times and metadata in place.
	// The task does not conflict with its own previous placement.
	// Returns ErrConflict if the new placement overlaps another task.
	UpdateTask(ctx context.Context, task *Task) error

	// DeleteTask removes a task.
	DeleteTask(ctx context.Context, id int64) error

	// SetCompleted marks a task as completed or not.
	SetCompleted(ctx context.Context, id int64, completed bool) error

	// SetPriority marks a task as priority or not.
	SetPriority(ctx context.Context, id int64, priority bool) error

	// ListTasksByDay returns all tasks for a single day, malformed ones included.
	ListTasksByDay(ctx context.Context, day time.Time) ([]*Task, error)

	// ListTasksByDateRange returns all tasks within the date range (inclusive).
	ListTasksByDateRange(ctx context.Context, start, end time.Time) ([]*Task, error)

	// ImportTasks adds multiple tasks in one batch; each passes the same
	// conflict gate as CreateTask. Returns the number of tasks inserted.
	ImportTasks(ctx context.Context, tasks []*Task) (int, error)

	// Close releases any resources held by the repository.
	Close() error
}
