package db

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
)

var testDay = time.Date(2025, 1, 9, 0, 0, 0, 0, time.Local)

func newTestRepo(t *testing.T, opts ...Option) *SQLite {
	t.Helper()

	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	repo, err := New(dbPath, opts...)
	if err != nil {
		t.Fatalf("failed to create test repo: %v", err)
	}

	t.Cleanup(func() {
		_ = repo.Close()
	})

	return repo
}

func newTask(title string, day time.Time, start, duration float64) *task.Task {
	return &task.Task{
		Title:     title,
		Day:       day,
		Start:     start,
		Duration:  duration,
		Color:     task.DefaultColor,
		CreatedAt: time.Now(),
	}
}

func mustCreate(t *testing.T, repo *SQLite, tsk *task.Task) *task.Task {
	t.Helper()
	if err := repo.CreateTask(context.Background(), tsk); err != nil {
		t.Fatalf("CreateTask(%q) failed: %v", tsk.Title, err)
	}
	return tsk
}

func TestCreateTask(t *testing.T) {
	repo := newTestRepo(t)

	tsk := mustCreate(t, repo, newTask("Write unit tests", testDay, 9, 2))
	if tsk.ID == 0 {
		t.Error("expected ID to be set after insert")
	}
}

func TestCreateTask_Validation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		tsk     *task.Task
		wantErr error
	}{
		{name: "empty title", tsk: newTask(" ", testDay, 9, 1), wantErr: task.ErrEmptyTitle},
		{name: "zero duration", tsk: newTask("x", testDay, 9, 0), wantErr: task.ErrInvalidRange},
		{name: "bad color", tsk: &task.Task{Title: "x", Day: testDay, Start: 9, Duration: 1, Color: "purple"}, wantErr: task.ErrInvalidColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateTask(ctx, tt.tsk)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateTask_Window(t *testing.T) {
	repo := newTestRepo(t, WithWindow(scheduler.DefaultWindow))
	ctx := context.Background()

	err := repo.CreateTask(ctx, newTask("Too late", testDay, 21.5, 1))
	if !errors.Is(err, task.ErrInvalidRange) {
		t.Errorf("got %v, want ErrInvalidRange", err)
	}
	mustCreate(t, repo, newTask("Last slot", testDay, 21, 1))
}

func TestGetTask(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	original := newTask("Review PRs", testDay, 14, 1.5)
	original.Color = task.ColorGreen
	original.IsPriority = true
	mustCreate(t, repo, original)

	got, err := repo.GetTask(ctx, original.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected task, got nil")
	}
	if got.Title != "Review PRs" {
		t.Errorf("expected title %q, got %q", "Review PRs", got.Title)
	}
	if got.Start != 14 || got.Duration != 1.5 {
		t.Errorf("expected 14+1.5, got %v+%v", got.Start, got.Duration)
	}
	if got.Color != task.ColorGreen {
		t.Errorf("expected color green, got %s", got.Color)
	}
	if !got.IsPriority || got.IsCompleted {
		t.Errorf("unexpected flags priority=%v completed=%v", got.IsPriority, got.IsCompleted)
	}
	if !got.Day.Equal(testDay) {
		t.Errorf("expected day %v, got %v", testDay, got.Day)
	}
}

func TestGetTask_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetTask(context.Background(), 999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestCreateTask_OverlapError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newTask("Standup", testDay, 9, 1))

	err := repo.CreateTask(ctx, newTask("Clash", testDay, 9.5, 1))
	if !errors.Is(err, task.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), `"Standup"`) {
		t.Errorf("error should name the existing task: %v", err)
	}

	tasks, err := repo.ListTasksByDay(ctx, testDay)
	if err != nil {
		t.Fatalf("ListTasksByDay failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("rejected task must not be stored, got %d tasks", len(tasks))
	}
}

func TestCreateTask_NoOverlapWithAdjacentTasks(t *testing.T) {
	repo := newTestRepo(t)

	mustCreate(t, repo, newTask("Morning", testDay, 9, 1))
	mustCreate(t, repo, newTask("Next", testDay, 10, 1))
	mustCreate(t, repo, newTask("Before", testDay, 8, 1))
}

func TestCreateTask_NoOverlapOnDifferentDays(t *testing.T) {
	repo := newTestRepo(t)

	mustCreate(t, repo, newTask("Today", testDay, 9, 1))
	mustCreate(t, repo, newTask("Tomorrow", testDay.AddDate(0, 0, 1), 9, 1))
}

func TestCreateTask_ConcurrentWriters(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// All candidates overlap 09:30-10:00.
			err := repo.CreateTask(ctx, newTask("racer", testDay, 9+float64(i)*0.05, 1))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, task.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || conflicts != writers-1 {
		t.Errorf("got %d successes and %d conflicts, want 1 and %d", succeeded, conflicts, writers-1)
	}
}

func TestUpdateTask(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tsk := mustCreate(t, repo, newTask("Focus", testDay, 9, 1))

	tsk.Start = 13
	tsk.Duration = 2
	tsk.Title = "Deep focus"
	tsk.Color = task.ColorYellowGreen
	if err := repo.UpdateTask(ctx, tsk); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	got, err := repo.GetTask(ctx, tsk.ID)
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Start != 13 || got.Duration != 2 || got.Title != "Deep focus" || got.Color != task.ColorYellowGreen {
		t.Errorf("update not persisted: %+v", got)
	}
}

func TestUpdateTask_NoSelfOverlap(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tsk := mustCreate(t, repo, newTask("Focus", testDay, 9, 2))

	// Shrinking inside its own previous placement must not conflict.
	tsk.Start = 9.5
	tsk.Duration = 1
	if err := repo.UpdateTask(ctx, tsk); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestUpdateTask_OverlapError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newTask("Lunch", testDay, 12, 1))
	tsk := mustCreate(t, repo, newTask("Focus", testDay, 9, 1))

	tsk.Start = 11.5
	err := repo.UpdateTask(ctx, tsk)
	if !errors.Is(err, task.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got, _ := repo.GetTask(ctx, tsk.ID)
	if got.Start != 9 {
		t.Errorf("rejected update must not be stored, start is %v", got.Start)
	}
}

func TestUpdateTask_MoveToOtherDay(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tomorrow := testDay.AddDate(0, 0, 1)
	mustCreate(t, repo, newTask("Tomorrow busy", tomorrow, 9, 1))
	tsk := mustCreate(t, repo, newTask("Movable", testDay, 9, 1))

	tsk.Day = tomorrow
	if err := repo.UpdateTask(ctx, tsk); !errors.Is(err, task.ErrConflict) {
		t.Errorf("moving onto a busy slot: got %v, want ErrConflict", err)
	}

	tsk.Start = 10
	if err := repo.UpdateTask(ctx, tsk); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	tasks, _ := repo.ListTasksByDay(ctx, tomorrow)
	if len(tasks) != 2 {
		t.Errorf("expected 2 tasks tomorrow, got %d", len(tasks))
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	tsk := newTask("Ghost", testDay, 9, 1)
	tsk.ID = 999
	if err := repo.UpdateTask(context.Background(), tsk); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("got %v, want ErrTaskNotFound", err)
	}
}

func TestDeleteTask(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tsk := mustCreate(t, repo, newTask("Doomed", testDay, 9, 1))
	if err := repo.DeleteTask(ctx, tsk.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	got, _ := repo.GetTask(ctx, tsk.ID)
	if got != nil {
		t.Error("task still present after delete")
	}

	// The slot is free again.
	mustCreate(t, repo, newTask("Replacement", testDay, 9, 1))

	if err := repo.DeleteTask(ctx, tsk.ID); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("second delete: got %v, want ErrTaskNotFound", err)
	}
}

func TestSetFlags(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tsk := mustCreate(t, repo, newTask("Flags", testDay, 9, 1))

	if err := repo.SetCompleted(ctx, tsk.ID, true); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	if err := repo.SetPriority(ctx, tsk.ID, true); err != nil {
		t.Fatalf("SetPriority failed: %v", err)
	}
	got, _ := repo.GetTask(ctx, tsk.ID)
	if !got.IsCompleted || !got.IsPriority {
		t.Errorf("flags not persisted: %+v", got)
	}

	if err := repo.SetCompleted(ctx, tsk.ID, false); err != nil {
		t.Fatalf("SetCompleted failed: %v", err)
	}
	got, _ = repo.GetTask(ctx, tsk.ID)
	if got.IsCompleted {
		t.Error("expected completed to be cleared")
	}

	if err := repo.SetPriority(ctx, 999, true); !errors.Is(err, task.ErrTaskNotFound) {
		t.Errorf("got %v, want ErrTaskNotFound", err)
	}
}

func TestListTasksByDateRange(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newTask("Day 1 late", testDay, 14, 1))
	mustCreate(t, repo, newTask("Day 1 early", testDay, 9, 1))
	mustCreate(t, repo, newTask("Day 2", testDay.AddDate(0, 0, 1), 9, 1))
	mustCreate(t, repo, newTask("Outside", testDay.AddDate(0, 0, 5), 9, 1))

	tasks, err := repo.ListTasksByDateRange(ctx, testDay, testDay.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListTasksByDateRange failed: %v", err)
	}

	want := []string{"Day 1 early", "Day 1 late", "Day 2"}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, w := range want {
		if tasks[i].Title != w {
			t.Errorf("tasks[%d] = %q, want %q", i, tasks[i].Title, w)
		}
	}
}

func TestListTasksByDay_Empty(t *testing.T) {
	repo := newTestRepo(t)

	tasks, err := repo.ListTasksByDay(context.Background(), testDay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("expected no tasks, got %d", len(tasks))
	}
}

func TestListTasksByDay_MalformedRecord(t *testing.T) {
	var logs bytes.Buffer
	repo := newTestRepo(t, WithLogger(logx.NewWriter(&logs, "warn")))
	ctx := context.Background()

	mustCreate(t, repo, newTask("Good", testDay, 9, 1))

	// Another client wrote a task without a start time.
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO tasks (title, task_date, start_time, duration, created_at) VALUES (?, ?, NULL, ?, ?)`,
		"Broken", "2025-01-09", 1.0, time.Now().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	tasks, err := repo.ListTasksByDay(ctx, testDay)
	if err != nil {
		t.Fatalf("ListTasksByDay failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("malformed record should be returned, got %d tasks", len(tasks))
	}

	var broken *task.Task
	for _, tk := range tasks {
		if tk.Title == "Broken" {
			broken = tk
		}
	}
	if broken == nil || !broken.Malformed() {
		t.Fatalf("expected Broken to be malformed, got %+v", broken)
	}
	if !strings.Contains(logs.String(), "malformed task record") {
		t.Errorf("expected a warning, got %q", logs.String())
	}

	// The malformed record never blocks a write.
	mustCreate(t, repo, newTask("Fits", testDay, 10, 1))
}

func TestImportTasks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newTask("Existing", testDay, 9, 1))

	batch := []*task.Task{
		newTask("A", testDay, 10, 1),
		newTask("B", testDay, 11, 0.5),
		newTask("C", testDay.AddDate(0, 0, 1), 9, 1),
	}
	n, err := repo.ImportTasks(ctx, batch)
	if err != nil {
		t.Fatalf("ImportTasks failed: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}
	for _, tk := range batch {
		if tk.ID == 0 {
			t.Errorf("task %q has no ID", tk.Title)
		}
	}
}

func TestImportTasks_Empty(t *testing.T) {
	repo := newTestRepo(t)

	n, err := repo.ImportTasks(context.Background(), nil)
	if err != nil || n != 0 {
		t.Errorf("got %d, %v; want 0, nil", n, err)
	}
}

func TestImportTasks_Conflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	mustCreate(t, repo, newTask("Existing", testDay, 9, 1))

	t.Run("within batch", func(t *testing.T) {
		_, err := repo.ImportTasks(ctx, []*task.Task{
			newTask("A", testDay, 13, 1),
			newTask("B", testDay, 13.5, 1),
		})
		if !errors.Is(err, task.ErrConflict) {
			t.Errorf("got %v, want ErrConflict", err)
		}
	})

	t.Run("with stored task", func(t *testing.T) {
		_, err := repo.ImportTasks(ctx, []*task.Task{
			newTask("A", testDay, 15, 1),
			newTask("B", testDay, 9.5, 1),
		})
		if !errors.Is(err, task.ErrConflict) {
			t.Errorf("got %v, want ErrConflict", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		bad := newTask("NaN", testDay, 15, 1)
		bad.Start = math.NaN()
		_, err := repo.ImportTasks(ctx, []*task.Task{bad})
		if !errors.Is(err, task.ErrInvalidRange) {
			t.Errorf("got %v, want ErrInvalidRange", err)
		}
	})

	tasks, _ := repo.ListTasksByDay(ctx, testDay)
	if len(tasks) != 1 {
		t.Errorf("failed imports must not store anything, got %d tasks", len(tasks))
	}
}

func TestParseDate_LocalTimezone(t *testing.T) {
	tests := []string{"2025-01-09", "2025-01-09T00:00:00Z"}
	for _, in := range tests {
		got, err := parseDate(in)
		if err != nil {
			t.Fatalf("parseDate(%q): %v", in, err)
		}
		if got.Location() != time.Local {
			t.Errorf("parseDate(%q) location = %v, want Local", in, got.Location())
		}
		if got.Year() != 2025 || got.Month() != time.January || got.Day() != 9 {
			t.Errorf("parseDate(%q) = %v", in, got)
		}
	}

	if _, err := parseDate("January 9"); err == nil {
		t.Error("expected error for unrecognized format")
	}
}

func TestNew_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agenda.db")

	repo, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tsk := mustCreate(t, repo, newTask("Persisted", testDay, 9, 1))
	_ = repo.Close()

	repo, err = New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = repo.Close() }()

	got, err := repo.GetTask(context.Background(), tsk.ID)
	if err != nil || got == nil || got.Title != "Persisted" {
		t.Errorf("GetTask after reopen = %+v, %v", got, err)
	}
}
