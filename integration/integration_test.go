package integration

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/javiermolinar/agenda/internal/conflict"
	"github.com/javiermolinar/agenda/internal/db"
	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/render"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
)

// openRepo opens the database at path with the default window enforced.
func openRepo(t *testing.T, path string) *db.SQLite {
	t.Helper()
	repo, err := db.New(path, db.WithWindow(scheduler.DefaultWindow))
	if err != nil {
		t.Fatalf("failed to open repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "agenda.db")
}

// mustParseDate parses a date string or fails the test.
func mustParseDate(t *testing.T, s string) time.Time {
	t.Helper()
	date, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("failed to parse date %q: %v", s, err)
	}
	return date
}

// createTask builds and stores a task, failing the test on any error.
func createTask(t *testing.T, repo task.Repository, title, date string, start, duration float64) *task.Task {
	t.Helper()
	tsk, err := task.New(title, date, start, duration, "")
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}
	if err := repo.CreateTask(context.Background(), tsk); err != nil {
		t.Fatalf("failed to insert %q: %v", title, err)
	}
	return tsk
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := tempDB(t)
	ctx := context.Background()

	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created := createTask(t, repo, "Standup", "2025-01-20", 9, 0.25)
	if err := repo.SetPriority(ctx, created.ID, true); err != nil {
		t.Fatalf("SetPriority: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	repo = openRepo(t, path)
	got, err := repo.GetTask(ctx, created.ID)
	if err != nil || got == nil {
		t.Fatalf("GetTask after reopen: %v, %v", got, err)
	}
	if got.Title != "Standup" || got.Start != 9 || got.Duration != 0.25 || !got.IsPriority {
		t.Errorf("task did not round-trip: %+v", got)
	}
	if !got.SameDay(mustParseDate(t, "2025-01-20")) {
		t.Errorf("day = %v, want 2025-01-20", got.Day)
	}

	// The conflict gate sees rows written by an earlier process.
	clash, _ := task.New("Clash", "2025-01-20", 9.1, 0.5, "")
	if err := repo.CreateTask(ctx, clash); !errors.Is(err, task.ErrConflict) {
		t.Errorf("got %v, want ErrConflict", err)
	}
}

func TestConflictGate(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()
	createTask(t, repo, "Design review", "2025-01-20", 10, 1)

	tests := []struct {
		name     string
		date     string
		start    float64
		duration float64
		wantErr  error
	}{
		{name: "touching before", date: "2025-01-20", start: 9, duration: 1},
		{name: "touching after", date: "2025-01-20", start: 11, duration: 0.5},
		{name: "overlap start", date: "2025-01-20", start: 9.5, duration: 1, wantErr: task.ErrConflict},
		{name: "contained", date: "2025-01-20", start: 10.25, duration: 0.25, wantErr: task.ErrConflict},
		{name: "same time other day", date: "2025-01-21", start: 10, duration: 1},
		{name: "outside window", date: "2025-01-22", start: 21.5, duration: 1, wantErr: task.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tsk, err := task.New(tt.name, tt.date, tt.start, tt.duration, "")
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			err = repo.CreateTask(ctx, tsk)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdateDoesNotConflictWithItself(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()
	a := createTask(t, repo, "Focus", "2025-01-20", 9, 2)
	createTask(t, repo, "Lunch", "2025-01-20", 12, 1)

	a.Start = 9.5
	if err := repo.UpdateTask(ctx, a); err != nil {
		t.Fatalf("shrinking into own slot: %v", err)
	}

	a.Start, a.Duration = 11, 1.5
	if err := repo.UpdateTask(ctx, a); !errors.Is(err, task.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	got, _ := repo.GetTask(ctx, a.ID)
	if got.Start != 9.5 || got.Duration != 2 {
		t.Errorf("rejected update changed the row: %+v", got)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()
	createTask(t, repo, "Existing", "2025-01-20", 14, 1)
	day := mustParseDate(t, "2025-01-20")

	batch := []*task.Task{
		{Day: day, Start: 9, Duration: 1, Title: "One", Color: task.DefaultColor},
		{Day: day, Start: 14.5, Duration: 1, Title: "Clashes with existing", Color: task.DefaultColor},
	}
	if _, err := repo.ImportTasks(ctx, batch); !errors.Is(err, task.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}

	internal := []*task.Task{
		{Day: day, Start: 9, Duration: 1, Title: "One", Color: task.DefaultColor},
		{Day: day, Start: 9.5, Duration: 1, Title: "Two", Color: task.DefaultColor},
	}
	if _, err := repo.ImportTasks(ctx, internal); !errors.Is(err, task.ErrConflict) {
		t.Fatalf("got %v, want ErrConflict for overlap inside the batch", err)
	}

	tasks, _ := repo.ListTasksByDay(ctx, day)
	if len(tasks) != 1 {
		t.Fatalf("failed imports left %d tasks, want 1", len(tasks))
	}

	good := []*task.Task{
		{Day: day, Start: 9, Duration: 1, Title: "One", Color: task.DefaultColor},
		{Day: day, Start: 10, Duration: 1, Title: "Two", Color: task.DefaultColor},
	}
	n, err := repo.ImportTasks(ctx, good)
	if err != nil || n != 2 {
		t.Fatalf("ImportTasks = %d, %v", n, err)
	}
}

func TestStoredDayLayout(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()
	a := createTask(t, repo, "A", "2025-01-20", 9, 1)
	b := createTask(t, repo, "B", "2025-01-20", 9.5, 1)
	c := createTask(t, repo, "C", "2025-01-20", 10, 1)
	d := createTask(t, repo, "D", "2025-01-20", 14, 1)

	tasks, err := repo.ListTasksByDay(ctx, mustParseDate(t, "2025-01-20"))
	if err != nil {
		t.Fatalf("ListTasksByDay: %v", err)
	}
	res := layout.Compute(tasks)
	if len(res.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(res.Clusters))
	}

	want := map[int64][2]int{ // column, count
		a.ID: {0, 2},
		b.ID: {1, 2},
		c.ID: {0, 2},
		d.ID: {0, 1},
	}
	for id, w := range want {
		p := res.Placements[id]
		if p.Column != w[0] || p.ColumnCount != w[1] {
			t.Errorf("task %d: column %d/%d, want %d/%d", id, p.Column, p.ColumnCount, w[0], w[1])
		}
	}

	out := render.Agenda(tasks, render.Options{Plain: true})
	for _, line := range []string{"09:00-10:00 [1/2]", "09:30-10:30 [2/2]", "10:00-11:00 [1/2]"} {
		if !strings.Contains(out, line) {
			t.Errorf("agenda missing %q:\n%s", line, out)
		}
	}
}

func TestMalformedRowsAreReadButNotPlaced(t *testing.T) {
	path := tempDB(t)
	ctx := context.Background()

	repo, err := db.New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	broken := createTask(t, repo, "Broken", "2025-01-20", 9, 1)
	_ = repo.Close()

	// Simulate a row written by an older or foreign client.
	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("raw open: %v", err)
	}
	if _, err := raw.Exec(`UPDATE tasks SET start_time = NULL WHERE id = ?`, broken.ID); err != nil {
		t.Fatalf("raw update: %v", err)
	}
	_ = raw.Close()

	repo = openRepo(t, path)
	day := mustParseDate(t, "2025-01-20")
	tasks, err := repo.ListTasksByDay(ctx, day)
	if err != nil {
		t.Fatalf("ListTasksByDay: %v", err)
	}
	if len(tasks) != 1 || !math.IsNaN(tasks[0].Start) {
		t.Fatalf("want the broken task with a NaN start, got %+v", tasks)
	}

	res := layout.Compute(tasks)
	if len(res.Placements) != 0 || len(res.Excluded) != 1 {
		t.Errorf("placements %d excluded %d, want 0 and 1", len(res.Placements), len(res.Excluded))
	}

	// A malformed task never blocks a slot.
	if err := conflict.Check(tasks, conflict.Candidate{Day: day, Start: 9, Duration: 1}); err != nil {
		t.Errorf("malformed task should not conflict: %v", err)
	}
	createTask(t, repo, "Fixed", "2025-01-20", 9, 1)
}

func TestNextFreeOverStoredDay(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()
	createTask(t, repo, "Morning", "2025-01-20", 8, 1.5)
	createTask(t, repo, "Late morning", "2025-01-20", 10, 2)

	day := mustParseDate(t, "2025-01-20")
	tasks, _ := repo.ListTasksByDay(ctx, day)

	start, ok := scheduler.DefaultWindow.NextFree(tasks, day, 0.5, 0.5)
	if !ok || start != 9.5 {
		t.Errorf("NextFree 30m = %v, %v; want 9.5", start, ok)
	}
	start, ok = scheduler.DefaultWindow.NextFree(tasks, day, 1, 0.5)
	if !ok || start != 12 {
		t.Errorf("NextFree 1h = %v, %v; want 12", start, ok)
	}

	// Whatever NextFree returns must pass the store's own gate.
	tsk, _ := task.New("Filler", "2025-01-20", start, 1, "")
	if err := repo.CreateTask(ctx, tsk); err != nil {
		t.Errorf("slot from NextFree was rejected: %v", err)
	}
}
