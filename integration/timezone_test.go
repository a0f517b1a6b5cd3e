package integration

import (
	"context"
	"testing"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/task"
)

// Tasks created for "today" must come back for the local calendar day,
// whatever the offset between local time and UTC.
func TestTodayRoundTripsInLocalTime(t *testing.T) {
	repo := openRepo(t, tempDB(t))
	ctx := context.Background()

	now := time.Now()
	t.Logf("local time %v (%v)", now, now.Location())

	tsk, err := task.New("Today", "", 10, 1, "")
	if err != nil {
		t.Fatalf("task.New: %v", err)
	}
	if err := repo.CreateTask(ctx, tsk); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	today := dateutil.TruncateToDay(now)
	tasks, err := repo.ListTasksByDay(ctx, today)
	if err != nil {
		t.Fatalf("ListTasksByDay: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks for today, want 1", len(tasks))
	}
	if !dateutil.SameDay(tasks[0].Day, now) {
		t.Errorf("stored day %v is not today %v", tasks[0].Day, today)
	}

	// A range query spanning the current week finds the same row.
	start := today.AddDate(0, 0, -3)
	end := today.AddDate(0, 0, 3)
	ranged, err := repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		t.Fatalf("ListTasksByDateRange: %v", err)
	}
	if len(ranged) != 1 || ranged[0].ID != tsk.ID {
		t.Errorf("range query returned %+v", ranged)
	}

	day := task.NewDayWithTasks(today, ranged)
	if stats := day.Stats(); stats.Total != 1 || stats.ScheduledMins != 60 {
		t.Errorf("stats = %+v", stats)
	}
}
