package summary

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/javiermolinar/agenda/internal/task"
)

func TestSummarizeWeek(t *testing.T) {
	ref := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local) // Wednesday
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	sunday := time.Date(2025, 1, 19, 0, 0, 0, 0, time.Local)

	tasks := []*task.Task{
		{ID: 1, Day: monday, Start: 9, Duration: 1, Title: "Standup"},
		{ID: 2, Day: monday, Start: 9.5, Duration: 1, Title: "Review"},
		{ID: 3, Day: monday, Start: 9.75, Duration: 0.5, Title: "Call"},
		{ID: 4, Day: monday.AddDate(0, 0, 1), Start: 10, Duration: 0.5, Title: "Shallow", IsCompleted: true},
		{ID: 5, Day: sunday.AddDate(0, 0, 1), Start: 9, Duration: 1, Title: "Next week"},
	}

	s := SummarizeWeek(ref, tasks)
	if !s.Start.Equal(monday) || !s.End.Equal(sunday) {
		t.Errorf("range = %v..%v, want %v..%v", s.Start, s.End, monday, sunday)
	}
	if len(s.Tasks) != 4 {
		t.Errorf("expected 4 tasks in week, got %d", len(s.Tasks))
	}
	if s.Stats.Totals.ScheduledMins != 180 {
		t.Errorf("ScheduledMins = %d, want 180", s.Stats.Totals.ScheduledMins)
	}
	if s.Stats.Totals.Completed != 1 {
		t.Errorf("Completed = %d, want 1", s.Stats.Totals.Completed)
	}
	if s.Lanes[0] != 3 || s.Lanes[1] != 1 || s.Lanes[2] != 0 {
		t.Errorf("Lanes = %v, want [3 1 0 ...]", s.Lanes)
	}
}

type rangeRepo struct {
	task.Repository
	tasks []*task.Task
	err   error

	start, end time.Time
}

func (r *rangeRepo) ListTasksByDateRange(_ context.Context, start, end time.Time) ([]*task.Task, error) {
	r.start, r.end = start, end
	return r.tasks, r.err
}

func TestBuildWeekSummary(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.Local)
	repo := &rangeRepo{tasks: []*task.Task{{ID: 1, Day: monday, Start: 9, Duration: 2, Title: "Focus"}}}

	s, err := BuildWeekSummary(context.Background(), repo, monday.AddDate(0, 0, 4))
	if err != nil {
		t.Fatalf("BuildWeekSummary: %v", err)
	}
	if !repo.start.Equal(monday) || !repo.end.Equal(monday.AddDate(0, 0, 6)) {
		t.Errorf("queried %v..%v", repo.start, repo.end)
	}
	if s.Stats.Totals.ScheduledMins != 120 {
		t.Errorf("ScheduledMins = %d, want 120", s.Stats.Totals.ScheduledMins)
	}

	boom := errors.New("boom")
	if _, err := BuildWeekSummary(context.Background(), &rangeRepo{err: boom}, monday); !errors.Is(err, boom) {
		t.Errorf("got %v, want wrapped boom", err)
	}
}
