// Package summary provides the week summary shared by the CLI.
package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/task"
)

// WeekSummary holds aggregated week data.
type WeekSummary struct {
	Start time.Time
	End   time.Time
	Tasks []*task.Task
	Stats task.WeekStats
	Lanes [7]int // most tasks sharing one instant, per weekday
}

// SummarizeWeek builds the summary of the week containing ref from tasks.
// Tasks outside that week are ignored.
func SummarizeWeek(ref time.Time, tasks []*task.Task) *WeekSummary {
	week := task.NewWeekFromTasks(ref, tasks)
	s := &WeekSummary{
		Start: week.StartDate,
		End:   week.EndDate(),
		Tasks: week.AllTasks(),
		Stats: week.Stats(),
	}
	for i, day := range week.Days {
		var ivs []task.Interval
		for _, t := range day.Valid() {
			iv, _ := t.Interval()
			ivs = append(ivs, iv)
		}
		s.Lanes[i] = layout.PeakConcurrency(ivs)
	}
	return s
}

// BuildWeekSummary loads the week containing ref from repo and summarizes it.
func BuildWeekSummary(ctx context.Context, repo task.Repository, ref time.Time) (*WeekSummary, error) {
	start, end := dateutil.WeekRange(ref)
	tasks, err := repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching tasks: %w", err)
	}
	return SummarizeWeek(start, tasks), nil
}
