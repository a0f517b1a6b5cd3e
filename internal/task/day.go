package task

import (
	"cmp"
	"slices"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
)

// Day holds all tasks for a single calendar day.
type Day struct {
	Date  time.Time
	tasks []*Task // sorted by Start, malformed last
}

// NewDay creates a Day for the given date.
func NewDay(date time.Time) *Day {
	return &Day{
		Date:  dateutil.TruncateToDay(date),
		tasks: make([]*Task, 0),
	}
}

// NewDayWithTasks creates a Day from a slice of tasks.
// Tasks on other dates are ignored.
func NewDayWithTasks(date time.Time, tasks []*Task) *Day {
	d := NewDay(date)
	for _, t := range tasks {
		d.Add(t)
	}
	return d
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []*Task {
	result := make([]*Task, len(d.tasks))
	copy(result, d.tasks)
	return result
}

// Add adds a task to the day, keeping start order. It does not check for
// conflicts; writes are gated by the conflict package before they reach a Day.
func (d *Day) Add(t *Task) {
	if t == nil || !t.SameDay(d.Date) {
		return
	}
	d.tasks = append(d.tasks, t)
	slices.SortStableFunc(d.tasks, compareByStart)
}

// Len returns the number of tasks in the day.
func (d *Day) Len() int {
	return len(d.tasks)
}

// Valid returns the tasks that can be placed on a timeline.
func (d *Day) Valid() []*Task {
	var result []*Task
	for _, t := range d.tasks {
		if !t.Malformed() {
			result = append(result, t)
		}
	}
	return result
}

// Malformed returns the tasks with non-finite start or duration.
func (d *Day) Malformed() []*Task {
	var result []*Task
	for _, t := range d.tasks {
		if t.Malformed() {
			result = append(result, t)
		}
	}
	return result
}

// Priorities returns the day's priority tasks ordered by start time.
func (d *Day) Priorities() []*Task {
	var result []*Task
	for _, t := range d.tasks {
		if t.IsPriority {
			result = append(result, t)
		}
	}
	return result
}

// DayStats holds statistics for a single day.
type DayStats struct {
	Total         int
	Completed     int
	Priority      int
	Malformed     int
	ScheduledMins int
	CompletedMins int
}

// CompletedPercent returns the share of tasks marked completed.
func (s DayStats) CompletedPercent() int {
	if s.Total == 0 {
		return 0
	}
	return (s.Completed * 100) / s.Total
}

// Stats calculates statistics for the day.
func (d *Day) Stats() DayStats {
	var stats DayStats
	for _, t := range d.tasks {
		stats.Total++
		if t.IsPriority {
			stats.Priority++
		}
		iv, ok := t.Interval()
		if !ok {
			stats.Malformed++
			continue
		}
		stats.ScheduledMins += iv.Minutes()
		if t.IsCompleted {
			stats.Completed++
			stats.CompletedMins += iv.Minutes()
		}
	}
	return stats
}

func compareByStart(a, b *Task) int {
	am, bm := a.Malformed(), b.Malformed()
	switch {
	case am && bm:
		return cmp.Compare(a.ID, b.ID)
	case am:
		return 1
	case bm:
		return -1
	}
	if c := cmp.Compare(a.Start, b.Start); c != 0 {
		return c
	}
	if c := cmp.Compare(a.End(), b.End()); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
