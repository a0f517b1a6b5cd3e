// Package conflict decides whether a candidate task placement overlaps an
// existing task on the same day. It is the gate every create and update
// passes before a write is committed.
package conflict

import (
	"fmt"
	"time"

	"github.com/javiermolinar/agenda/internal/task"
)

// Candidate describes a proposed placement.
// ExcludeID is the ID of the task being edited; 0 excludes nothing.
type Candidate struct {
	Day       time.Time
	Start     float64
	Duration  float64
	ExcludeID int64
}

// ForTask builds a candidate from a task. The task's own ID is excluded
// so that an edit never conflicts with its previous placement.
func ForTask(t *task.Task) Candidate {
	return Candidate{
		Day:       t.Day,
		Start:     t.Start,
		Duration:  t.Duration,
		ExcludeID: t.ID,
	}
}

// Find returns the first task that conflicts with the candidate, or nil.
// A candidate with a non-finite start or duration never conflicts; callers
// validate ranges separately. Tasks on other days, the excluded task and
// malformed tasks are skipped.
func Find(tasks []*task.Task, c Candidate) *task.Task {
	want, ok := task.HoursToInterval(c.Start, c.Duration)
	if !ok {
		return nil
	}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if c.ExcludeID != 0 && t.ID == c.ExcludeID {
			continue
		}
		if !t.SameDay(c.Day) {
			continue
		}
		iv, ok := t.Interval()
		if !ok {
			continue
		}
		if want.Overlaps(iv) {
			return t
		}
	}
	return nil
}

// Has reports whether the candidate overlaps any task on its day.
func Has(tasks []*task.Task, c Candidate) bool {
	return Find(tasks, c) != nil
}

// Check returns a task.ErrConflict naming the overlapping task, or nil.
func Check(tasks []*task.Task, c Candidate) error {
	hit := Find(tasks, c)
	if hit == nil {
		return nil
	}
	return fmt.Errorf("%w: %s conflicts with #%d %q (%s)",
		task.ErrConflict, task.HoursToClock(c.Start)+"-"+task.HoursToClock(c.Start+c.Duration),
		hit.ID, hit.Title, hit.TimeRange())
}

// Batch checks a set of candidates against each other, as happens on import.
// It returns an error for the first pair that overlaps.
func Batch(tasks []*task.Task) error {
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			a, b := tasks[i], tasks[j]
			if a.OverlapsWith(b) {
				return fmt.Errorf("%w: %q (%s) conflicts with %q (%s)",
					task.ErrConflict, a.Title, a.TimeRange(), b.Title, b.TimeRange())
			}
		}
	}
	return nil
}
