// Package scheduler provides time-aware scheduling logic for tasks.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/javiermolinar/agenda/internal/conflict"
	"github.com/javiermolinar/agenda/internal/task"
)

// Window is the visible part of a day, in fractional hours.
// Tasks may only be written inside it.
type Window struct {
	Start float64
	End   float64
}

// DefaultWindow is the 08:00-22:00 day.
var DefaultWindow = Window{Start: 8, End: 22}

// NewWindow builds a window from "HH:MM" bounds.
func NewWindow(dayStart, dayEnd string) (Window, error) {
	start, err := task.ParseHours(dayStart)
	if err != nil {
		return Window{}, fmt.Errorf("day start %q: %w", dayStart, err)
	}
	end, err := task.ParseHours(dayEnd)
	if err != nil {
		return Window{}, fmt.Errorf("day end %q: %w", dayEnd, err)
	}
	if start >= end {
		return Window{}, fmt.Errorf("%w: day start %s must be before day end %s", task.ErrInvalidRange, dayStart, dayEnd)
	}
	return Window{Start: start, End: end}, nil
}

// Minutes returns the window bounds in minutes since midnight.
func (w Window) Minutes() (start, end int) {
	return int(math.Round(w.Start * 60)), int(math.Round(w.End * 60))
}

// Contains reports whether the given hour lies in [Start, End).
func (w Window) Contains(hour float64) bool {
	if !task.IsFinite(hour) {
		return false
	}
	m := int(math.Round(hour * 60))
	start, end := w.Minutes()
	return m >= start && m < end
}

// Validate checks that a task starting at start and lasting duration hours
// fits entirely inside the window.
func (w Window) Validate(start, duration float64) error {
	iv, ok := task.HoursToInterval(start, duration)
	if !ok {
		return fmt.Errorf("%w: start and duration must be numbers", task.ErrInvalidRange)
	}
	if duration <= 0 || iv.Minutes() == 0 {
		return fmt.Errorf("%w: duration must be positive", task.ErrInvalidRange)
	}
	ws, we := w.Minutes()
	if iv.Start < ws || iv.End > we {
		return fmt.Errorf("%w: %s is outside %s-%s", task.ErrInvalidRange,
			iv, task.MinutesToTime(ws), task.MinutesToTime(we))
	}
	return nil
}

// String formats the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return task.HoursToClock(w.Start) + "-" + task.HoursToClock(w.End)
}

// NextFree returns the earliest start on the step grid inside the window
// where a task of the given duration neither conflicts with tasks on day
// nor runs past the window end.
func (w Window) NextFree(tasks []*task.Task, day time.Time, duration, step float64) (float64, bool) {
	return w.NextFreeFrom(tasks, day, duration, step, w.Start)
}

// NextFreeFrom is NextFree starting the search at from, rounded up to the
// step grid. Used to skip the part of today that has already passed.
func (w Window) NextFreeFrom(tasks []*task.Task, day time.Time, duration, step, from float64) (float64, bool) {
	if !task.IsFinite(duration) || duration <= 0 || !task.IsFinite(step) || step <= 0 {
		return 0, false
	}
	ws, we := w.Minutes()
	stepMin := int(math.Round(step * 60))
	durMin := int(math.Round(duration * 60))
	if stepMin <= 0 || durMin <= 0 {
		return 0, false
	}

	first := ws
	if task.IsFinite(from) {
		// The epsilon absorbs float error from clock values like 10:23.
		first = max(ws, roundUp(int(math.Ceil(from*60-1e-6)), ws, stepMin))
	}

	for m := first; m+durMin <= we; m += stepMin {
		start := float64(m) / 60
		c := conflict.Candidate{Day: day, Start: start, Duration: duration}
		if !conflict.Has(tasks, c) {
			return start, true
		}
	}
	return 0, false
}

// StartFor returns the search origin for a given day: the window start for
// any day other than today, and now rounded up to the step grid for today.
func (w Window) StartFor(day, now time.Time) float64 {
	if day.Year() != now.Year() || day.YearDay() != now.YearDay() {
		return w.Start
	}
	return float64(now.Hour()) + float64(now.Minute())/60 + float64(now.Second())/3600
}

// roundUp rounds m up to the next point of the grid anchored at origin.
func roundUp(m, origin, step int) int {
	if m <= origin {
		return origin
	}
	off := (m - origin) % step
	if off == 0 {
		return m
	}
	return m + step - off
}
