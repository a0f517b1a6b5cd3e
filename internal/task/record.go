package task

import (
	"fmt"
	"math"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
)

// Record is the shape tasks are exchanged in, as JSON or YAML.
// Start and Duration are pointers so that null values survive decoding;
// a null becomes NaN on the Task and the task is treated as malformed.
type Record struct {
	ID          int64    `json:"id,omitempty" yaml:"id,omitempty"`
	Day         string   `json:"task_date" yaml:"task_date"`
	Start       *float64 `json:"start_time" yaml:"start_time"`
	Duration    *float64 `json:"duration" yaml:"duration"`
	Title       string   `json:"title" yaml:"title"`
	Color       string   `json:"color,omitempty" yaml:"color,omitempty"`
	IsPriority  bool     `json:"is_priority" yaml:"is_priority"`
	IsCompleted bool     `json:"completed" yaml:"completed"`
}

// ToRecord converts a task to its wire form.
// Non-finite values are written as null.
func ToRecord(t *Task) Record {
	r := Record{
		ID:          t.ID,
		Day:         dateutil.FormatDate(t.Day),
		Title:       t.Title,
		Color:       string(t.Color),
		IsPriority:  t.IsPriority,
		IsCompleted: t.IsCompleted,
	}
	if IsFinite(t.Start) {
		s := t.Start
		r.Start = &s
	}
	if IsFinite(t.Duration) {
		d := t.Duration
		r.Duration = &d
	}
	return r
}

// FromRecord converts a wire record to a task.
// The ID is kept so callers can decide whether to honor it; stores assign their own.
func FromRecord(r Record) (*Task, error) {
	day, err := dateutil.ParseDate(r.Day)
	if err != nil {
		return nil, fmt.Errorf("task_date %q: %w", r.Day, err)
	}
	color, err := ParseColor(r.Color)
	if err != nil {
		return nil, err
	}
	t := &Task{
		ID:          r.ID,
		Day:         day,
		Start:       math.NaN(),
		Duration:    math.NaN(),
		Title:       r.Title,
		Color:       color,
		IsPriority:  r.IsPriority,
		IsCompleted: r.IsCompleted,
		CreatedAt:   time.Now(),
	}
	if r.Start != nil {
		t.Start = *r.Start
	}
	if r.Duration != nil {
		t.Duration = *r.Duration
	}
	return t, nil
}
