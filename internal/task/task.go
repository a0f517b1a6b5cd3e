// Package task defines the core domain types for agenda.
package task

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
)

// Validation errors.
var (
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrInvalidColor = errors.New("color must be 'orange', 'green' or 'yellow-green'")
	ErrInvalidRange = errors.New("task time is outside the visible window")
)

// Domain errors.
var (
	ErrConflict        = errors.New("this task overlaps an existing task")
	ErrMalformedRecord = errors.New("task has a non-finite start or duration")
	ErrTaskNotFound    = errors.New("task not found")
)

// ColorTag is the display color of a task.
type ColorTag string

const (
	ColorOrange      ColorTag = "orange"
	ColorGreen       ColorTag = "green"
	ColorYellowGreen ColorTag = "yellow-green"
)

// DefaultColor is used when a record carries no color.
const DefaultColor = ColorOrange

// Valid returns true if the color is a known tag.
func (c ColorTag) Valid() bool {
	switch c {
	case ColorOrange, ColorGreen, ColorYellowGreen:
		return true
	default:
		return false
	}
}

// ParseColor parses a color tag. Empty input yields DefaultColor.
func ParseColor(s string) (ColorTag, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultColor, nil
	}
	c := ColorTag(s)
	if !c.Valid() {
		return "", ErrInvalidColor
	}
	return c, nil
}

// Task represents one scheduled item on a single day.
type Task struct {
	ID          int64
	Day         time.Time // midnight, date only
	Start       float64   // hours from midnight, e.g. 9.5 is 09:30
	Duration    float64   // hours
	Title       string
	Color       ColorTag
	IsPriority  bool
	IsCompleted bool
	CreatedAt   time.Time
}

// New creates a new Task with validation.
// day can be empty (defaults to today) or in YYYY-MM-DD format.
// The visible window is not checked here; see scheduler.Window.
func New(title, day string, start, duration float64, color string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	d, err := dateutil.ParseDate(day)
	if err != nil {
		return nil, err
	}

	c, err := ParseColor(color)
	if err != nil {
		return nil, err
	}

	t := &Task{
		Day:       d,
		Start:     start,
		Duration:  duration,
		Title:     title,
		Color:     c,
		CreatedAt: time.Now(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the fields every write must satisfy.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if !t.Color.Valid() {
		return fmt.Errorf("%w: got %q", ErrInvalidColor, t.Color)
	}
	if t.Malformed() {
		return fmt.Errorf("%w: start and duration must be numbers", ErrInvalidRange)
	}
	if t.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive", ErrInvalidRange)
	}
	return nil
}

// End returns the end hour of the task.
func (t *Task) End() float64 {
	return t.Start + t.Duration
}

// Malformed returns true if start or duration cannot be placed on a timeline.
func (t *Task) Malformed() bool {
	return !IsFinite(t.Start) || !IsFinite(t.Duration)
}

// Interval returns the task's minute interval.
// ok is false for malformed tasks.
func (t *Task) Interval() (iv Interval, ok bool) {
	return HoursToInterval(t.Start, t.Duration)
}

// SameDay reports whether the task belongs to the given calendar day.
func (t *Task) SameDay(day time.Time) bool {
	return dateutil.SameDay(t.Day, day)
}

// OverlapsWith returns true if this task overlaps with another task.
// Tasks must be on the same day and have overlapping intervals.
func (t *Task) OverlapsWith(other *Task) bool {
	if other == nil || !t.SameDay(other.Day) {
		return false
	}
	a, ok := t.Interval()
	if !ok {
		return false
	}
	b, ok := other.Interval()
	if !ok {
		return false
	}
	return a.Overlaps(b)
}

// TimeRange formats the task as "HH:MM-HH:MM".
func (t *Task) TimeRange() string {
	iv, ok := t.Interval()
	if !ok {
		return "??:??-??:??"
	}
	return iv.String()
}

// IsFinite reports whether f is neither NaN nor infinite.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
