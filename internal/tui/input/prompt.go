// Package input parses what users type into the TUI prompt.
package input

import (
	"errors"
	"strings"

	"github.com/javiermolinar/agenda/internal/task"
)

// ErrEmptyInput is returned when the prompt holds no title.
var ErrEmptyInput = errors.New("type a title, optionally followed by a start time and +duration")

// QuickAdd is a parsed "title [start] [+duration]" line.
// Without a start the task goes into the first free slot.
type QuickAdd struct {
	Title       string
	Start       float64
	HasStart    bool
	Duration    float64
	HasDuration bool
}

// ParseQuickAdd parses a prompt line such as:
//
//	Write docs
//	Write docs 14:00
//	Write docs 14:00 +1:30
//	Write docs +0:45
//
// The start and duration are only taken from the trailing words; anything
// before them is the title.
func ParseQuickAdd(s string) (QuickAdd, error) {
	words := strings.Fields(s)
	var q QuickAdd

	if n := len(words); n > 0 && strings.HasPrefix(words[n-1], "+") {
		d, err := task.ParseHours(strings.TrimPrefix(words[n-1], "+"))
		if err != nil {
			return QuickAdd{}, err
		}
		if d <= 0 {
			return QuickAdd{}, task.ErrInvalidRange
		}
		q.Duration, q.HasDuration = d, true
		words = words[:n-1]
	}

	if n := len(words); n > 1 && looksLikeClock(words[n-1]) {
		h, err := task.ParseHours(words[n-1])
		if err != nil {
			return QuickAdd{}, err
		}
		q.Start, q.HasStart = h, true
		words = words[:n-1]
	}

	q.Title = strings.Join(words, " ")
	if q.Title == "" {
		return QuickAdd{}, ErrEmptyInput
	}
	return q, nil
}

// looksLikeClock reports whether w is written as HH:MM, so a title ending
// in a plain number ("Sprint 12") keeps its number.
func looksLikeClock(w string) bool {
	h, m, ok := strings.Cut(w, ":")
	return ok && h != "" && m != "" && isDigits(h) && isDigits(m)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
