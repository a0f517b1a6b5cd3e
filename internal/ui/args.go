package ui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/task"
)

// parseDay accepts the same day forms as the TUI: "today", "+1", "friday",
// or an ISO date. Empty means today.
func (a *App) parseDay(s string) (time.Time, error) {
	d, err := dateutil.ParseRelativeDate(s, a.now())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return d, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task ID %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseStart parses a start time flag ("09:30" or "9.5").
func parseStart(s string) (float64, error) {
	h, err := task.ParseHours(s)
	if err != nil {
		return 0, fmt.Errorf("invalid start %q: %w", s, err)
	}
	return h, nil
}

// parseDuration parses a duration flag ("1:30" or "1.5"); empty yields def.
func parseDuration(s string, def float64) (float64, error) {
	if s == "" {
		return def, nil
	}
	h, err := task.ParseHours(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if h <= 0 {
		return 0, fmt.Errorf("%w: duration must be positive", task.ErrInvalidRange)
	}
	return h, nil
}

// slotHours is the free-slot search step in hours.
func (a *App) slotHours() float64 {
	return float64(a.config.Schedule.SlotMinutes) / 60
}
