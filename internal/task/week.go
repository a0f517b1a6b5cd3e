package task

import (
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
)

// Week holds 7 days starting from Monday.
type Week struct {
	StartDate time.Time // Monday of the week
	Days      [7]*Day   // Monday (0) through Sunday (6)
}

// NewWeek creates the Week containing date.
func NewWeek(date time.Time) *Week {
	monday, _ := dateutil.WeekRange(date)
	w := &Week{StartDate: monday}
	for i := range w.Days {
		w.Days[i] = NewDay(monday.AddDate(0, 0, i))
	}
	return w
}

// NewWeekFromTasks creates a Week and files each task under its day.
// Tasks outside the week are ignored.
func NewWeekFromTasks(date time.Time, tasks []*Task) *Week {
	w := NewWeek(date)
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if day := w.DayByDate(t.Day); day != nil {
			day.Add(t)
		}
	}
	return w
}

// Day returns the Day for the given weekday (0=Monday, 6=Sunday), or nil.
func (w *Week) Day(weekday int) *Day {
	if weekday < 0 || weekday > 6 {
		return nil
	}
	return w.Days[weekday]
}

// DayByDate returns the Day for the given date, nil if not in this week.
func (w *Week) DayByDate(date time.Time) *Day {
	for _, day := range w.Days {
		if dateutil.SameDay(day.Date, date) {
			return day
		}
	}
	return nil
}

// AllTasks returns all tasks across all days in date and start order.
func (w *Week) AllTasks() []*Task {
	var result []*Task
	for _, day := range w.Days {
		result = append(result, day.Tasks()...)
	}
	return result
}

// EndDate returns the Sunday of the week.
func (w *Week) EndDate() time.Time {
	return w.StartDate.AddDate(0, 0, 6)
}

// WeekStats holds aggregated statistics for the week.
type WeekStats struct {
	DayStats [7]DayStats
	Totals   DayStats // sums over all seven days
}

// CompletedPercent returns the share of the week's tasks marked completed.
func (s WeekStats) CompletedPercent() int {
	return s.Totals.CompletedPercent()
}

// BusiestDay returns the weekday (0=Monday) with the most scheduled minutes,
// or -1 for an empty week.
func (s WeekStats) BusiestDay() (weekday int, minutes int) {
	weekday = -1
	for i, ds := range s.DayStats {
		if ds.ScheduledMins > minutes {
			minutes = ds.ScheduledMins
			weekday = i
		}
	}
	return weekday, minutes
}

// Stats calculates statistics for the week.
func (w *Week) Stats() WeekStats {
	var stats WeekStats
	for i, day := range w.Days {
		ds := day.Stats()
		stats.DayStats[i] = ds
		stats.Totals.Total += ds.Total
		stats.Totals.Completed += ds.Completed
		stats.Totals.Priority += ds.Priority
		stats.Totals.Malformed += ds.Malformed
		stats.Totals.ScheduledMins += ds.ScheduledMins
		stats.Totals.CompletedMins += ds.CompletedMins
	}
	return stats
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// WeekdayName returns the name of the weekday (0=Monday).
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday > 6 {
		return ""
	}
	return weekdayNames[weekday]
}

// WeekdayShortName returns the three-letter name of the weekday (0=Monday).
func WeekdayShortName(weekday int) string {
	if n := WeekdayName(weekday); n != "" {
		return n[:3]
	}
	return ""
}
