package task

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidTimeFormat is returned when a clock value cannot be parsed.
var ErrInvalidTimeFormat = errors.New("time must be HH:MM or fractional hours (e.g. 9.5)")

// MinutesPerDay is the upper bound of any interval.
const MinutesPerDay = 24 * 60

// Interval is a half-open range [Start, End) in minutes since midnight.
// A task ending at 600 and another starting at 600 do not overlap.
type Interval struct {
	Start int
	End   int
}

// maxMinutes bounds converted minutes so huge finite hours keep their order
// instead of wrapping when cast to int. Floats are exact integers up to 2^53.
const maxMinutes = 1 << 52

// HoursToInterval converts fractional hours to a minute interval.
// Minutes are rounded to the nearest integer so 9.5 becomes 570 exactly.
// Values beyond ±2^52 minutes are clamped.
// ok is false when start or duration is NaN or infinite.
func HoursToInterval(start, duration float64) (iv Interval, ok bool) {
	if !IsFinite(start) || !IsFinite(duration) {
		return Interval{}, false
	}
	return Interval{Start: toMinutes(start), End: toMinutes(start + duration)}, true
}

func toMinutes(hours float64) int {
	m := math.Round(hours * 60)
	// start+duration can overflow to ±Inf; the clamp handles that too.
	return int(max(min(m, maxMinutes), -maxMinutes))
}

// Overlaps returns true if the two intervals intersect.
// Two ranges overlap if: start1 < end2 AND start2 < end1
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Minutes returns the length of the interval.
func (iv Interval) Minutes() int {
	if iv.End <= iv.Start {
		return 0
	}
	return iv.End - iv.Start
}

// String formats the interval as "HH:MM-HH:MM".
func (iv Interval) String() string {
	return MinutesToTime(iv.Start) + "-" + MinutesToTime(iv.End)
}

// OverlapMinutes returns how many minutes two intervals share.
// Returns 0 if there is no overlap.
func OverlapMinutes(a, b Interval) int {
	start := max(a.Start, b.Start)
	end := min(a.End, b.End)
	if end <= start {
		return 0
	}
	return end - start
}

// TimeToMinutes converts "HH:MM" to minutes since midnight.
// Returns 0 for invalid input.
func TimeToMinutes(t string) int {
	if len(t) < 5 {
		return 0
	}
	hours := int(t[0]-'0')*10 + int(t[1]-'0')
	mins := int(t[3]-'0')*10 + int(t[4]-'0')
	return hours*60 + mins
}

// MinutesToTime converts minutes since midnight to "HH:MM" format.
// 24:00 is allowed so a task ending at midnight prints sensibly.
func MinutesToTime(m int) string {
	if m < 0 {
		m = 0
	}
	if m > MinutesPerDay {
		m = MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ClockToHours converts "HH:MM" to fractional hours.
func ClockToHours(t string) float64 {
	return float64(TimeToMinutes(t)) / 60
}

// HoursToClock formats fractional hours as "HH:MM".
func HoursToClock(h float64) string {
	if !IsFinite(h) {
		return "??:??"
	}
	return MinutesToTime(int(math.Round(h * 60)))
}

// ParseHours parses a clock value given either as "HH:MM" or as fractional
// hours ("9.5"). It is used for start times and durations typed by users.
func ParseHours(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidTimeFormat
	}
	if h, m, found := strings.Cut(s, ":"); found {
		hours, err1 := strconv.Atoi(h)
		mins, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || len(m) != 2 || hours < 0 || hours > 24 || mins < 0 || mins > 59 {
			return 0, ErrInvalidTimeFormat
		}
		return float64(hours) + float64(mins)/60, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(f) {
		return 0, ErrInvalidTimeFormat
	}
	return f, nil
}
