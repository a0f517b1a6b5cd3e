package task

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/javiermolinar/agenda/internal/dateutil"
)

func TestNew(t *testing.T) {
	t.Run("valid task", func(t *testing.T) {
		task, err := New("Write tests", "2025-01-15", 9.5, 1, "green")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if task.Title != "Write tests" {
			t.Errorf("got title %q, want %q", task.Title, "Write tests")
		}
		if task.Color != ColorGreen {
			t.Errorf("got color %q, want %q", task.Color, ColorGreen)
		}
		if task.Start != 9.5 || task.Duration != 1 {
			t.Errorf("got %v+%v, want 9.5+1", task.Start, task.Duration)
		}
		if task.TimeRange() != "09:30-10:30" {
			t.Errorf("got range %q, want 09:30-10:30", task.TimeRange())
		}
		if task.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("empty date defaults to today", func(t *testing.T) {
		task, err := New("Write tests", "", 9, 1, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		today := dateutil.TruncateToDay(time.Now())
		if !task.Day.Equal(today) {
			t.Errorf("got date %v, want %v", task.Day, today)
		}
		if task.Color != DefaultColor {
			t.Errorf("got color %q, want default %q", task.Color, DefaultColor)
		}
	})
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		date     string
		start    float64
		duration float64
		color    string
		wantErr  error
	}{
		{name: "empty title", title: "  ", start: 9, duration: 1, wantErr: ErrEmptyTitle},
		{name: "invalid date", title: "T", date: "01-15-2025", start: 9, duration: 1, wantErr: dateutil.ErrInvalidDateFormat},
		{name: "invalid color", title: "T", start: 9, duration: 1, color: "purple", wantErr: ErrInvalidColor},
		{name: "nan start", title: "T", start: math.NaN(), duration: 1, wantErr: ErrInvalidRange},
		{name: "infinite duration", title: "T", start: 9, duration: math.Inf(1), wantErr: ErrInvalidRange},
		{name: "zero duration", title: "T", start: 9, duration: 0, wantErr: ErrInvalidRange},
		{name: "negative duration", title: "T", start: 9, duration: -1, wantErr: ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.title, tt.date, tt.start, tt.duration, tt.color)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got error %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTask_OverlapsWith(t *testing.T) {
	day := time.Date(2025, 1, 15, 0, 0, 0, 0, time.Local)
	base := &Task{ID: 1, Day: day, Start: 9, Duration: 1}

	tests := []struct {
		name  string
		other *Task
		want  bool
	}{
		{name: "nil", other: nil, want: false},
		{name: "overlapping same day", other: &Task{ID: 2, Day: day, Start: 9.5, Duration: 1}, want: true},
		{name: "touching same day", other: &Task{ID: 2, Day: day, Start: 10, Duration: 1}, want: false},
		{name: "overlapping other day", other: &Task{ID: 2, Day: day.AddDate(0, 0, 1), Start: 9.5, Duration: 1}, want: false},
		{name: "malformed", other: &Task{ID: 2, Day: day, Start: math.NaN(), Duration: 1}, want: false},
		{name: "same day stored as UTC", other: &Task{ID: 2, Day: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Start: 9, Duration: 2}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.OverlapsWith(tt.other); got != tt.want {
				t.Errorf("OverlapsWith = %v, want %v", got, tt.want)
			}
			if tt.other != nil {
				if got := tt.other.OverlapsWith(base); got != tt.want {
					t.Errorf("reverse OverlapsWith = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTask_Malformed(t *testing.T) {
	if (&Task{Start: 9, Duration: 1}).Malformed() {
		t.Error("finite task reported malformed")
	}
	if !(&Task{Start: math.NaN(), Duration: 1}).Malformed() {
		t.Error("NaN start not reported malformed")
	}
	if got := (&Task{Start: math.NaN(), Duration: 1}).TimeRange(); got != "??:??-??:??" {
		t.Errorf("TimeRange of malformed task = %q", got)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorTag
		wantErr bool
	}{
		{input: "", want: ColorOrange},
		{input: "orange", want: ColorOrange},
		{input: " Green ", want: ColorGreen},
		{input: "yellow-green", want: ColorYellowGreen},
		{input: "blue", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidColor) {
				t.Errorf("ParseColor(%q) error = %v, want ErrInvalidColor", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColor(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}

func TestRecord(t *testing.T) {
	t.Run("decode server shape", func(t *testing.T) {
		raw := `{"id":7,"task_date":"2025-02-03","start_time":9.5,"duration":1,"title":"Standup","color":"green","is_priority":true,"completed":false}`
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		tsk, err := FromRecord(r)
		if err != nil {
			t.Fatalf("FromRecord: %v", err)
		}
		if tsk.ID != 7 || tsk.Start != 9.5 || tsk.Duration != 1 || !tsk.IsPriority || tsk.Color != ColorGreen {
			t.Errorf("unexpected task %+v", tsk)
		}
		if dateutil.FormatDate(tsk.Day) != "2025-02-03" {
			t.Errorf("got day %s", dateutil.FormatDate(tsk.Day))
		}
	})

	t.Run("null start is malformed", func(t *testing.T) {
		raw := `{"task_date":"2025-02-03","start_time":null,"duration":1,"title":"Broken"}`
		var r Record
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		tsk, err := FromRecord(r)
		if err != nil {
			t.Fatalf("FromRecord: %v", err)
		}
		if !tsk.Malformed() {
			t.Error("expected malformed task")
		}
		back := ToRecord(tsk)
		if back.Start != nil {
			t.Errorf("expected null start_time, got %v", *back.Start)
		}
		if back.Duration == nil || *back.Duration != 1 {
			t.Errorf("expected duration 1, got %v", back.Duration)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := FromRecord(Record{Day: "tomorrow", Title: "x"})
		if !errors.Is(err, dateutil.ErrInvalidDateFormat) {
			t.Errorf("got %v, want ErrInvalidDateFormat", err)
		}
	})
}
