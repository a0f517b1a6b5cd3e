// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/agenda/internal/task"
)

// DayLoadedMsg is sent when a day's tasks are loaded.
type DayLoadedMsg struct {
	Date  time.Time
	Tasks []*task.Task
}

// MutatedMsg is sent after a successful write; the day is reloaded.
type MutatedMsg struct {
	Status string
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// LoadDay loads all tasks of one day, malformed ones included.
func LoadDay(repo task.Repository, date time.Time) tea.Cmd {
	return func() tea.Msg {
		tasks, err := repo.ListTasksByDay(context.Background(), date)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading %s: %w", date.Format("2006-01-02"), err)}
		}
		return DayLoadedMsg{Date: date, Tasks: tasks}
	}
}

// CreateTask stores a new task through the conflict gate.
func CreateTask(repo task.Repository, t *task.Task) tea.Cmd {
	return func() tea.Msg {
		if err := repo.CreateTask(context.Background(), t); err != nil {
			return ErrMsg{Err: err}
		}
		return MutatedMsg{Status: fmt.Sprintf("Added #%d %s %s", t.ID, t.TimeRange(), t.Title)}
	}
}

// SetCompleted marks every task in ids as completed or not.
func SetCompleted(repo task.Repository, ids []int64, completed bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		for _, id := range ids {
			if err := repo.SetCompleted(ctx, id, completed); err != nil {
				return ErrMsg{Err: err}
			}
		}
		verb := "Completed"
		if !completed {
			verb = "Reopened"
		}
		return MutatedMsg{Status: fmt.Sprintf("%s %s", verb, plural(len(ids)))}
	}
}

// SetPriority marks every task in ids as priority or not.
func SetPriority(repo task.Repository, ids []int64, priority bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		for _, id := range ids {
			if err := repo.SetPriority(ctx, id, priority); err != nil {
				return ErrMsg{Err: err}
			}
		}
		verb := "Prioritized"
		if !priority {
			verb = "Deprioritized"
		}
		return MutatedMsg{Status: fmt.Sprintf("%s %s", verb, plural(len(ids)))}
	}
}

// DeleteTasks removes every task in ids.
func DeleteTasks(repo task.Repository, ids []int64) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		for _, id := range ids {
			if err := repo.DeleteTask(ctx, id); err != nil {
				return ErrMsg{Err: err}
			}
		}
		return MutatedMsg{Status: "Deleted " + plural(len(ids))}
	}
}

// CopyText puts text on the system clipboard.
func CopyText(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return StatusMsgCmd{Msg: "Copied agenda to clipboard"}
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}
