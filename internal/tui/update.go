package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.prompt.Width = max(msg.Width-len(m.prompt.Prompt)-1, 10)
		return m, nil

	case commands.DayLoadedMsg:
		// A late load for a day we already left is dropped.
		if !dateutil.SameDay(msg.Date, m.date) {
			return m, nil
		}
		m.err = nil
		m.setTasks(msg.Tasks)
		return m, nil

	case commands.MutatedMsg:
		m.setStatus(msg.Status)
		m.loading = true
		return m, commands.LoadDay(m.repo, m.date)

	case commands.StoreChangedMsg:
		m.log.Debug("database changed on disk, reloading")
		m.loading = true
		cmds := []tea.Cmd{commands.LoadDay(m.repo, m.date)}
		if m.watcher != nil {
			cmds = append(cmds, commands.WatchStore(m.watcher, m.dbPath))
		}
		return m, tea.Batch(cmds...)

	case commands.WatchErrMsg:
		m.log.Warn("database watcher error", logx.Err(msg.Err))
		return m, commands.WatchStore(m.watcher, m.dbPath)

	case commands.StatusMsgCmd:
		m.setStatus(msg.Msg)
		return m, nil

	case commands.ErrMsg:
		failedLoad := m.loading
		m.err = msg.Err
		m.loading = false
		m.log.Error("tui command failed", logx.Err(msg.Err))
		m.setStatus("Error: " + msg.Err.Error())
		if failedLoad {
			return m, nil
		}
		// A batch may have stopped halfway; reload so the view matches the store.
		m.loading = true
		return m, commands.LoadDay(m.repo, m.date)
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}
