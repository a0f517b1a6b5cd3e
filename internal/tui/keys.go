package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/tui/commands"
	"github.com/javiermolinar/agenda/internal/tui/input"
)

// KeyMap holds the normal-mode bindings. It implements help.KeyMap.
type KeyMap struct {
	PrevDay   key.Binding
	NextDay   key.Binding
	Today     key.Binding
	Down      key.Binding
	Up        key.Binding
	Select    key.Binding
	ClearSel  key.Binding
	Complete  key.Binding
	Priority  key.Binding
	Delete    key.Binding
	Add       key.Binding
	Copy      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		PrevDay:   key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev day")),
		NextDay:   key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next day")),
		Today:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "next task")),
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "prev task")),
		Select:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
		ClearSel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection")),
		Complete:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
		Priority:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "toggle priority")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Copy:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy agenda")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp is shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.Down, k.Up, k.Select, k.Complete, k.Add, k.Help, k.Quit}
}

// FullHelp is shown after pressing ?.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.Today},
		{k.Down, k.Up, k.Select, k.ClearSel},
		{k.Complete, k.Priority, k.Delete, k.Add},
		{k.Copy, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.log.Debug("key", logx.String("key", msg.String()), logx.Int("mode", int(m.mode)))

	// Global keys (work in all modes)
	if key.Matches(msg, m.keys.ForceQuit) {
		return m, tea.Quit
	}
	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeConfirm:
		return m.handleConfirmKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	// Navigation
	case key.Matches(msg, m.keys.PrevDay):
		return m.gotoDay(m.date.AddDate(0, 0, -1))
	case key.Matches(msg, m.keys.NextDay):
		return m.gotoDay(m.date.AddDate(0, 0, 1))
	case key.Matches(msg, m.keys.Today):
		return m.gotoDay(m.now())
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	// Selection
	case key.Matches(msg, m.keys.Select):
		if id := m.cursorID(); id != 0 {
			if m.selected[id] {
				delete(m.selected, id)
			} else {
				m.selected[id] = true
			}
		}
	case key.Matches(msg, m.keys.ClearSel):
		m.selected = make(map[int64]bool)

	// Mutations act on the selection, or on the cursor task when nothing is selected.
	case key.Matches(msg, m.keys.Complete):
		targets := m.targets()
		if len(targets) == 0 {
			return m, nil
		}
		return m, commands.SetCompleted(m.repo, ids(targets), !allTrue(targets, isCompleted))
	case key.Matches(msg, m.keys.Priority):
		targets := m.targets()
		if len(targets) == 0 {
			return m, nil
		}
		return m, commands.SetPriority(m.repo, ids(targets), !allTrue(targets, isPriority))
	case key.Matches(msg, m.keys.Delete):
		targets := m.targets()
		if len(targets) == 0 {
			return m, nil
		}
		m.pendingDelete = ids(targets)
		m.mode = ModeConfirm
	case key.Matches(msg, m.keys.Add):
		m.mode = ModePrompt
		m.prompt.SetValue("")
		return m, m.prompt.Focus()
	case key.Matches(msg, m.keys.Copy):
		return m, commands.CopyText(m.agendaText())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// handlePromptKeys handles keys while the quick-add prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		q, err := input.ParseQuickAdd(m.prompt.Value())
		if err != nil {
			m.setStatus("Error: " + err.Error())
			return m, nil
		}
		t, err := m.quickAddTask(q)
		if err != nil {
			m.setStatus("Error: " + err.Error())
			return m, nil
		}
		m.closePrompt()
		return m, commands.CreateTask(m.repo, t)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// handleConfirmKeys handles the delete confirmation.
func (m Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.pendingDelete
	m.pendingDelete = nil
	m.mode = ModeNormal
	if msg.String() == "y" || msg.String() == "Y" {
		return m, commands.DeleteTasks(m.repo, pending)
	}
	m.setStatus("Delete cancelled")
	return m, nil
}
