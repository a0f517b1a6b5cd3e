// Package tui provides the interactive day view.
package tui

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/javiermolinar/agenda/internal/config"
	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/layout"
	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
	"github.com/javiermolinar/agenda/internal/theme"
	"github.com/javiermolinar/agenda/internal/tui/commands"
	"github.com/javiermolinar/agenda/internal/tui/input"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt      // quick-add line is open
	ModeConfirm     // waiting for y/n on delete
)

// statusTTL is how long a status message stays in the footer.
const statusTTL = 4 * time.Second

// Model is the main TUI model.
type Model struct {
	// Dependencies
	repo   task.Repository
	config *config.Config
	log    logx.Logger
	window scheduler.Window
	theme  *theme.Theme
	now    func() time.Time

	watcher *fsnotify.Watcher // nil when not following outside writes
	dbPath  string

	keys   KeyMap
	help   help.Model
	prompt textinput.Model

	// State
	date     time.Time
	tasks    []*task.Task
	order    []int64 // task IDs in layout order, malformed last
	cursor   int
	selected map[int64]bool
	mode     Mode
	loading  bool

	pendingDelete []int64

	// Terminal size
	width  int
	height int

	statusMsg  string
	statusTime time.Time // when statusMsg expires
	err        error
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithLogger sets the logger used for key and error tracing.
func WithLogger(l logx.Logger) ModelOption {
	return func(m *Model) { m.log = l }
}

// WithClock overrides the clock, mostly for tests.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithWatcher reloads the day whenever dbPath changes on disk.
func WithWatcher(w *fsnotify.Watcher, dbPath string) ModelOption {
	return func(m *Model) { m.watcher, m.dbPath = w, dbPath }
}

// WithDate opens the view on the given day instead of today.
func WithDate(d time.Time) ModelOption {
	return func(m *Model) { m.date = dateutil.TruncateToDay(d) }
}

// New creates a new TUI model.
func New(repo task.Repository, cfg *config.Config, opts ...ModelOption) Model {
	ti := textinput.New()
	ti.Placeholder = "Title [HH:MM] [+duration]"
	ti.Prompt = "add> "
	ti.CharLimit = 256

	m := Model{
		repo:     repo,
		config:   cfg,
		log:      logx.Nop(),
		window:   scheduler.DefaultWindow,
		now:      time.Now,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		prompt:   ti,
		selected: make(map[int64]bool),
		loading:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.date.IsZero() {
		m.date = dateutil.TruncateToDay(m.now())
	}

	if w, err := scheduler.NewWindow(cfg.Schedule.DayStart, cfg.Schedule.DayEnd); err == nil {
		m.window = w
	} else {
		m.log.Warn("invalid schedule window, using default", logx.Err(err))
	}

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		m.log.Warn("unknown theme, using default", logx.String("theme", cfg.UI.Theme), logx.Err(err))
		t = theme.MustLoad(theme.DefaultName)
	}
	m.theme = t
	return m
}

// Init loads the initial day.
func (m Model) Init() tea.Cmd {
	if m.watcher != nil {
		return tea.Batch(commands.LoadDay(m.repo, m.date), commands.WatchStore(m.watcher, m.dbPath))
	}
	return commands.LoadDay(m.repo, m.date)
}

// Run starts the TUI.
func Run(repo task.Repository, cfg *config.Config, log logx.Logger) error {
	opts := []ModelOption{WithLogger(log)}
	if path := cfg.Storage.DBPath; path != "" && path != ":memory:" {
		w, err := commands.NewStoreWatcher(path)
		if err != nil {
			log.Warn("not following database changes", logx.String("path", path), logx.Err(err))
		} else {
			defer func() { _ = w.Close() }()
			opts = append(opts, WithWatcher(w, path))
		}
	}

	m := New(repo, cfg, opts...)
	log.Debug("starting tui", logx.String("date", m.date.Format("2006-01-02")))

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// gotoDay switches the view to another day and reloads it.
func (m Model) gotoDay(d time.Time) (tea.Model, tea.Cmd) {
	m.date = dateutil.TruncateToDay(d)
	m.loading = true
	m.selected = make(map[int64]bool)
	return m, commands.LoadDay(m.repo, m.date)
}

// setTasks replaces the loaded tasks, keeping the cursor on the same task
// when it still exists.
func (m *Model) setTasks(tasks []*task.Task) {
	current := m.cursorID()
	m.tasks = tasks
	m.loading = false

	res := layout.Compute(tasks)
	m.order = make([]int64, 0, len(tasks))
	for _, cluster := range res.Clusters {
		for _, t := range cluster {
			m.order = append(m.order, t.ID)
		}
	}
	for _, t := range res.Excluded {
		m.order = append(m.order, t.ID)
	}

	present := make(map[int64]bool, len(m.order))
	for i, id := range m.order {
		present[id] = true
		if id == current {
			m.cursor = i
		}
	}
	for id := range m.selected {
		if !present[id] {
			delete(m.selected, id)
		}
	}
	m.cursor = min(m.cursor, max(len(m.order)-1, 0))
}

func (m *Model) moveCursor(delta int) {
	if len(m.order) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+delta, 0), len(m.order)-1)
}

// cursorID returns the task under the cursor, or 0.
func (m Model) cursorID() int64 {
	if m.cursor < 0 || m.cursor >= len(m.order) {
		return 0
	}
	return m.order[m.cursor]
}

func (m Model) findTask(id int64) *task.Task {
	for _, t := range m.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// targets returns the selected tasks in layout order, or the cursor task
// when nothing is selected.
func (m Model) targets() []*task.Task {
	var out []*task.Task
	if len(m.selected) > 0 {
		for _, id := range m.order {
			if m.selected[id] {
				if t := m.findTask(id); t != nil {
					out = append(out, t)
				}
			}
		}
		return out
	}
	if t := m.findTask(m.cursorID()); t != nil {
		out = append(out, t)
	}
	return out
}

func ids(tasks []*task.Task) []int64 {
	out := make([]int64, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func allTrue(tasks []*task.Task, pred func(*task.Task) bool) bool {
	for _, t := range tasks {
		if !pred(t) {
			return false
		}
	}
	return true
}

func isCompleted(t *task.Task) bool { return t.IsCompleted }
func isPriority(t *task.Task) bool  { return t.IsPriority }

// quickAddTask builds the task for a parsed prompt line on the current day.
func (m Model) quickAddTask(q input.QuickAdd) (*task.Task, error) {
	duration := q.Duration
	if !q.HasDuration {
		duration = m.config.Schedule.DefaultDuration
		if duration <= 0 {
			duration = 1
		}
	}

	start := q.Start
	if !q.HasStart {
		from := m.window.StartFor(m.date, m.now())
		s, ok := m.window.NextFreeFrom(m.tasks, m.date, duration, m.slotHours(), from)
		if !ok {
			return nil, fmt.Errorf("no free %d-minute slot on %s", int(math.Round(duration*60)), m.date.Format("2006-01-02"))
		}
		start = s
	}

	if err := m.window.Validate(start, duration); err != nil {
		return nil, err
	}
	return task.New(q.Title, m.date.Format("2006-01-02"), start, duration, "")
}

func (m Model) slotHours() float64 {
	if m.config.Schedule.SlotMinutes <= 0 {
		return 0.5
	}
	return float64(m.config.Schedule.SlotMinutes) / 60
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.SetValue("")
}

func (m *Model) setStatus(s string) {
	m.statusMsg = s
	m.statusTime = m.now().Add(statusTTL)
}
