package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/agenda/internal/config"
	"github.com/javiermolinar/agenda/internal/db"
	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
	"github.com/javiermolinar/agenda/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	repo   task.Repository
	config *config.Config
	log    logx.Logger
	window scheduler.Window
	root   *cobra.Command
	now    func() time.Time

	ownsRepo bool // repo was opened by ensureRepo and must be closed
	ownsLog  bool
	debug    bool
}

// Option configures an App.
type Option func(*App)

// WithLogger makes the App use l instead of building one from the config.
func WithLogger(l logx.Logger) Option {
	return func(a *App) {
		a.log = l
		a.ownsLog = false
	}
}

// WithClock overrides the wall clock used for "today" and the now marker.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// NewApp creates a new CLI application with the given repository and config.
// A nil repo is opened lazily from cfg.Storage.DBPath on first use.
func NewApp(repo task.Repository, cfg *config.Config, opts ...Option) *App {
	a := &App{
		repo:    repo,
		config:  cfg,
		log:     logx.Nop(),
		window:  scheduler.DefaultWindow,
		now:     time.Now,
		ownsLog: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "agenda",
		Short: "A day planner for time-boxed tasks",
		Long: `Agenda keeps a day of time-boxed tasks.

Tasks on the same day never overlap: every write is checked against the
day's existing tasks. The day view places tasks that share time side by
side so each one stays readable.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return a.setup() },
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			return tui.Run(a.repo, a.config, a.log)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.addCmd())
	a.root.AddCommand(a.editCmd())
	a.root.AddCommand(a.deleteCmd())
	a.root.AddCommand(a.doneCmd())
	a.root.AddCommand(a.priorityCmd())
	a.root.AddCommand(a.showCmd())
	a.root.AddCommand(a.listCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.checkCmd())
	a.root.AddCommand(a.nextCmd())
	a.root.AddCommand(a.importCmd())
	a.root.AddCommand(a.exportCmd())

	return a
}

// setup builds the logger and the visible window from the config.
func (a *App) setup() error {
	w, err := scheduler.NewWindow(a.config.Schedule.DayStart, a.config.Schedule.DayEnd)
	if err != nil {
		return fmt.Errorf("schedule window: %w", err)
	}
	a.window = w

	if !a.ownsLog {
		return nil
	}
	level := a.config.Log.Level
	if a.debug {
		level = "debug"
	}
	l, err := logx.New(logx.Config{Level: level, File: a.config.Log.File})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	_ = a.log.Close()
	a.log = l.With(logx.String("component", "cli"))
	return nil
}

// ensureRepo opens the configured database if no repository was injected.
func (a *App) ensureRepo() error {
	if a.repo != nil {
		return nil
	}
	repo, err := db.New(a.config.Storage.DBPath, db.WithLogger(a.log), db.WithWindow(a.window))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	a.repo = repo
	a.ownsRepo = true
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "agenda %s (commit: %s)\n", Version, Commit)
		},
	}
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the repository and log sink opened by the App.
func (a *App) Close() error {
	var errs []error
	if a.ownsRepo && a.repo != nil {
		errs = append(errs, a.repo.Close())
	}
	if a.ownsLog {
		errs = append(errs, a.log.Close())
	}
	return errors.Join(errs...)
}

