// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/agenda/internal/conflict"
	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/logx"
	"github.com/javiermolinar/agenda/internal/scheduler"
	"github.com/javiermolinar/agenda/internal/task"
)

// SQLite implements task.Repository using SQLite.
//
// Every write runs the conflict check and the insert or update inside one
// transaction while holding mu, so two concurrent writers can never both
// pass the check for overlapping placements.
type SQLite struct {
	db     *sql.DB
	mu     sync.Mutex
	log    logx.Logger
	window *scheduler.Window
}

// Option configures a SQLite store.
type Option func(*SQLite)

// WithLogger sets the logger used for data-quality warnings.
func WithLogger(l logx.Logger) Option {
	return func(s *SQLite) { s.log = l.With(logx.String("component", "db")) }
}

// WithWindow makes every write also check the visible window.
func WithWindow(w scheduler.Window) Option {
	return func(s *SQLite) { s.window = &w }
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectColumns = `id, title, task_date, start_time, duration, color, is_priority, completed, created_at`

// New creates a new SQLite repository and runs migrations.
func New(path string, opts ...Option) (*SQLite, error) {
	dsn := path + "?_pragma=busy_timeout(5000)"
	if path == ":memory:" {
		dsn = path
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps :memory: databases shared and avoids
	// SQLITE_BUSY between our own readers and writers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db, log: logx.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// validate runs the field checks and, when configured, the window check.
func (s *SQLite) validate(t *task.Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if s.window != nil {
		return s.window.Validate(t.Start, t.Duration)
	}
	return nil
}

// CreateTask adds a new task to the repository.
// Returns task.ErrConflict if the task overlaps an existing task on the same day.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	if err := s.validate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.checkConflictTx(ctx, tx, conflict.Candidate{Day: t.Day, Start: t.Start, Duration: t.Duration}); err != nil {
		return err
	}
	if err := insertTask(ctx, tx, t); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil, nil when it does not exist.
func (s *SQLite) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	return s.getTask(ctx, s.db, id)
}

func (s *SQLite) getTask(ctx context.Context, q querier, id int64) (*task.Task, error) {
	query := `SELECT ` + selectColumns + ` FROM tasks WHERE id = ?`

	t, err := s.scanTask(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// UpdateTask replaces a task's day, times and metadata in place.
// The task never conflicts with its own previous placement.
func (s *SQLite) UpdateTask(ctx context.Context, t *task.Task) error {
	if err := s.validate(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := s.getTask(ctx, tx, t.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %d", task.ErrTaskNotFound, t.ID)
	}

	if err := s.checkConflictTx(ctx, tx, conflict.ForTask(t)); err != nil {
		return err
	}

	query := `
		UPDATE tasks
		SET title = ?, task_date = ?, start_time = ?, duration = ?, color = ?,
		    is_priority = ?, completed = ?
		WHERE id = ?
	`
	if _, err := tx.ExecContext(ctx, query,
		strings.TrimSpace(t.Title),
		dateutil.FormatDate(t.Day),
		t.Start,
		t.Duration,
		string(t.Color),
		t.IsPriority,
		t.IsCompleted,
		t.ID,
	); err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteTask removes a task.
func (s *SQLite) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireRow(result, id)
}

// SetCompleted marks a task as completed or not.
func (s *SQLite) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return s.setFlag(ctx, "completed", id, completed)
}

// SetPriority marks a task as priority or not.
func (s *SQLite) SetPriority(ctx context.Context, id int64, priority bool) error {
	return s.setFlag(ctx, "is_priority", id, priority)
}

// setFlag updates one boolean column. column is never user input.
func (s *SQLite) setFlag(ctx context.Context, column string, id int64, v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+column+` = ? WHERE id = ?`, v, id)
	if err != nil {
		return fmt.Errorf("setting %s: %w", column, err)
	}
	s.log.Debug("flag set", logx.String("column", column), logx.Int64("id", id), logx.Bool("value", v))
	return requireRow(result, id)
}

func requireRow(result sql.Result, id int64) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %d", task.ErrTaskNotFound, id)
	}
	return nil
}

// ListTasksByDay returns all tasks for a single day, malformed ones included.
func (s *SQLite) ListTasksByDay(ctx context.Context, day time.Time) ([]*task.Task, error) {
	return s.listTasks(ctx, s.db, day, day)
}

// ListTasksByDateRange returns all tasks within the date range (inclusive).
func (s *SQLite) ListTasksByDateRange(ctx context.Context, start, end time.Time) ([]*task.Task, error) {
	return s.listTasks(ctx, s.db, start, end)
}

func (s *SQLite) listTasks(ctx context.Context, q querier, start, end time.Time) ([]*task.Task, error) {
	query := `SELECT ` + selectColumns + `
		FROM tasks
		WHERE task_date >= ? AND task_date <= ?
		ORDER BY task_date, start_time IS NULL, start_time, id
	`

	rows, err := q.QueryContext(ctx, query, dateutil.FormatDate(start), dateutil.FormatDate(end))
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := s.scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}

	return tasks, nil
}

// ImportTasks adds multiple tasks in one transaction. The batch is checked
// against itself and against stored tasks; any conflict aborts the whole
// import. Returns the number of tasks inserted.
func (s *SQLite) ImportTasks(ctx context.Context, tasks []*task.Task) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	for _, t := range tasks {
		if err := s.validate(t); err != nil {
			return 0, fmt.Errorf("task %q: %w", t.Title, err)
		}
	}
	if err := conflict.Batch(tasks); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range tasks {
		if err := s.checkConflictTx(ctx, tx, conflict.Candidate{Day: t.Day, Start: t.Start, Duration: t.Duration}); err != nil {
			return 0, err
		}
	}
	for _, t := range tasks {
		if err := insertTask(ctx, tx, t); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	s.log.Debug("imported tasks", logx.Int("count", len(tasks)))
	return len(tasks), nil
}

// checkConflictTx loads the candidate's day inside tx and runs the
// conflict detector against it.
func (s *SQLite) checkConflictTx(ctx context.Context, tx *sql.Tx, c conflict.Candidate) error {
	existing, err := s.listTasks(ctx, tx, c.Day, c.Day)
	if err != nil {
		return err
	}
	if err := conflict.Check(existing, c); err != nil {
		s.log.Debug("write rejected",
			logx.String("day", dateutil.FormatDate(c.Day)),
			logx.Float64("start", c.Start),
			logx.Float64("duration", c.Duration),
			logx.Int64("exclude_id", c.ExcludeID),
			logx.Err(err),
		)
		return err
	}
	return nil
}

func insertTask(ctx context.Context, tx *sql.Tx, t *task.Task) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO tasks (
			title, task_date, start_time, duration, color, is_priority, completed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		strings.TrimSpace(t.Title),
		dateutil.FormatDate(t.Day),
		t.Start,
		t.Duration,
		string(t.Color),
		t.IsPriority,
		t.IsCompleted,
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task %q: %w", t.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	t.ID = id
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanTask reads one row. NULL start or duration columns become NaN and the
// record is logged as malformed rather than dropped.
func (s *SQLite) scanTask(row rowScanner) (*task.Task, error) {
	var (
		t         task.Task
		taskDate  string
		start     sql.NullFloat64
		duration  sql.NullFloat64
		color     string
		createdAt string
	)

	if err := row.Scan(
		&t.ID,
		&t.Title,
		&taskDate,
		&start,
		&duration,
		&color,
		&t.IsPriority,
		&t.IsCompleted,
		&createdAt,
	); err != nil {
		return nil, err
	}

	var err error
	t.Day, err = parseDate(taskDate)
	if err != nil {
		return nil, fmt.Errorf("parsing task date: %w", err)
	}

	t.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	t.Color = task.ColorTag(color)
	t.Start = math.NaN()
	t.Duration = math.NaN()
	if start.Valid {
		t.Start = start.Float64
	}
	if duration.Valid {
		t.Duration = duration.Float64
	}

	if t.Malformed() {
		s.log.Warn("malformed task record",
			logx.Int64("id", t.ID),
			logx.String("day", taskDate),
			logx.Err(task.ErrMalformedRecord),
		)
	}

	return &t, nil
}

// parseDate parses a date string in various formats SQLite might return.
// Date-only values are parsed in the local timezone so they compare equal
// to dates derived from time.Now().
func parseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateutil.ISODate, s, time.Local); err == nil {
		return t, nil
	}

	// "2006-01-02T00:00:00Z" is a date-only value, still local midnight.
	if len(s) == 20 && s[10] == 'T' && s[19] == 'Z' {
		if t, err := time.ParseInLocation(dateutil.ISODate, s[:10], time.Local); err == nil {
			return t, nil
		}
	}

	formats := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return dateutil.TruncateToDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}
