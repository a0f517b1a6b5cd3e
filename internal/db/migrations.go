package db

import (
	"context"
	"fmt"
)

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// migrate runs database migrations.
func (s *SQLite) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	// start_time and duration are nullable so that records written by other
	// clients without a placement still load; they surface as malformed.
	query := `
		CREATE TABLE IF NOT EXISTS tasks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			title       TEXT NOT NULL,
			task_date   TEXT NOT NULL,
			start_time  REAL,
			duration    REAL,
			color       TEXT NOT NULL DEFAULT 'orange' CHECK(color IN ('orange', 'green', 'yellow-green')),
			is_priority INTEGER NOT NULL DEFAULT 0,
			completed   INTEGER NOT NULL DEFAULT 0,
			created_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_tasks_date ON tasks(task_date, start_time);
	`

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating tasks table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}

	return nil
}
