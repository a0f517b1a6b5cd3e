package ui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/javiermolinar/agenda/internal/dateutil"
	"github.com/javiermolinar/agenda/internal/task"
)

// recordFormat is the encoding of an import or export file.
type recordFormat string

const (
	formatJSON recordFormat = "json"
	formatYAML recordFormat = "yaml"
)

// parseFormat picks the format from the flag, or from the file extension
// when the flag is empty. Anything else is JSON.
func parseFormat(flag, path string) (recordFormat, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "json":
		return formatJSON, nil
	case "yaml", "yml":
		return formatYAML, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q (want json or yaml)", flag)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML, nil
	default:
		return formatJSON, nil
	}
}

func (a *App) importCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import tasks from a JSON or YAML file",
		Long: `Import tasks from a list of task records ("-" reads stdin).

Each JSON record looks like:
  {"task_date": "2025-01-15", "start_time": 9.5, "duration": 1,
   "title": "Standup", "color": "green", "is_priority": false, "completed": false}

YAML files (.yaml, .yml or --format=yaml) use the same keys.

Every task passes the same overlap check as "agenda add", against the
stored tasks and against the other tasks in the file. If any task is
rejected nothing is imported.`,
		Example: `  agenda import tasks.json
  agenda import week.yaml
  agenda export --start=2025-01-01 --end=2025-01-31 | agenda import -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			f, err := parseFormat(format, args[0])
			if err != nil {
				return err
			}

			var r io.Reader
			if args[0] == "-" {
				r = cmd.InOrStdin()
			} else {
				path, err := resolvePath(args[0])
				if err != nil {
					return err
				}
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("opening %s: %w", path, err)
				}
				defer func() { _ = file.Close() }()
				r = file
			}

			tasks, err := decodeTasks(r, f)
			if err != nil {
				return err
			}
			for _, t := range tasks {
				if err := a.window.Validate(t.Start, t.Duration); err != nil {
					return fmt.Errorf("task %q: %w", t.Title, err)
				}
			}

			count, err := a.repo.ImportTasks(context.Background(), tasks)
			if err != nil {
				return fmt.Errorf("importing tasks: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d tasks\n", count)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "File format: json or yaml (default from extension)")
	return cmd
}

func (a *App) exportCmd() *cobra.Command {
	var (
		startDate string
		endDate   string
		output    string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as JSON or YAML",
		Long: `Write the tasks in a date range as a list of task records.

Tasks with an invalid time are exported with null start_time or duration.`,
		Example: `  agenda export
  agenda export --start=2025-01-01 --end=2025-01-31 -o january.json
  agenda export --format=yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ensureRepo(); err != nil {
				return err
			}
			f, err := parseFormat(format, output)
			if err != nil {
				return err
			}

			dateRange, err := dateutil.NewDateRange(startDate, endDate)
			if err != nil {
				return err
			}
			tasks, err := a.repo.ListTasksByDateRange(context.Background(), dateRange.Start, dateRange.End)
			if err != nil {
				return fmt.Errorf("listing tasks: %w", err)
			}

			w := cmd.OutOrStdout()
			if output != "" {
				path, err := resolvePath(output)
				if err != nil {
					return err
				}
				file, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("creating %s: %w", path, err)
				}
				defer func() { _ = file.Close() }()
				w = file
			}
			return encodeTasks(w, tasks, f)
		},
	}

	cmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD, defaults to start date)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().StringVar(&format, "format", "", "Output format: json or yaml (default from extension, else json)")
	return cmd
}

// decodeTasks reads a list of records. IDs in the input are dropped.
func decodeTasks(r io.Reader, f recordFormat) ([]*task.Task, error) {
	var records []task.Record
	var err error
	if f == formatYAML {
		err = yaml.NewDecoder(r).Decode(&records)
	} else {
		err = json.NewDecoder(r).Decode(&records)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding tasks: %w", err)
	}
	tasks := make([]*task.Task, 0, len(records))
	for i, rec := range records {
		t, err := task.FromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		t.ID = 0
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// encodeTasks writes tasks as an indented list of records.
func encodeTasks(w io.Writer, tasks []*task.Task, f recordFormat) error {
	records := make([]task.Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, task.ToRecord(t))
	}
	if f == formatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("encoding tasks: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encoding tasks: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	return absPath, nil
}
