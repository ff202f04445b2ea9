package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/daylist/internal/export"
	"github.com/sadopc/daylist/internal/navigator"
	"github.com/sadopc/daylist/internal/store"
)

const dayLayout = "2006-01-02"

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	var listDate string
	var listOpen bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tasks of one day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(listDate, r.loc, time.Now())
			if err != nil {
				return err
			}
			if listOpen {
				from, to := store.DayRange(day, r.loc)
				open := false
				tasks, err := r.store.ListTasks(store.TaskFilter{From: &from, To: &to, Completed: &open})
				if err != nil {
					return err
				}
				printDay(cmd.OutOrStdout(), from, tasks)
				return nil
			}
			nav := navigator.New(r.store, r.loc)
			tasks, err := nav.SetSelectedDate(day)
			if err != nil {
				return err
			}
			printDay(cmd.OutOrStdout(), nav.SelectedDate(), tasks)
			return nil
		},
	}
	listCmd.Flags().StringVarP(&listDate, "date", "d", "", "day to show: YYYY-MM-DD, today, tomorrow or yesterday")
	listCmd.Flags().BoolVar(&listOpen, "open", false, "only show tasks that are not done")

	var addDate string
	addCmd := &cobra.Command{
		Use:   "add <detail>",
		Short: "Add a task",
		Long:  "Add a task. All arguments are joined into the task text.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(addDate, r.loc, time.Now())
			if err != nil {
				return err
			}
			t, err := r.store.CreateTask(strings.Join(args, " "), day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d for %s\n", t.ID, t.Date.Format(dayLayout))
			return nil
		},
	}
	addCmd.Flags().StringVarP(&addDate, "date", "d", "", "day of the task (default today)")

	var undo bool
	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := r.store.SetCompleted(id, !undo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d is %s\n", t.ID, statusWord(t.Completed))
			return nil
		},
	}
	doneCmd.Flags().BoolVar(&undo, "undo", false, "mark the task as open again")

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.store.DeleteTask(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}

	var exportFormat, exportOut, exportDate string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export one day's tasks as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(exportDate, r.loc, time.Now())
			if err != nil {
				return err
			}
			format := strings.ToLower(exportFormat)
			if format != "csv" && format != "json" {
				return fmt.Errorf("unsupported format %q, want csv or json", exportFormat)
			}
			tasks, err := r.store.FetchByDay(day)
			if err != nil {
				return err
			}
			path := exportOut
			if path == "" {
				path = export.FileName(r.cfg.ExportDir, day, format)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			if format == "csv" {
				err = export.ToCSV(tasks, r.loc, path)
			} else {
				err = export.ToJSON(tasks, r.loc, path)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(tasks), path)
			return nil
		},
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv or json")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default: export_dir/daylist-<date>.<format>)")
	exportCmd.Flags().StringVarP(&exportDate, "date", "d", "", "day to export (default today)")

	var weekDate string
	weekCmd := &cobra.Command{
		Use:   "week",
		Short: "Print done/open counts for the week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(weekDate, r.loc, time.Now())
			if err != nil {
				return err
			}
			start := store.ParseWeekday(r.store.SettingOr(store.SettingWeekStart, "monday"))
			days, err := r.store.WeekSummary(day, start)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range days {
				fmt.Fprintf(out, "%s  %2d done  %2d open\n", d.Day.Format("Mon 2006-01-02"), d.Done, d.Open())
			}
			return nil
		},
	}
	weekCmd.Flags().StringVarP(&weekDate, "date", "d", "", "any day in the week (default today)")

	r.cmd.AddCommand(listCmd, addCmd, doneCmd, rmCmd, exportCmd, weekCmd)
}

// parseDay accepts YYYY-MM-DD or one of today, tomorrow, yesterday. Empty means today.
func parseDay(s string, loc *time.Location, now time.Time) (time.Time, error) {
	today := store.StartOfDay(now, loc)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return today, nil
	case "tomorrow":
		return store.AddDays(today, 1, loc), nil
	case "yesterday":
		return store.AddDays(today, -1, loc), nil
	}
	t, err := store.ParseDay(s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

func statusWord(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}

func printDay(w io.Writer, day time.Time, tasks []store.Task) {
	fmt.Fprintln(w, day.Format("Monday, 02 Jan 2006"))
	if len(tasks) == 0 {
		fmt.Fprintln(w, "  no tasks")
		return
	}
	for _, t := range tasks {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  %4d [%s] %s\n", t.ID, mark, t.Detail)
	}
}
