package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/daylist/internal/store"
)

const dayLayout = "2006-01-02"

// FileName returns the export path for day's tasks in dir, e.g. daylist-2025-01-02.csv.
func FileName(dir string, day time.Time, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("daylist-%s.%s", day.Format(dayLayout), ext))
}

func ToCSV(tasks []store.Task, loc *time.Location, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	// Header
	if err := w.Write([]string{"ID", "Date", "Detail", "Status", "Updated"}); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			fmt.Sprintf("%d", t.ID),
			t.Date.In(loc).Format(dayLayout),
			t.Detail,
			statusLabel(t.Completed),
			t.UpdatedAt.In(loc).Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func statusLabel(completed bool) string {
	if completed {
		return "done"
	}
	return "open"
}
