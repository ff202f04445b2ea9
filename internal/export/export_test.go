package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/daylist/internal/store"
)

var trt = time.FixedZone("TRT", 3*60*60)

func sampleTasks() []store.Task {
	day := time.Date(2025, 1, 2, 9, 0, 0, 0, trt)
	updated := time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC)
	return []store.Task{
		{ID: 1, UID: "u-1", Detail: "Buy milk", Date: day, Completed: true, UpdatedAt: updated},
		{ID: 2, UID: "u-2", Detail: "Call mom", Date: day.Add(8 * time.Hour), UpdatedAt: updated},
		// 22:30 UTC on Jan 1 belongs to Jan 2 in TRT.
		{ID: 3, UID: "u-3", Detail: "Late one", Date: time.Date(2025, 1, 1, 22, 30, 0, 0, time.UTC), UpdatedAt: updated},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.csv")

	if err := ToCSV(sampleTasks(), trt, path); err != nil {
		t.Fatalf("ToCSV: %v", err)
	}
	records := readCSV(t, path)

	// header + 3 data rows
	if len(records) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(records))
	}

	expectedHeader := []string{"ID", "Date", "Detail", "Status", "Updated"}
	for i, h := range expectedHeader {
		if records[0][i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, records[0][i], h)
		}
	}

	row := records[1]
	if row[0] != "1" || row[1] != "2025-01-02" || row[2] != "Buy milk" || row[3] != "done" {
		t.Fatalf("unexpected first row: %v", row)
	}
	if row[4] != "2025-01-02T10:00:00+03:00" {
		t.Fatalf("updated should be in export location, got %q", row[4])
	}
	if records[2][3] != "open" {
		t.Fatalf("second task should be open, got %q", records[2][3])
	}
	if records[3][1] != "2025-01-02" {
		t.Fatalf("date should use export location, got %q", records[3][1])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	if err := ToCSV(nil, trt, path); err != nil {
		t.Fatal(err)
	}
	if records := readCSV(t, path); len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	if err := ToCSV(nil, trt, "/nonexistent/dir/file.csv"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	tasks := []store.Task{
		{ID: 1, Detail: `detail with "quotes" and, commas`, Date: time.Now()},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(tasks, trt, path); err != nil {
		t.Fatal(err)
	}
	records := readCSV(t, path)
	if records[1][2] != `detail with "quotes" and, commas` {
		t.Fatalf("detail mangled: %q", records[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleTasks(), trt, path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result jsonExport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 3 || result.Done != 1 {
		t.Fatalf("count/done = %d/%d, want 3/1", result.Count, result.Done)
	}
	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}

	e := result.Tasks[0]
	if e.ID != 1 || e.UID != "u-1" || e.Detail != "Buy milk" || !e.Completed || e.Status != "done" {
		t.Fatalf("unexpected first task: %+v", e)
	}
	if result.Tasks[2].Date != "2025-01-02" {
		t.Fatalf("date should use export location, got %q", result.Tasks[2].Date)
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, trt, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result jsonExport
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Tasks != nil {
		t.Fatal("tasks should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	if err := ToJSON(nil, trt, "/nonexistent/dir/file.json"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, trt, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed with indentation")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFileName(t *testing.T) {
	got := FileName("/tmp", time.Date(2025, 1, 2, 0, 0, 0, 0, trt), "csv")
	if got != filepath.Join("/tmp", "daylist-2025-01-02.csv") {
		t.Fatalf("FileName = %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	if statusLabel(true) != "done" || statusLabel(false) != "open" {
		t.Fatal("unexpected status labels")
	}
}
