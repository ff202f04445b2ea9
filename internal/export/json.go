package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/daylist/internal/store"
)

type jsonExport struct {
	ExportedAt string     `json:"exported_at"`
	Count      int        `json:"count"`
	Done       int        `json:"done"`
	Tasks      []jsonTask `json:"tasks"`
}

type jsonTask struct {
	ID        int64  `json:"id"`
	UID       string `json:"uid"`
	Date      string `json:"date"`
	Detail    string `json:"detail"`
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}

func ToJSON(tasks []store.Task, loc *time.Location, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(tasks),
	}

	for _, t := range tasks {
		if t.Completed {
			export.Done++
		}
		export.Tasks = append(export.Tasks, jsonTask{
			ID:        t.ID,
			UID:       t.UID,
			Date:      t.Date.In(loc).Format(dayLayout),
			Detail:    t.Detail,
			Completed: t.Completed,
			Status:    statusLabel(t.Completed),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
