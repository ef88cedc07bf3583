package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/to-do-list-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds the indexes used by task listing and filtering
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		name    string
		columns []string
	}{
		// Default ordering is by status, then id
		{"idx_tasks_status_id", []string{"status", "id"}},
		// Exact-match due_date filter
		{"idx_tasks_due_date", []string{"due_date"}},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			continue
		}

		if err := db.Exec(fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, strings.Join(idx.columns, ", "))).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on tasks(%s)", idx.name, strings.Join(idx.columns, ", "))
	}

	return nil
}
