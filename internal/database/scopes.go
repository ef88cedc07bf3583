package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/to-do-list-api/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// OrderByStatus applies the default task listing order
func OrderByStatus(db *gorm.DB) *gorm.DB {
	return db.Order("tasks.status ASC").Order("tasks.id ASC")
}
