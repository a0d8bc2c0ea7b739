package db

import (
	"fmt"

	"github.com/zulandar/evodex/internal/models"
	"gorm.io/gorm"
)

// AllModels returns every GORM model evodex persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Record{},
		&models.Relation{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropTables removes all evodex tables, relations first.
func DropTables(db *gorm.DB) error {
	if err := db.Migrator().DropTable(&models.Relation{}, &models.Record{}); err != nil {
		return fmt.Errorf("db: drop tables: %w", err)
	}
	return nil
}
