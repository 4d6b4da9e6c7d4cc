package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/tallyops/splitwise-agent/internal/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the SQLite database and runs migrations. It must succeed
// before the server starts taking traffic.
func InitDB(dbPath string) (*gorm.DB, error) {
	database, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", dbPath, err)
	}

	if err := database.AutoMigrate(&models.Credential{}); err != nil {
		return nil, fmt.Errorf("migrate credentials table: %w", err)
	}

	return database, nil
}

// Close releases the underlying SQLite connection pool.
func Close(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
