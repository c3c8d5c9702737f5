package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDB connects to PostgreSQL when a postgres URL is configured and to a
// local SQLite file otherwise, then migrates the reports table.
func OpenDB(cfg config.DBConfig) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	var dialector gorm.Dialector
	if isPostgresURL(cfg.URL) {
		dialector = postgres.Open(cfg.URL)
	} else {
		dbPath := cfg.Path
		if dbPath == "" {
			dbPath = config.DefaultDatabasePath
		}
		if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
		dialector = sqlite.Open(dbPath)
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}

	logger.Log.Infof("Database ready (%s)", db.Dialector.Name())
	return db, nil
}

// Migrate creates or updates the reports table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Report{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}
