package database

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"github.com/vladimiradmaev/farm-helper/internal/config"
	"github.com/vladimiradmaev/farm-helper/internal/database/migrations"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to the configured driver and brings the schema up to date.
func Open(cfg config.DBConfig, logger *slog.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.Path)
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("Database connection established and migrations completed", "driver", cfg.Driver)
	}
	return db, nil
}

// OpenInMemory returns a migrated in-memory SQLite database.
func OpenInMemory() (*gorm.DB, error) {
	return Open(config.DBConfig{Driver: "sqlite", Path: ":memory:"}, nil)
}

// Migrate creates the tables and then applies the bundled SQL migrations.
func Migrate(db *gorm.DB, logger *slog.Logger) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	m, err := migrations.Default(logger)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := m.Run(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
