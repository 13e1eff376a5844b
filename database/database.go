package database

import (
	"fmt"
	"log/slog"
	"time"

	"artist-media/internal/domain/catalog"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// slogWriter routes gorm's logger output into slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.logger.Debug(fmt.Sprintf(format, args...), "component", "gorm")
}

// Open connects through dialector with gorm logging routed to slog.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLogger := logger.New(slogWriter{logger: slog.Default()}, logger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

// Migrate auto-migrates all domain models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(catalog.Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// InitDB connects to Postgres at dsn and sets DB. migrate is false for
// management commands, which only read rows.
func InitDB(dsn string, migrate bool) error {
	if dsn == "" {
		return fmt.Errorf("DB_URL not set")
	}

	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return err
	}

	if migrate {
		if err := Migrate(db); err != nil {
			return err
		}
	}

	DB = db
	slog.Info("Connected to database.", "migrated", migrate)
	return nil
}
