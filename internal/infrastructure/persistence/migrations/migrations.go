// Package migrations embeds the goose SQL migrations and wraps the goose
// commands the CLI exposes.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed *.sql
var embedMigrations embed.FS

func setup(db *gorm.DB) (*sql.DB, error) {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB, nil
}

// Up applies all pending migrations.
func Up(db *gorm.DB) error {
	sqlDB, err := setup(db)
	if err != nil {
		return err
	}
	return goose.Up(sqlDB, ".")
}

// Down rolls back the most recent migration.
func Down(db *gorm.DB) error {
	sqlDB, err := setup(db)
	if err != nil {
		return err
	}
	return goose.Down(sqlDB, ".")
}

// Status prints the migration status.
func Status(db *gorm.DB) error {
	sqlDB, err := setup(db)
	if err != nil {
		return err
	}
	return goose.Status(sqlDB, ".")
}
