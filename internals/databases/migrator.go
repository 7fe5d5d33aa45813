package database

import (
	"embed"
	"log"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies pending goose migrations against the shared GORM pool.
func RunMigrations() {
	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatalf("[DB] migrate: get sql.DB: %v", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("[DB] migrate: set dialect: %v", err)
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		log.Fatalf("[DB] migrate: %v", err)
	}

	if version, err := goose.GetDBVersion(sqlDB); err == nil {
		log.Printf("[DB] schema at version %d", version)
	}
}
