package main

import (
	"errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const migrationsSource = "file://resources/migrations"

// migrateUp applies every pending migration to the database at path.
func migrateUp(path string) error {
	migrator, err := migrate.New(migrationsSource, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Print("info: database schema is up to date")
			return nil
		}
		return err
	}

	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	log.Printf("info: database migrated to version %d", version)

	return nil
}
