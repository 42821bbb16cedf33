package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	msqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateUp brings the schema to the latest version.
//
// Databases written before versioned migrations (a snapshot from the
// browser app, or an old backup) have tables but no schema_migrations
// row. 000001 only uses IF NOT EXISTS, so the predecessor schema can go
// through Up as is. A database that already has later columns is forced
// to the matching version after the init script fills in any missing
// tables, so only the remaining steps run.
func migrateUp(db *sql.DB) error {
	baseline, err := detectBaseline(db)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	drv, err := msqlite.WithInstance(db, &msqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to init migration driver: %w", err)
	}
	// m.Close would close db; the store owns it.
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", drv)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}

	if baseline > 0 {
		if err := execInit(db); err != nil {
			return err
		}
		if err := m.Force(baseline); err != nil {
			return fmt.Errorf("failed to baseline schema at version %d: %w", baseline, err)
		}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// detectBaseline returns the migration version an unversioned database
// must be forced to, or 0 when it is versioned, empty or still on the
// predecessor schema.
func detectBaseline(db *sql.DB) (int, error) {
	versioned, err := tableExists(db, msqlite.DefaultMigrationsTable)
	if err != nil || versioned {
		return 0, err
	}
	hasSales, err := tableExists(db, "sales")
	if err != nil || !hasSales {
		return 0, err
	}

	cols, err := columns(db, "sales")
	if err != nil {
		return 0, err
	}
	version := 0
	if cols["delivery_price"] {
		version = 2
		if cols["labor_cost"] {
			version = 3
		}
	}
	if version == 3 {
		hasAllocations, err := tableExists(db, "payment_allocations")
		if err != nil {
			return 0, err
		}
		if hasAllocations {
			version = 4
		}
	}
	return version, nil
}

func execInit(db *sql.DB) error {
	script, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	if err != nil {
		return fmt.Errorf("failed to read init migration: %w", err)
	}
	if _, err := db.Exec(string(script)); err != nil {
		return fmt.Errorf("failed to complete legacy schema: %w", err)
	}
	return nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var n int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&n)
	return n > 0, err
}

func columns(db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}
