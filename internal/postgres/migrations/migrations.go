// Package migrations embeds the versioned SQL schema of the record store and
// applies it with golang-migrate. Applied versions live in schema_migrations.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"
	"sort"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

const migrationsTable = "schema_migrations"

// Script is one migration file
type Script struct {
	Name string
	SQL  string
}

// Source returns the embedded migrations as a golang-migrate source driver
func Source() (source.Driver, error) {
	return iofs.New(files, ".")
}

// UpScripts returns the up migrations in version order, used for dry runs
func UpScripts() ([]Script, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	scripts := make([]Script, 0, len(names))
	for _, name := range names {
		raw, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, Script{Name: name, SQL: string(raw)})
	}
	return scripts, nil
}

// New builds a migrator over db. The caller owns db; closing the migrator closes it too.
func New(db *sql.DB) (*migrate.Migrate, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

// Up applies every pending migration. An up to date schema is not an error.
func Up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Down rolls back steps migrations
func Down(m *migrate.Migrate, steps int) error {
	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
