package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/mpapenbr/course-split-timer/log"
)

//go:embed migrations/postgres
var postgresMigrations embed.FS

//go:embed migrations/sqlite
var sqliteMigrations embed.FS

// MigrateDb brings the postgres database at dbURI to the latest schema.
func MigrateDb(dbURI string) error {
	source, err := iofs.New(postgresMigrations, "migrations/postgres")
	if err != nil {
		return err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source,
		strings.Replace(dbURI, "postgresql://", "pgx5://", 1))
	if err != nil {
		return err
	}
	defer m.Close()
	m.Log = newMigrateLogger()

	return up(m)
}

// MigrateSqlite brings an open sqlite database to the latest schema.
// The migrate instance is not closed since that would close db.
func MigrateSqlite(db *sql.DB) error {
	source, err := iofs.New(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return err
	}
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = newMigrateLogger()
	return up(m)
}

func up(m *migrate.Migrate) error {
	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// migrateLogger implements migrate.Logger
type migrateLogger struct {
	l *log.Logger
}

func newMigrateLogger() *migrateLogger {
	return &migrateLogger{l: log.Default().Named("migrate")}
}

func (ml *migrateLogger) Printf(format string, v ...interface{}) {
	ml.l.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (ml *migrateLogger) Verbose() bool {
	return ml.l.Level() <= log.DebugLevel
}
