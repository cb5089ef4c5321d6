// Package testdb provides a migrated and emptied course database for tests.
package testdb

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/course-split-timer/pkg/db/migrate"
	"github.com/mpapenbr/course-split-timer/pkg/db/postgres"
	"github.com/mpapenbr/course-split-timer/testsupport/tcpostgres"
)

var (
	once  sync.Once
	dbURL string
	dbErr error
)

// url resolves the database once per test binary. TESTDB_URL points to an
// external database, otherwise a container is started.
func url() (string, error) {
	once.Do(func() {
		if dbURL = os.Getenv("TESTDB_URL"); dbURL == "" {
			_, dbURL, dbErr = tcpostgres.Start(context.Background(),
				tcpostgres.WithName("course-split-timer-test"))
			if dbErr != nil {
				return
			}
		}
		dbErr = migrate.MigrateDb(dbURL)
	})
	return dbURL, dbErr
}

// InitTestDb returns a pool on an empty course table. The pool is closed
// when the test ends.
func InitTestDb(t testing.TB) *pgxpool.Pool {
	t.Helper()
	u, err := url()
	if err != nil {
		t.Fatalf("test database: %v", err)
	}
	ctx := context.Background()
	pool, err := postgres.InitWithUrl(ctx, u)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)
	if _, err := pool.Exec(ctx, "delete from course"); err != nil {
		t.Fatalf("clear course table: %v", err)
	}
	return pool
}
