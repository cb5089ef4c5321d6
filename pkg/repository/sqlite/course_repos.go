package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/db/migrate"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
)

// Repository stores each course as one json document in a sqlite table.
type Repository struct {
	db *sql.DB
	l  *log.Logger
}

var _ api.CourseRepository = (*Repository)(nil)

// Open opens (or creates) the database file at path and migrates it.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc serializes writes per connection, one is enough here
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}
	if err := migrate.MigrateSqlite(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Repository{db: db, l: log.Default().Named("repository.sqlite")}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Load(ctx context.Context, name string) (*model.CourseData, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, "SELECT data FROM course WHERE name = ?", name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, api.NewPersistError("load", name, api.ErrCourseNotFound)
	}
	if err != nil {
		return nil, api.NewPersistError("load", name, err)
	}
	var ret model.CourseData
	if err := json.Unmarshal([]byte(raw), &ret); err != nil {
		return nil, api.NewPersistError("load", name, err)
	}
	ret.Normalize()
	return &ret, nil
}

func (r *Repository) Save(ctx context.Context, data *model.CourseData) error {
	name := data.Course.Name
	raw, err := json.Marshal(data)
	if err != nil {
		return api.NewPersistError("save", name, err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO course (name, version, data) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			version = excluded.version,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP`,
		name, data.Version, string(raw))
	if err != nil {
		return api.NewPersistError("save", name, err)
	}
	r.l.Debug("course saved", log.String("course", name))
	return nil
}

func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM course WHERE name = ?", name).Scan(&n)
	if err != nil {
		return false, api.NewPersistError("exists", name, err)
	}
	return n > 0, nil
}

func (r *Repository) List(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name FROM course ORDER BY name")
	if err != nil {
		return nil, api.NewPersistError("list", "", err)
	}
	defer rows.Close()
	ret := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, api.NewPersistError("list", "", err)
		}
		ret = append(ret, name)
	}
	if err := rows.Err(); err != nil {
		return nil, api.NewPersistError("list", "", err)
	}
	return ret, nil
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM course WHERE name = ?", name)
	if err != nil {
		return api.NewPersistError("delete", name, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return api.NewPersistError("delete", name, api.ErrCourseNotFound)
	}
	return nil
}
