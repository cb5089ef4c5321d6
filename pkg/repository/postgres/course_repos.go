//nolint:whitespace // can't make both editor and linter happy
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
)

// Repository stores courses in postgres. Segments and record arrays are
// kept as jsonb, the pb total as nullable integer.
type Repository struct {
	pool *pgxpool.Pool
}

var _ api.CourseRepository = (*Repository)(nil)

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Load(ctx context.Context, name string) (*model.CourseData, error) {
	ret, err := LoadByName(ctx, r.pool, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, api.NewPersistError("load", name, api.ErrCourseNotFound)
	}
	if err != nil {
		return nil, api.NewPersistError("load", name, err)
	}
	return ret, nil
}

func (r *Repository) Save(ctx context.Context, data *model.CourseData) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return Upsert(ctx, tx, data)
	})
	return api.NewPersistError("save", data.Course.Name, err)
}

func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	var ret bool
	err := r.pool.QueryRow(ctx,
		"select exists(select 1 from course where name=$1)", name).Scan(&ret)
	if err != nil {
		return false, api.NewPersistError("exists", name, err)
	}
	return ret, nil
}

func (r *Repository) List(ctx context.Context) ([]string, error) {
	ret, err := LoadNames(ctx, r.pool)
	if err != nil {
		return nil, api.NewPersistError("list", "", err)
	}
	return ret, nil
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	num, err := DeleteByName(ctx, r.pool, name)
	if err != nil {
		return api.NewPersistError("delete", name, err)
	}
	if num == 0 {
		return api.NewPersistError("delete", name, api.ErrCourseNotFound)
	}
	return nil
}

func Upsert(ctx context.Context, conn Querier, data *model.CourseData) error {
	rec := data.Records
	_, err := conn.Exec(ctx, `
	insert into course (
		name, version, segments, attempt_count, pb_total_ticks,
		pb_segment_ticks, best_segment_ticks, best_split_ticks
	) values ($1,$2,$3,$4,$5,$6,$7,$8)
	on conflict (name) do update set
		version=excluded.version,
		segments=excluded.segments,
		attempt_count=excluded.attempt_count,
		pb_total_ticks=excluded.pb_total_ticks,
		pb_segment_ticks=excluded.pb_segment_ticks,
		best_segment_ticks=excluded.best_segment_ticks,
		best_split_ticks=excluded.best_split_ticks,
		updated_at=now()
	`,
		data.Course.Name, data.Version, nonNil(data.Course.Segments),
		rec.AttemptCount, toNullInt(rec.PersonalBest.TotalTicks),
		nonNil(rec.PersonalBest.SegmentTicks),
		nonNil(rec.BestSegmentTicks), nonNil(rec.BestSplitTicks),
	)
	return err
}

func LoadByName(ctx context.Context, conn Querier, name string) (
	*model.CourseData, error,
) {
	row := conn.QueryRow(ctx, `
	select name, version, segments, attempt_count, pb_total_ticks,
	pb_segment_ticks, best_segment_ticks, best_split_ticks
	from course where name=$1
	`, name)
	var item model.CourseData
	var pbTotal *int
	if err := row.Scan(
		&item.Course.Name, &item.Version, &item.Course.Segments,
		&item.Records.AttemptCount, &pbTotal,
		&item.Records.PersonalBest.SegmentTicks,
		&item.Records.BestSegmentTicks, &item.Records.BestSplitTicks,
	); err != nil {
		return nil, err
	}
	if pbTotal != nil {
		item.Records.PersonalBest.TotalTicks = model.TicksOf(*pbTotal)
	}
	item.Normalize()
	return &item, nil
}

func LoadNames(ctx context.Context, conn Querier) ([]string, error) {
	rows, err := conn.Query(ctx, "select name from course order by name")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// deletes an entry from the database, returns number of rows deleted.
func DeleteByName(ctx context.Context, conn Querier, name string) (int, error) {
	cmdTag, err := conn.Exec(ctx, "delete from course where name=$1", name)
	if err != nil {
		return 0, err
	}
	return int(cmdTag.RowsAffected()), nil
}

func toNullInt(t model.Ticks) *int {
	if v, ok := t.Get(); ok {
		return &v
	}
	return nil
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
