//nolint:dupl,funlen //ok for this test code
package postgres

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gotest.tools/v3/assert"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/testsupport/basedata"
	"github.com/mpapenbr/course-split-timer/testsupport/testdb"
)

var cmpTicks = cmp.Comparer(model.TicksEqual)

func createSampleEntry(t *testing.T, db *pgxpool.Pool) *model.CourseData {
	t.Helper()
	ctx := context.Background()
	sample := basedata.SampleCourseData("hill")
	err := pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		return Upsert(ctx, tx, sample)
	})
	assert.NilError(t, err)
	return sample
}

func TestLoadByName(t *testing.T) {
	pool := testdb.InitTestDb(t)
	sample := createSampleEntry(t, pool)
	tests := []struct {
		name    string
		course  string
		want    *model.CourseData
		wantErr bool
	}{
		{name: "existing", course: "hill", want: sample},
		{name: "unknown", course: "valley", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadByName(context.Background(), pool, tt.course)
			if tt.wantErr {
				assert.ErrorIs(t, err, pgx.ErrNoRows)
				return
			}
			assert.NilError(t, err)
			assert.DeepEqual(t, tt.want, got, cmpTicks)
		})
	}
}

func TestUpsertReplaces(t *testing.T) {
	pool := testdb.InitTestDb(t)
	sample := createSampleEntry(t, pool)
	ctx := context.Background()

	sample.Records.AttemptCount = 42
	assert.NilError(t, sample.Records.Clear(model.ClearPB))
	assert.NilError(t, Upsert(ctx, pool, sample))

	got, err := LoadByName(ctx, pool, "hill")
	assert.NilError(t, err)
	assert.Equal(t, 42, got.Records.AttemptCount)
	assert.Assert(t, !got.Records.HasPersonalBest())
	assert.DeepEqual(t, sample, got, cmpTicks)
}

func TestRepository(t *testing.T) {
	pool := testdb.InitTestDb(t)
	ctx := context.Background()
	r := New(pool)

	_, err := r.Load(ctx, "hill")
	assert.ErrorIs(t, err, api.ErrCourseNotFound)

	for _, name := range []string{"zeta", "hill", "alpha"} {
		assert.NilError(t, r.Save(ctx, basedata.SampleCourseData(name)))
	}
	names, err := r.List(ctx)
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{"alpha", "hill", "zeta"}, names)

	ok, err := r.Exists(ctx, "hill")
	assert.NilError(t, err)
	assert.Assert(t, ok)

	got, err := r.Load(ctx, "hill")
	assert.NilError(t, err)
	assert.DeepEqual(t, basedata.SampleCourseData("hill"), got, cmpTicks)

	assert.NilError(t, r.Delete(ctx, "hill"))
	assert.ErrorIs(t, r.Delete(ctx, "hill"), api.ErrCourseNotFound)
	ok, err = r.Exists(ctx, "hill")
	assert.NilError(t, err)
	assert.Assert(t, !ok)
}

func TestEmptyCourse(t *testing.T) {
	pool := testdb.InitTestDb(t)
	ctx := context.Background()
	r := New(pool)
	empty := basedata.EmptyCourseData("flat")
	assert.NilError(t, r.Save(ctx, empty))
	got, err := r.Load(ctx, "flat")
	assert.NilError(t, err)
	assert.Equal(t, 0, len(got.Course.Segments))
	assert.Equal(t, 0, got.Records.AttemptCount)
}
