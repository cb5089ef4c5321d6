package serve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/endpoints/status"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/service"
	"github.com/mpapenbr/course-split-timer/pkg/source/jsonl"
)

func center(idx int) model.Vec3 {
	return model.Vec3{X: float64(idx*10) + 0.5, Y: 1, Z: 0.5}
}

func newSession(t *testing.T) (*service.Session, *util.Store) {
	t.Helper()
	config.DataDir = t.TempDir()
	config.Storage = config.StorageFile
	store, err := util.OpenStore(context.Background())
	require.NoError(t, err)
	t.Cleanup(store.Close)

	s := service.NewSession(service.NewCourseManager(store.Repo))
	t.Cleanup(s.Close)
	ctx := context.Background()
	require.NoError(t, s.SetCourse(ctx, "line"))
	for _, idx := range []int{0, 1} {
		_, err := s.AddSegment(ctx, idx, "", 1, center(idx))
		require.NoError(t, err)
	}
	return s, store
}

func TestRunSessionFromFile(t *testing.T) {
	s, _ := newSession(t)
	line := func(v model.Vec3) string {
		return fmt.Sprintf(`{"pos":{"x":%v,"y":%v,"z":%v}}`, v.X, v.Y, v.Z)
	}
	outside := model.Vec3{X: -5, Y: 1, Z: 0.5}
	lines := []string{line(outside), line(center(0))}
	for range 4 {
		lines = append(lines, line(outside))
	}
	lines = append(lines, line(center(1)))
	config.Input = filepath.Join(t.TempDir(), "samples.jsonl")
	require.NoError(t, os.WriteFile(config.Input, []byte(strings.Join(lines, "\n")), 0o600))

	require.NoError(t, runSession(context.Background(), s, jsonl.DefaultPaths()))
	snap := s.Latest()
	assert.Equal(t, timer.PhaseFinished, snap.State.Phase)
	assert.Equal(t, 5, snap.State.Elapsed())
}

func TestRunSessionInvalidPath(t *testing.T) {
	s, _ := newSession(t)
	paths := jsonl.DefaultPaths()
	paths.X = "$["
	assert.Error(t, runSession(context.Background(), s, paths))
}

func TestWatchReloadsLayout(t *testing.T) {
	s, store := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	samples := make(chan model.PositionSample)
	go func() {
		//nolint:errcheck // canceled at test end
		s.Run(ctx, samples)
	}()
	require.NoError(t, watchCourses(ctx, store, s))

	data, err := store.Repo.Load(ctx, "line")
	require.NoError(t, err)
	data.Course.Upsert(model.SegmentAt(2, "", 1, center(2)))
	data.Normalize()
	require.NoError(t, store.Repo.Save(ctx, data))

	assert.Eventually(t, func() bool {
		c := s.Latest().Course
		return c != nil && len(c.Segments) == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStatusEndpointMissingCert(t *testing.T) {
	s, _ := newSession(t)
	config.StatusAddr = "127.0.0.1:0"
	config.TLSCertFile = filepath.Join(t.TempDir(), "missing.crt")
	config.TLSKeyFile = filepath.Join(t.TempDir(), "missing.key")
	t.Cleanup(func() {
		config.TLSCertFile = ""
		config.TLSKeyFile = ""
	})
	_, err := startStatusEndpoint(context.Background(), status.NewServer(s))
	assert.Error(t, err)
}
