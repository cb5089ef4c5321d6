//nolint:thelper // ok for tests
package status

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/repository/file"
	"github.com/mpapenbr/course-split-timer/pkg/service"
)

func newSession(t *testing.T) *service.Session {
	s := service.NewSession(service.NewCourseManager(file.New(t.TempDir())))
	t.Cleanup(s.Close)
	return s
}

// runSession starts the session loop until the test ends.
func runSession(t *testing.T, s *service.Session) {
	ctx, cancel := context.WithCancel(context.Background())
	samples := make(chan model.PositionSample)
	done := make(chan struct{})
	go func() {
		defer close(done)
		//nolint:errcheck // canceled at test end
		s.Run(ctx, samples)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func request(t *testing.T, h http.Handler, method, target string, body []byte) *httptest.ResponseRecorder {
	var r io.Reader = http.NoBody
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestState(t *testing.T) {
	srv := NewServer(newSession(t))
	rec := request(t, srv.Handler(), http.MethodGet, "/api/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var frame presentation.Frame
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &frame))
	assert.Equal(t, "IDLE", frame.Phase)
	assert.Equal(t, 0, frame.Elapsed)
}

func TestSettingsChangeText(t *testing.T) {
	srv := NewServer(newSession(t))
	minimal, err := presentation.Settings{}.WithPreset(presentation.PresetMinimal)
	require.NoError(t, err)
	body, err := json.Marshal(minimal)
	require.NoError(t, err)

	rec := request(t, srv.Handler(), http.MethodPut, "/api/settings", body)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, presentation.PresetMinimal, srv.Settings().Preset)

	rec = request(t, srv.Handler(), http.MethodGet, "/api/state/text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Time: 0t\nSeg: Idle\nSegTime: 0t\n", rec.Body.String())
}

func TestInvalidSettings(t *testing.T) {
	srv := NewServer(newSession(t))
	rec := request(t, srv.Handler(), http.MethodPut, "/api/settings", []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, presentation.PresetStandard, srv.Settings().Preset)
}

func TestCourseCommands(t *testing.T) {
	s := newSession(t)
	runSession(t, s)
	ctx := context.Background()
	require.NoError(t, s.Do(ctx, func(ctx context.Context) error {
		if err := s.SetCourse(ctx, "line"); err != nil {
			return err
		}
		s.LeaveCourse(ctx)
		return nil
	}))
	h := NewServer(s).Handler()

	rec := request(t, h, http.MethodPost, "/api/course/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = request(t, h, http.MethodPost, "/api/course/line", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.NotNil(t, s.Latest().Course)
	assert.Equal(t, "line", s.Latest().Course.Name)

	rec = request(t, h, http.MethodGet, "/api/snapshot", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"line"`)

	rec = request(t, h, http.MethodPost, "/api/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = request(t, h, http.MethodDelete, "/api/course", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Nil(t, s.Latest().Course)
}

func TestCommandWithoutRun(t *testing.T) {
	srv := NewServer(newSession(t), WithCommandTimeout(50*time.Millisecond))
	rec := request(t, srv.Handler(), http.MethodPost, "/api/reset", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestCORS(t *testing.T) {
	srv := NewServer(newSession(t))
	req := httptest.NewRequest(http.MethodGet, "/api/state", http.NoBody)
	req.Header.Set("Origin", "http://overlay.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://overlay.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLayouts(t *testing.T) {
	layouts := presentation.NewLayoutStore(t.TempDir())
	minimal, err := presentation.Settings{}.WithPreset(presentation.PresetMinimal)
	require.NoError(t, err)
	require.NoError(t, layouts.Save("overlay", minimal))
	srv := NewServer(newSession(t), WithLayouts(layouts))
	h := srv.Handler()

	rec := request(t, h, http.MethodGet, "/api/layouts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["overlay"]`, rec.Body.String())

	rec = request(t, h, http.MethodPut, "/api/layout/overlay", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, presentation.PresetMinimal, srv.Settings().Preset)

	rec = request(t, h, http.MethodPut, "/api/layout/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
