package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/cors"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/pkg/service"
	"github.com/mpapenbr/course-split-timer/pkg/utils/cache"
	"github.com/mpapenbr/course-split-timer/pkg/utils/cache/loadercache"
)

// Session is the part of service.Session used by the endpoint.
type Session interface {
	Latest() service.Snapshot
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	ResetRun(ctx context.Context)
	LoadCourse(ctx context.Context, name string) error
	LeaveCourse(ctx context.Context)
}

type Server struct {
	session  Session
	settings atomic.Pointer[presentation.Settings]
	layouts  *presentation.LayoutStore
	cached   cache.Cache[string, presentation.Settings]
	timeout  time.Duration
	l        *log.Logger
}

type Option func(s *Server)

func WithSettings(settings presentation.Settings) Option {
	return func(s *Server) {
		s.settings.Store(&settings)
	}
}

// WithLayouts enables switching to saved layouts by name.
func WithLayouts(layouts *presentation.LayoutStore) Option {
	return func(s *Server) {
		s.layouts = layouts
	}
}

// WithCommandTimeout limits how long a control request waits for the session.
func WithCommandTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		s.l = l
	}
}

func NewServer(session Session, opts ...Option) *Server {
	ret := &Server{
		session: session,
		timeout: 2 * time.Second,
		l:       log.Default().Named("status"),
	}
	def := presentation.DefaultSettings()
	ret.settings.Store(&def)
	for _, opt := range opts {
		opt(ret)
	}
	if ret.layouts != nil {
		ret.cached = loadercache.New(
			loadercache.WithExpiration[string, presentation.Settings](time.Minute),
			loadercache.WithLoader[string, presentation.Settings](func(_ context.Context, name string) (
				*presentation.Settings, error,
			) {
				settings, err := ret.layouts.Load(name)
				if err != nil {
					return nil, err
				}
				return &settings, nil
			}))
	}
	return ret
}

// Settings returns the display settings used for rendered frames.
func (s *Server) Settings() presentation.Settings {
	return *s.settings.Load()
}

func (s *Server) SetSettings(settings presentation.Settings) {
	s.settings.Store(&settings)
}

// Handler returns the routes wrapped with a permissive CORS setup.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/state/text", s.handleStateText)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /api/reset", s.handleReset)
	mux.HandleFunc("POST /api/course/{name}", s.handleLoadCourse)
	mux.HandleFunc("DELETE /api/course", s.handleLeaveCourse)
	mux.HandleFunc("PUT /api/settings", s.handlePutSettings)
	if s.layouts != nil {
		mux.HandleFunc("GET /api/layouts", s.handleListLayouts)
		mux.HandleFunc("PUT /api/layout/{name}", s.handleUseLayout)
	}
	return newCORS().Handler(mux)
}

func (s *Server) view() presentation.View {
	snap := s.session.Latest()
	return presentation.View{
		Course:   snap.Course,
		Records:  snap.Records,
		State:    snap.State,
		Settings: s.Settings(),
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := (presentation.JSONAdapter{}).Render(w, s.view()); err != nil {
		s.l.Warn("render state", log.ErrorField(err))
	}
}

func (s *Server) handleStateText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := (presentation.TextAdapter{}).Render(w, s.view()); err != nil {
		s.l.Warn("render state", log.ErrorField(err))
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Latest())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	err := s.do(r.Context(), func(ctx context.Context) error {
		s.session.ResetRun(ctx)
		return nil
	})
	s.reply(w, err)
}

func (s *Server) handleLoadCourse(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := s.do(r.Context(), func(ctx context.Context) error {
		return s.session.LoadCourse(ctx, name)
	})
	s.reply(w, err)
}

func (s *Server) handleLeaveCourse(w http.ResponseWriter, r *http.Request) {
	err := s.do(r.Context(), func(ctx context.Context) error {
		s.session.LeaveCourse(ctx)
		return nil
	})
	s.reply(w, err)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings presentation.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	s.SetSettings(settings.Normalize())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListLayouts(w http.ResponseWriter, _ *http.Request) {
	names, err := s.layouts.List()
	if err != nil {
		s.reply(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleUseLayout(w http.ResponseWriter, r *http.Request) {
	settings, err := s.cached.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		s.reply(w, err)
		return
	}
	s.SetSettings(*settings)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.session.Do(ctx, fn)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) reply(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, api.ErrCourseNotFound), errors.Is(err, presentation.ErrLayoutNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "session not running"})
	default:
		s.l.Warn("command failed", log.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	//nolint:errcheck // nothing left to do
	json.NewEncoder(w).Encode(v)
}

func newCORS() *cors.Cors {
	// status pages are consumed by overlays served from anywhere
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         int(2 * time.Hour / time.Second),
	})
}
