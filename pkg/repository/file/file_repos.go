package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

const (
	coursesDir = "courses"
	courseExt  = ".json"
)

// Repository keeps every course as a json document below
// <dataDir>/courses.
type Repository struct {
	dir string
	l   *log.Logger
}

var _ api.CourseRepository = (*Repository)(nil)

type Option func(r *Repository)

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		r.l = l
	}
}

func New(dataDir string, opts ...Option) *Repository {
	ret := &Repository{
		dir: filepath.Join(dataDir, coursesDir),
		l:   log.Default().Named("repository.file"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (r *Repository) Dir() string {
	return r.dir
}

func (r *Repository) path(name string) string {
	return filepath.Join(r.dir, utils.SafeFileName(name)+courseExt)
}

func (r *Repository) Load(ctx context.Context, name string) (*model.CourseData, error) {
	data, err := r.read(r.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, api.NewPersistError("load", name, api.ErrCourseNotFound)
	}
	if err != nil {
		return nil, api.NewPersistError("load", name, err)
	}
	return data, nil
}

func (r *Repository) read(path string) (*model.CourseData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ret model.CourseData
	if err := json.Unmarshal(raw, &ret); err != nil {
		return nil, fmt.Errorf("invalid course file %s: %w", filepath.Base(path), err)
	}
	ret.Normalize()
	return &ret, nil
}

func (r *Repository) Save(ctx context.Context, data *model.CourseData) error {
	name := data.Course.Name
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return api.NewPersistError("save", name, err)
	}
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return api.NewPersistError("save", name, err)
	}
	if err := writeAtomic(r.path(name), raw); err != nil {
		return api.NewPersistError("save", name, err)
	}
	r.l.Debug("course saved", log.String("course", name), log.Int("bytes", len(raw)))
	return nil
}

// writeAtomic writes to a temp file in the target directory and renames it.
func writeAtomic(target string, raw []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-"+filepath.Base(target)+"-*")
	if err != nil {
		return err
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		cleanup()
		return err
	}
	return nil
}

func (r *Repository) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(r.path(name))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, api.NewPersistError("exists", name, err)
	}
}

// List returns the names stored inside the course files, sorted.
// Files which cannot be read are skipped.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, api.NewPersistError("list", "", err)
	}
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		if !isCourseFile(e.Name()) || e.IsDir() {
			continue
		}
		data, err := r.read(filepath.Join(r.dir, e.Name()))
		if err != nil {
			r.l.Warn("skipping course file", log.String("file", e.Name()), log.ErrorField(err))
			continue
		}
		ret = append(ret, data.Course.Name)
	}
	slices.Sort(ret)
	return ret, nil
}

func (r *Repository) Delete(ctx context.Context, name string) error {
	err := os.Remove(r.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return api.NewPersistError("delete", name, api.ErrCourseNotFound)
	}
	return api.NewPersistError("delete", name, err)
}

func isCourseFile(name string) bool {
	return strings.HasSuffix(name, courseExt) && !strings.HasPrefix(name, ".tmp-")
}
