package presentation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

var ErrLayoutNotFound = errors.New("layout not found")

const layoutExt = ".yaml"

// LayoutStore keeps named settings as yaml files in a directory.
type LayoutStore struct {
	dir string
}

func NewLayoutStore(dir string) *LayoutStore {
	return &LayoutStore{dir: dir}
}

func (s *LayoutStore) path(name string) string {
	return filepath.Join(s.dir, utils.SafeFileName(name)+layoutExt)
}

func (s *LayoutStore) Save(name string, settings Settings) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return err
	}
	//nolint:gosec // user readable
	return os.WriteFile(s.path(name), data, 0o644)
}

func (s *LayoutStore) Load(name string) (Settings, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	if err != nil {
		return Settings{}, err
	}
	var ret Settings
	if err := yaml.Unmarshal(data, &ret); err != nil {
		return Settings{}, fmt.Errorf("invalid layout %s: %w", name, err)
	}
	return ret.Normalize(), nil
}

func (s *LayoutStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	ret := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), layoutExt) {
			continue
		}
		ret = append(ret, strings.TrimSuffix(e.Name(), layoutExt))
	}
	slices.Sort(ret)
	return ret, nil
}
