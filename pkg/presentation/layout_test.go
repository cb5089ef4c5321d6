//nolint:thelper,whitespace,lll,funlen,gocritic,dupl // ok for tests
package presentation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "layouts")
	store := NewLayoutStore(dir)

	names, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, names)

	compact, err := DefaultSettings().WithPreset(PresetCompact)
	require.NoError(t, err)
	compact = compact.WithSplitRows(6)

	require.NoError(t, store.Save("race/day", compact))
	require.NoError(t, store.Save("alpha", DefaultSettings()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))

	names, err = store.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "race_day"}, names)

	got, err := store.Load("race/day")
	require.NoError(t, err)
	assert.Equal(t, compact.Normalize(), got)
}

func TestLayoutStoreNotFound(t *testing.T) {
	store := NewLayoutStore(t.TempDir())
	_, err := store.Load("missing")
	require.ErrorIs(t, err, ErrLayoutNotFound)
}

func TestLayoutStoreInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("splitRows: [1"), 0o600))
	_, err := NewLayoutStore(dir).Load("broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLayoutNotFound)
}
