package util

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/source/jsonl"
)

// AddSourceFlags registers the JSONPath flags of the sample decoder.
func AddSourceFlags(cmd *cobra.Command, paths *jsonl.Paths) {
	def := jsonl.DefaultPaths()
	cmd.Flags().StringVar(&paths.X, "path-x", def.X, "JSONPath of the x coordinate")
	cmd.Flags().StringVar(&paths.Y, "path-y", def.Y, "JSONPath of the y coordinate")
	cmd.Flags().StringVar(&paths.Z, "path-z", def.Z, "JSONPath of the z coordinate")
	cmd.Flags().StringVar(&paths.Unavailable, "path-unavailable", def.Unavailable,
		"JSONPath of the world unavailable flag")
	cmd.Flags().StringVar(&paths.Paused, "path-paused", def.Paused,
		"JSONPath of the paused flag")
}

// OpenInput opens name for reading, "-" is stdin.
func OpenInput(name string) (io.ReadCloser, error) {
	if name == "-" || name == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(name)
}

// AddDisplayFlags registers the flags read by DisplaySettings.
func AddDisplayFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&config.Layout, "layout", "", "name of a saved layout")
	cmd.Flags().StringVar(&config.Preset, "preset", "standard",
		"display preset if no layout is given (standard, compact, practice, minimal, off)")
	cmd.Flags().StringVar(&config.TimeFormat, "time-format", "",
		"overrides the time format (MSS, TICKS, SECONDS)")
}
