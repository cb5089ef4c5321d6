package layout

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
)

type saveOptions struct {
	preset     string
	timeFormat string
	comparison string
	unit       string
	rows       int
	on         []string
	off        []string
}

func NewLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "manage display layouts",
	}
	cmd.AddCommand(newSaveCmd(), newShowCmd(), newListCmd())
	return cmd
}

func newSaveCmd() *cobra.Command {
	opts := saveOptions{}
	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "saves a layout built from a preset and adjustments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.build()
			if err != nil {
				return err
			}
			return util.LayoutStore().Save(args[0], settings)
		},
	}
	cmd.Flags().StringVar(&opts.preset, "preset", presentation.PresetStandard,
		fmt.Sprintf("base preset %v", presentation.Presets))
	cmd.Flags().StringVar(&opts.timeFormat, "time-format", "",
		"time format (MSS, TICKS, SECONDS)")
	cmd.Flags().StringVar(&opts.comparison, "comparison", "",
		"split list comparison (pb, best)")
	cmd.Flags().StringVar(&opts.unit, "unit", "",
		"split list unit (split, seg)")
	cmd.Flags().IntVar(&opts.rows, "rows", -1, "number of split list rows")
	cmd.Flags().StringSliceVar(&opts.on, "on", nil, "items to show")
	cmd.Flags().StringSliceVar(&opts.off, "off", nil, "items to hide")
	return cmd
}

func (o saveOptions) build() (presentation.Settings, error) {
	s, err := presentation.Settings{}.WithPreset(o.preset)
	if err != nil {
		return s, err
	}
	if o.timeFormat != "" {
		f, err := presentation.ParseTimeFormat(o.timeFormat)
		if err != nil {
			return s, err
		}
		s = s.WithTimeFormat(f)
	}
	if o.comparison != "" || o.unit != "" {
		c, u := s.Comparison, s.Unit
		if o.comparison != "" {
			c = presentation.Comparison(o.comparison)
		}
		if o.unit != "" {
			u = presentation.Unit(o.unit)
		}
		s = s.WithComparison(c, u)
	}
	if o.rows >= 0 {
		s = s.WithSplitRows(o.rows)
	}
	for _, item := range o.on {
		if s, err = s.WithToggle(item, true); err != nil {
			return s, err
		}
	}
	for _, item := range o.off {
		if s, err = s.WithToggle(item, false); err != nil {
			return s, err
		}
	}
	return s.Normalize(), nil
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "prints a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := util.LayoutStore().Load(args[0])
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			defer enc.Close()
			return enc.Encode(settings)
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the saved layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := util.LayoutStore().List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
