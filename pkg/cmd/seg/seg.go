package seg

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/service"
)

type addOptions struct {
	name   string
	height float64
	pos    []float64
}

func NewSegCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seg",
		Short: "edit the segments of a course",
	}
	cmd.AddCommand(newAddCmd(), newDeleteCmd(), newRenameCmd(), newListCmd())
	return cmd
}

func newAddCmd() *cobra.Command {
	opts := addOptions{}
	cmd := &cobra.Command{
		Use:   "add <course> <index>",
		Short: "adds or replaces a segment. Index 0 is the start area",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			if len(opts.pos) != 3 {
				return fmt.Errorf("--pos needs x,y,z, got %d values", len(opts.pos))
			}
			pos := model.Vec3{X: opts.pos[0], Y: opts.pos[1], Z: opts.pos[2]}
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					seg, err := m.AddSegment(cmd.Context(), index, opts.name, opts.height, pos)
					if err != nil {
						return err
					}
					printSegment(cmd.OutOrStdout(), seg)
					return nil
				})
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "segment name (default #<index>)")
	cmd.Flags().Float64Var(&opts.height, "height", 2, "segment height in blocks")
	cmd.Flags().Float64SliceVar(&opts.pos, "pos", nil, "position x,y,z")
	//nolint:errcheck // flag exists
	cmd.MarkFlagRequired("pos")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <course> <index>",
		Short: "deletes a segment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					return m.DeleteSegment(cmd.Context(), index)
				})
		},
	}
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <course> <index> [name]",
		Short: "renames a segment, an empty name restores the default label",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := parseIndex(args[1])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 3 {
				name = args[2]
			}
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					return m.RenameSegment(cmd.Context(), index, name)
				})
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <course>",
		Short: "lists the segments of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					segments, err := m.Segments()
					if err != nil {
						return err
					}
					for _, seg := range segments {
						printSegment(cmd.OutOrStdout(), seg)
					}
					return nil
				})
		},
	}
}

func parseIndex(s string) (int, error) {
	index, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", service.ErrInvalidIndex, s)
	}
	return index, nil
}

func printSegment(w io.Writer, seg model.Segment) {
	name := seg.Name
	if name == "" {
		name = "-"
	}
	r := seg.Region
	fmt.Fprintf(w, "%3d %-16s min=(%s, %s, %s) max=(%s, %s, %s) height=%s\n",
		seg.Index, name,
		presentation.FormatDoubleTrunc5(r.Min.X),
		presentation.FormatDoubleTrunc5(r.Min.Y),
		presentation.FormatDoubleTrunc5(r.Min.Z),
		presentation.FormatDoubleTrunc5(r.Max.X),
		presentation.FormatDoubleTrunc5(r.Max.Y),
		presentation.FormatDoubleTrunc5(r.Max.Z),
		presentation.FormatDoubleTrunc5(seg.Height))
}
