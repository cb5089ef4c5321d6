package course

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/service"
)

func NewCourseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "manage courses",
	}
	cmd.PersistentFlags().StringVar(&config.TimeFormat,
		"time-format",
		"",
		"time format for records (MSS, TICKS, SECONDS), default MSS")
	cmd.AddCommand(newListCmd(), newInfoCmd(), newSetCmd(), newDeleteCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the stored courses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithCourses(cmd.Context(), func(m *service.CourseManager) error {
				names, err := m.List(cmd.Context())
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "shows the layout summary and records of a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					return printInfo(cmd.OutOrStdout(), m)
				})
		},
	}
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name>",
		Short: "creates the course if it does not exist yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithCourses(cmd.Context(), func(m *service.CourseManager) error {
				if err := m.Set(cmd.Context(), args[0]); err != nil {
					return err
				}
				return printInfo(cmd.OutOrStdout(), m)
			})
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "deletes a course including its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithCourses(cmd.Context(), func(m *service.CourseManager) error {
				return m.Delete(cmd.Context(), args[0])
			})
		},
	}
}

func printInfo(w io.Writer, m *service.CourseManager) error {
	info, err := m.Info()
	if err != nil {
		return err
	}
	f := presentation.FormatMSS
	if config.TimeFormat != "" {
		if f, err = presentation.ParseTimeFormat(config.TimeFormat); err != nil {
			return err
		}
	}
	goal := "none"
	if info.Goal >= 0 {
		goal = fmt.Sprintf("#%d", info.Goal)
	}
	fmt.Fprintf(w, "Course:    %s\n", info.Name)
	fmt.Fprintf(w, "Segments:  %d (trackable %d, start %t, goal %s)\n",
		info.Segments, info.Trackable, info.HasStart, goal)
	fmt.Fprintf(w, "Attempts:  %d\n", info.AttemptCount)
	fmt.Fprintf(w, "PB:        %s\n", presentation.FormatOptional(info.PersonalBest, f))
	fmt.Fprintf(w, "SoB:       %s\n", presentation.FormatOptional(info.SumOfBest, f))
	return nil
}
