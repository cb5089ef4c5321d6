package record

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/service"
)

func NewRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "manage the records of a course",
	}
	cmd.AddCommand(newClearCmd())
	return cmd
}

func newClearCmd() *cobra.Command {
	targets := strings.Join(lo.Map(model.ClearTargets,
		func(t model.ClearTarget, _ int) string { return string(t) }), ", ")
	return &cobra.Command{
		Use:   "clear <course> <target>",
		Short: fmt.Sprintf("clears records. Targets: %s", targets),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return util.WithLoadedCourse(cmd.Context(), args[0],
				func(m *service.CourseManager) error {
					return m.ClearRecords(cmd.Context(), args[1])
				})
		},
	}
}
