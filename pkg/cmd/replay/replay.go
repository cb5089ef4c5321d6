package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/processing/timer"
	"github.com/mpapenbr/course-split-timer/pkg/service"
	"github.com/mpapenbr/course-split-timer/pkg/source/jsonl"
)

type replayOptions struct {
	paths  jsonl.Paths
	every  int
	events bool
	format string
}

func NewReplayCmd() *cobra.Command {
	opts := replayOptions{}
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "runs the timer on recorded samples (json lines, - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := util.OpenInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			return replay(cmd.Context(), in, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&config.Course, "course", "", "course to run")
	//nolint:errcheck // flag exists
	cmd.MarkFlagRequired("course")
	cmd.Flags().IntVar(&opts.every, "every", 0,
		"render the view every n samples (0: only at the end)")
	cmd.Flags().BoolVar(&opts.events, "events", false, "print timer events as json lines")
	cmd.Flags().StringVar(&opts.format, "format", "text", "view format (text, json)")
	util.AddDisplayFlags(cmd)
	util.AddSourceFlags(cmd, &opts.paths)
	return cmd
}

type eventLine struct {
	Kind      string       `json:"kind"`
	Course    string       `json:"course"`
	AttemptID string       `json:"attemptId,omitempty"`
	Data      timer.Effect `json:"data"`
}

//nolint:funlen // by design
func replay(ctx context.Context, in io.Reader, out io.Writer, opts replayOptions) error {
	settings, err := util.DisplaySettings()
	if err != nil {
		return err
	}
	var adapter presentation.Adapter
	switch opts.format {
	case "text":
		adapter = presentation.TextAdapter{}
	case "json":
		adapter = presentation.JSONAdapter{}
	default:
		return fmt.Errorf("unknown format: %s", opts.format)
	}
	dec, err := jsonl.NewDecoder(opts.paths)
	if err != nil {
		return err
	}
	store, err := util.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	var sessionOpts []service.SessionOption
	if opts.events {
		enc := json.NewEncoder(out)
		sessionOpts = append(sessionOpts, service.WithEffectHandler(
			func(_ context.Context, ev timer.Event) {
				//nolint:errcheck // best effort output
				enc.Encode(eventLine{
					Kind:      ev.Effect.Kind(),
					Course:    ev.Course,
					AttemptID: ev.AttemptID,
					Data:      ev.Effect,
				})
			}))
	}
	s := service.NewSession(service.NewCourseManager(store.Repo), sessionOpts...)
	defer s.Close()
	if err := s.LoadCourse(ctx, config.Course); err != nil {
		return err
	}

	render := func() error {
		snap := s.Snapshot()
		return adapter.Render(out, presentation.View{
			Course:   snap.Course,
			Records:  snap.Records,
			State:    snap.State,
			Settings: settings,
		})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	samples := make(chan model.PositionSample, 64)
	readErr := make(chan error, 1)
	go func() {
		defer close(samples)
		readErr <- dec.Read(ctx, in, samples)
	}()
	count := 0
	for sample := range samples {
		s.Tick(ctx, sample)
		count++
		if opts.every > 0 && count%opts.every == 0 {
			if err := render(); err != nil {
				return err
			}
		}
	}
	if err := <-readErr; err != nil {
		return err
	}
	log.Info("replay done",
		log.Int("samples", count),
		log.Int("skipped", dec.Skipped()),
		log.String("phase", s.Snapshot().State.Phase.String()))
	if opts.every > 0 && count%opts.every == 0 && count > 0 {
		return nil
	}
	return render()
}
