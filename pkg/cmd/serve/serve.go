package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/cmd/util"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/db/postgres"
	"github.com/mpapenbr/course-split-timer/pkg/endpoints/status"
	"github.com/mpapenbr/course-split-timer/pkg/model"
	natsPublish "github.com/mpapenbr/course-split-timer/pkg/publish/nats"
	"github.com/mpapenbr/course-split-timer/pkg/service"
	"github.com/mpapenbr/course-split-timer/pkg/source/jsonl"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
	"github.com/mpapenbr/course-split-timer/pkg/utils/certs"
)

var appConfig config.Config // holds processing configuration values

func NewServeCmd() *cobra.Command {
	paths := jsonl.Paths{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "runs a live session on samples read from the input",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startServer(cmd.Context(), paths)
		},
	}
	cmd.Flags().StringVar(&config.Input,
		"input",
		"-",
		"sample source (json lines), - for stdin")
	cmd.Flags().StringVar(&config.Course,
		"course",
		"",
		"course to activate on start (created if missing)")
	cmd.Flags().StringVar(&config.StatusAddr,
		"status-addr",
		"localhost:8090",
		"listen addr for the status endpoint (empty disables it)")
	cmd.Flags().StringVar(&config.TLSCertFile,
		"tls-cert",
		"",
		"file containing the TLS certificate for the status endpoint")
	cmd.Flags().StringVar(&config.TLSKeyFile,
		"tls-key",
		"",
		"file containing the TLS key for the status endpoint")
	cmd.Flags().StringVar(&config.TLSCAFile,
		"tls-ca",
		"",
		"file containing the root CA used to verify client certificates")
	cmd.Flags().StringVar(&config.TraefikCerts,
		"traefik-certs",
		"",
		"traefik acme.json to read the certificate from")
	cmd.Flags().StringVar(&config.TraefikCertDomain,
		"traefik-cert-domain",
		"",
		"domain of the certificate inside the traefik store")
	cmd.Flags().StringVar(&config.NatsURL,
		"nats-url",
		"",
		"NATS server receiving run events (empty disables publishing)")
	cmd.Flags().StringVar(&config.NatsPrefix,
		"nats-prefix",
		natsPublish.DefaultPrefix,
		"subject prefix for run events")
	cmd.Flags().StringVar(&config.NatsKVBucket,
		"nats-kv-bucket",
		"",
		"jetstream key value bucket for the last event per course")
	cmd.Flags().BoolVar(&config.WatchCourses,
		"watch",
		true,
		"reload the active course when its file changes (file storage only)")
	cmd.Flags().BoolVar(&config.EnableTelemetry,
		"enable-telemetry",
		false,
		"enables telemetry")
	cmd.Flags().StringVar(&config.TelemetryEndpoint,
		"telemetry-endpoint",
		"localhost:4317",
		"Endpoint that receives open telemetry data")
	cmd.Flags().BoolVar(&config.TelemetryStdout,
		"telemetry-stdout",
		false,
		"write telemetry data to stdout instead of the endpoint")
	cmd.Flags().IntVar(&config.ProfilingPort,
		"profiling-port",
		0,
		"port to use for providing profiling data")
	cmd.Flags().BoolVar(&appConfig.PrintSnapshots,
		"print-snapshots",
		false,
		"if true and log level is debug, every published snapshot is logged")
	util.AddDisplayFlags(cmd)
	util.AddSourceFlags(cmd, &paths)
	return cmd
}

//nolint:funlen,cyclop // by design
func startServer(ctx context.Context, paths jsonl.Paths) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if config.ProfilingPort > 0 {
		log.Info("Starting profiling server on port", log.Int("port", config.ProfilingPort))
		go func() {
			//nolint:gosec // local profiling only
			err := http.ListenAndServe(
				fmt.Sprintf("localhost:%d", config.ProfilingPort),
				nil)
			if err != nil {
				log.Error("Profiling server stopped", log.ErrorField(err))
			}
		}()
	}

	var telemetry *config.Telemetry
	var storeOpts []util.StoreOption
	if config.EnableTelemetry {
		log.Info("Enabling telemetry")
		var err error
		if telemetry, err = config.SetupTelemetry(ctx); err == nil {
			storeOpts = append(storeOpts, util.WithPoolOptions(postgres.WithOtlpTracer()))
			err = otlpruntime.Start(
				otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
			if err != nil {
				log.Warn("Could not start runtime metrics", log.ErrorField(err))
			}
		} else {
			log.Warn("Could not setup telemetry", log.ErrorField(err))
		}
	}
	defer func() {
		if telemetry != nil {
			telemetry.Shutdown()
		}
	}()

	store, err := util.OpenStore(ctx, storeOpts...)
	if err != nil {
		return err
	}
	defer store.Close()

	settings, err := util.DisplaySettings()
	if err != nil {
		return err
	}

	sessionOpts := []service.SessionOption{
		service.WithSessionLogger(log.Default().Named("session")),
	}
	if config.NatsURL != "" {
		nc, publisher, err := setupNats(ctx)
		if err != nil {
			return err
		}
		defer nc.Drain() //nolint:errcheck // shutdown
		sessionOpts = append(sessionOpts, service.WithEffectHandler(publisher.Handle))
	}
	courses := service.NewCourseManager(store.Repo,
		service.WithCourseLogger(log.Default().Named("course")))
	session := service.NewSession(courses, sessionOpts...)
	defer session.Close()
	if config.Course != "" {
		if err := session.SetCourse(ctx, config.Course); err != nil {
			return err
		}
	}

	if config.StatusAddr != "" {
		srv, err := startStatusEndpoint(ctx, status.NewServer(session,
			status.WithSettings(settings),
			status.WithLayouts(util.LayoutStore())))
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			//nolint:errcheck // shutdown
			srv.Shutdown(shutdownCtx)
		}()
	}

	if store.File != nil && config.WatchCourses {
		if err := watchCourses(ctx, store, session); err != nil {
			log.Warn("Could not watch course files", log.ErrorField(err))
		}
	}
	if appConfig.PrintSnapshots {
		go printSnapshots(ctx, session)
	}
	setupGoRoutinesDump()

	return runSession(ctx, session, paths)
}

// startStatusEndpoint serves the status endpoint, using TLS when a
// certificate source is configured.
func startStatusEndpoint(ctx context.Context, st *status.Server) (*http.Server, error) {
	srv := &http.Server{
		Addr:              config.StatusAddr,
		Handler:           st.Handler(),
		ReadHeaderTimeout: 3 * time.Second,
	}
	src := certs.Source{
		CertFile:      config.TLSCertFile,
		KeyFile:       config.TLSKeyFile,
		CAFile:        config.TLSCAFile,
		TraefikStore:  config.TraefikCerts,
		TraefikDomain: config.TraefikCertDomain,
	}
	serve := srv.ListenAndServe
	if src.Enabled() {
		provider, err := certs.NewProvider(ctx, src,
			certs.WithLogger(log.Default().Named("status.certs")))
		if err != nil {
			return nil, err
		}
		if srv.TLSConfig, err = provider.TLSConfig(); err != nil {
			return nil, err
		}
		serve = func() error { return srv.ListenAndServeTLS("", "") }
	}
	log.Info("Starting status endpoint",
		log.String("addr", config.StatusAddr),
		log.Bool("tls", src.Enabled()))
	go func() {
		if err := serve(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("status endpoint stopped", log.ErrorField(err))
		}
	}()
	return srv, nil
}

func setupNats(ctx context.Context) (*nats.Conn, *natsPublish.Publisher, error) {
	if err := utils.WaitForTCP(ctx,
		utils.ExtractFromNatsURL(config.NatsURL), util.WaitTimeout()); err != nil {
		return nil, nil, fmt.Errorf("nats not ready: %w", err)
	}
	nc, err := nats.Connect(config.NatsURL, nats.Name("cst"))
	if err != nil {
		return nil, nil, err
	}
	opts := []natsPublish.Option{natsPublish.WithPrefix(config.NatsPrefix)}
	if config.NatsKVBucket != "" {
		kv, err := natsPublish.SetupKeyValue(ctx, nc, config.NatsKVBucket)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		opts = append(opts, natsPublish.WithKeyValue(kv))
	}
	log.Info("Publishing run events", log.String("url", config.NatsURL))
	return nc, natsPublish.NewPublisher(nc, opts...), nil
}

func watchCourses(ctx context.Context, store *util.Store, session *service.Session) error {
	return store.File.Watch(ctx, func(stem string, removed bool) {
		if removed {
			log.Debug("course file removed", log.String("file", stem))
			return
		}
		err := session.Do(ctx, func(ctx context.Context) error {
			return session.ReloadCourse(ctx, stem)
		})
		if err != nil && ctx.Err() == nil {
			log.Warn("Could not reload course", log.String("file", stem), log.ErrorField(err))
		}
	})
}

func runSession(ctx context.Context, session *service.Session, paths jsonl.Paths) error {
	dec, err := jsonl.NewDecoder(paths)
	if err != nil {
		return err
	}
	in, err := util.OpenInput(config.Input)
	if err != nil {
		return err
	}
	defer in.Close()

	samples := make(chan model.PositionSample, 16)
	readErr := make(chan error, 1)
	go func() {
		defer close(samples)
		readErr <- dec.Read(ctx, in, samples)
	}()
	if err := session.Run(ctx, samples); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	select {
	case err := <-readErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	default:
	}
	log.Info("session ended", log.Int("skipped samples", dec.Skipped()))
	return nil
}

func printSnapshots(ctx context.Context, session *service.Session) {
	ch := session.Subscribe()
	defer session.CancelSubscription(ch)
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-ch:
			if !ok {
				return
			}
			log.Debug("snapshot",
				log.String("phase", snap.State.Phase.String()),
				log.Int("elapsed", snap.State.Elapsed()),
				log.String("attempt", snap.AttemptID))
		}
	}
}

func setupGoRoutinesDump() {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n",
				buf[:stacklen])
		}
	}()
}
