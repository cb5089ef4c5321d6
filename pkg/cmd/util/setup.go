package util

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mpapenbr/course-split-timer/log"
	"github.com/mpapenbr/course-split-timer/pkg/config"
	"github.com/mpapenbr/course-split-timer/pkg/db/postgres"
	"github.com/mpapenbr/course-split-timer/pkg/presentation"
	"github.com/mpapenbr/course-split-timer/pkg/repository/api"
	"github.com/mpapenbr/course-split-timer/pkg/repository/file"
	pgRepos "github.com/mpapenbr/course-split-timer/pkg/repository/postgres"
	"github.com/mpapenbr/course-split-timer/pkg/repository/sqlite"
	"github.com/mpapenbr/course-split-timer/pkg/utils"
)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// logger for the sql subsystem, set by SetupLogger
var sqlLog *log.Logger

// SetupLogger replaces the default logger according to the log flags.
// The returned logger is meant for the sql subsystem.
func SetupLogger() (sqlLogger *log.Logger, err error) {
	var logger *log.Logger
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		filter, err := log.WithFilterRules(config.LogFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid log filter: %w", err)
		}
		opts = append(opts, filter)
	}
	switch config.LogFormat {
	case "json":
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			opts...)
		sqlLogger = log.New(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			opts...)
	default:
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, log.InfoLevel),
			opts...)
		sqlLogger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.SQLLogLevel, log.InfoLevel),
			opts...)
	}
	log.ResetDefault(logger)
	sqlLog = sqlLogger
	return sqlLogger, nil
}

// WaitTimeout parses config.WaitForServices.
func WaitTimeout() time.Duration {
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		log.Warn("Invalid duration value. Setting default 60s", log.ErrorField(err))
		timeout = 60 * time.Second
	}
	return timeout
}

// Store is an opened course repository.
type Store struct {
	Repo  api.CourseRepository
	File  *file.Repository // only set for the file storage
	close func()
}

func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

type storeConfig struct {
	sqlLogger *log.Logger
	pgOpts    []postgres.PoolConfigOption
}

type StoreOption func(cfg *storeConfig)

func WithSQLLogger(l *log.Logger) StoreOption {
	return func(cfg *storeConfig) {
		cfg.sqlLogger = l
	}
}

func WithPoolOptions(opts ...postgres.PoolConfigOption) StoreOption {
	return func(cfg *storeConfig) {
		cfg.pgOpts = append(cfg.pgOpts, opts...)
	}
}

// OpenStore opens the course repository selected by config.Storage.
func OpenStore(ctx context.Context, opts ...StoreOption) (*Store, error) {
	cfg := &storeConfig{sqlLogger: sqlLog}
	for _, opt := range opts {
		opt(cfg)
	}
	switch config.Storage {
	case config.StorageFile, "":
		repo := file.New(config.DataDir,
			file.WithLogger(log.Default().Named("repository.file")))
		return &Store{Repo: repo, File: repo}, nil
	case config.StorageSQLite:
		path := config.SQLiteFile
		if path == "" {
			path = filepath.Join(config.DataDir, "courses.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		repo, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return &Store{Repo: repo, close: func() {
			if err := repo.Close(); err != nil {
				log.Warn("closing sqlite", log.ErrorField(err))
			}
		}}, nil
	case config.StoragePostgres:
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Store{Repo: pgRepos.New(pool), close: pool.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage: %s", config.Storage)
	}
}

func openPool(ctx context.Context, cfg *storeConfig) (*pgxpool.Pool, error) {
	postgresAddr := utils.ExtractFromDBURL(config.DB)
	if err := utils.WaitForTCP(ctx, postgresAddr, WaitTimeout()); err != nil {
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	pgOpts := cfg.pgOpts
	if len(pgOpts) == 0 && cfg.sqlLogger != nil {
		pgOpts = append(pgOpts, postgres.WithTracer(cfg.sqlLogger, log.DebugLevel))
	}
	return postgres.InitWithUrl(ctx, config.DB, pgOpts...)
}

// LayoutStore returns the layout store below the data dir.
func LayoutStore() *presentation.LayoutStore {
	return presentation.NewLayoutStore(filepath.Join(config.DataDir, "layouts"))
}

// DisplaySettings resolves the display settings from the layout, preset and
// time format flags. A layout wins over the preset, the time format flag
// overrides both.
func DisplaySettings() (presentation.Settings, error) {
	var settings presentation.Settings
	var err error
	if config.Layout != "" {
		settings, err = LayoutStore().Load(config.Layout)
	} else {
		settings, err = presentation.Settings{}.WithPreset(config.Preset)
	}
	if err != nil {
		return settings, err
	}
	if config.TimeFormat != "" {
		f, err := presentation.ParseTimeFormat(config.TimeFormat)
		if err != nil {
			return settings, err
		}
		settings = settings.WithTimeFormat(f)
	}
	return settings, nil
}
