// Package tcpostgres starts a throw-away postgres for repository tests.
package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	image    = "postgres:16"
	user     = "cst"
	password = "cst"
	dbName   = "courses"
)

type containerConfig struct {
	name    string
	startup time.Duration
	reuse   bool
}

type Option func(cfg *containerConfig)

// WithName names the container. Named containers are reused between
// test packages.
func WithName(name string) Option {
	return func(cfg *containerConfig) {
		cfg.name = name
		cfg.reuse = name != ""
	}
}

func WithStartupTimeout(d time.Duration) Option {
	return func(cfg *containerConfig) {
		cfg.startup = d
	}
}

// Start runs the postgres container and returns its connection url.
func Start(ctx context.Context, opts ...Option) (testcontainers.Container, string, error) {
	cfg := &containerConfig{startup: 30 * time.Second}
	for _, opt := range opts {
		opt(cfg)
	}
	port, err := nat.NewPort("tcp", "5432")
	if err != nil {
		return nil, "", err
	}
	req := testcontainers.ContainerRequest{
		Image: image,
		Name:  cfg.name,
		Env: map[string]string{
			"POSTGRES_USER":     user,
			"POSTGRES_PASSWORD": password,
			"POSTGRES_DB":       dbName,
		},
		ExposedPorts: []string{string(port)},
		Cmd:          []string{"postgres", "-c", "fsync=off"},
		// postgres restarts once after running the init scripts
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(cfg.startup),
	}
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
			Reuse:            cfg.reuse,
		})
	if err != nil {
		return nil, "", err
	}
	host, err := container.Host(ctx)
	if err != nil {
		return container, "", err
	}
	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return container, "", err
	}
	url := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		user, password, host, mapped.Port(), dbName)
	return container, url, nil
}
