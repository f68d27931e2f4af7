package tcpostgres

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const DefaultImage = "postgres:17-alpine"

var pgPort = nat.Port("5432/tcp")

// PostgresContainer is a running postgres test container.
type PostgresContainer struct {
	testcontainers.Container
	user, password, dbName string
}

type containerSetup struct {
	req      testcontainers.ContainerRequest
	user     string
	password string
	dbName   string
}

type PostgresContainerOption func(s *containerSetup)

func WithImage(image string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.Image = image
	}
}

func WithWaitStrategy(strategies ...wait.Strategy) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.WaitingFor = wait.ForAll(strategies...).WithDeadline(1 * time.Minute)
	}
}

// WithName names the container. Containers with the same name are reused.
func WithName(containerName string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.req.Name = containerName
	}
}

func WithInitialDatabase(user, password, dbName string) PostgresContainerOption {
	return func(s *containerSetup) {
		s.user, s.password, s.dbName = user, password, dbName
	}
}

// SetupPostgres starts (or reuses) a postgres container.
func SetupPostgres(ctx context.Context, opts ...PostgresContainerOption) (
	*PostgresContainer, error,
) {
	s := &containerSetup{
		req: testcontainers.ContainerRequest{
			Image:        DefaultImage,
			ExposedPorts: []string{string(pgPort)},
			Cmd:          []string{"postgres", "-c", "fsync=off"},
		},
		user:     "postgres",
		password: "password",
		dbName:   "postgres",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.req.Env = map[string]string{
		"POSTGRES_USER":     s.user,
		"POSTGRES_PASSWORD": s.password,
		"POSTGRES_DB":       s.dbName,
	}

	container, err := testcontainers.GenericContainer(
		ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: s.req,
			Started:          true,
			Reuse:            s.req.Name != "",
		})
	if err != nil {
		return nil, err
	}

	return &PostgresContainer{
		Container: container,
		user:      s.user,
		password:  s.password,
		dbName:    s.dbName,
	}, nil
}

// ConnectionString returns the postgresql URL of the mapped port.
func (c *PostgresContainer) ConnectionString(ctx context.Context) (string, error) {
	mapped, err := c.MappedPort(ctx, pgPort)
	if err != nil {
		return "", err
	}
	host, err := c.Host(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		c.user, c.password, host, mapped.Port(), c.dbName), nil
}
