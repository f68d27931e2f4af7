// Package tcnats starts a NATS server with JetStream enabled for tests.
package tcnats

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/nats-io/nats.go"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// SetupTestNats returns a connection to a JetStream enabled NATS server.
// If TESTNATS_URL is set that server is used instead of a container.
func SetupTestNats() *nats.Conn {
	url := os.Getenv("TESTNATS_URL")
	if url == "" {
		url = startContainer()
	}
	nc, err := nats.Connect(url, nats.Timeout(5*time.Second))
	if err != nil {
		log.Fatal(err)
	}
	return nc
}

func startContainer() string {
	ctx := context.Background()
	port, err := nat.NewPort("tcp", "4222")
	if err != nil {
		log.Fatal(err)
	}
	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "nats:2.10",
				Name:         "wheellab-test-nats",
				ExposedPorts: []string{string(port)},
				Cmd:          []string{"-js"},
				WaitingFor: wait.ForLog("Server is ready").
					WithStartupTimeout(30 * time.Second),
			},
			Started: true,
			Reuse:   true,
		})
	if err != nil {
		log.Fatal(err)
	}
	mapped, _ := container.MappedPort(ctx, port)
	host, _ := container.Host(ctx)
	return fmt.Sprintf("nats://%s:%s", host, mapped.Port())
}
