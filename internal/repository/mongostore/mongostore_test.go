package mongostore

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/pageza/healthy-cookbook/backend/internal/repository"
	"github.com/pageza/healthy-cookbook/backend/internal/repository/repotest"
)

func startMongo(t *testing.T) *mongo.Client {
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not available, skipping MongoDB integration tests")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("failed to start mongo container: %v", err)
	}
	t.Cleanup(func() { container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, nat.Port("27017/tcp"))
	require.NoError(t, err)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(ctx) })
	return client
}

func TestStore(t *testing.T) {
	client := startMongo(t)

	repotest.Run(t, func(t *testing.T) *repository.Store {
		name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
		db := client.Database(name)
		require.NoError(t, EnsureIndexes(context.Background(), db))
		t.Cleanup(func() { db.Drop(context.Background()) })
		return NewStore(db)
	})
}
