package grpcapi_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/broadcast"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/facility/types"
	"github.com/newosoal21-pixel/mceremony-reservation/internal/grpcapi"
)

// startServer runs a grpcapi server on an in-memory listener and returns a
// client connection to it.
func startServer(t *testing.T, hub *broadcast.Hub, token string) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpcapi.NewServer(grpcapi.Dependencies{Hub: hub, Token: token})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHealth_Serving(t *testing.T) {
	hub := broadcast.NewHub(nil, 0, 8)
	defer hub.Close()
	conn := startServer(t, hub, "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: grpcapi.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestChangeFeed_StreamsPublishedEvents(t *testing.T) {
	hub := broadcast.NewHub(nil, 0, 8)
	defer hub.Close()
	conn := startServer(t, hub, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	feed, err := grpcapi.Subscribe(ctx, conn)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	extra := ""
	hub.Publish(types.ChangeEvent{
		RecordID:   "1",
		EntityType: types.EntityBus,
		Field:      "busSituation",
		NewValue:   "2",
		ExtraField: "departureTime",
		ExtraValue: &extra,
		UpdateTime: "2026/03/01 10:15",
		Message:    "Bus situation changed.",
	})

	ev, err := feed.Recv()
	require.NoError(t, err)
	fields := ev.GetFields()
	assert.Equal(t, "1", fields["id"].GetStringValue())
	assert.Equal(t, "bus", fields["entityType"].GetStringValue())
	assert.Equal(t, "busSituation", fields["field"].GetStringValue())
	assert.Equal(t, "departureTime", fields["extraField"].GetStringValue())
	assert.Contains(t, fields, "extraValue")
	assert.Equal(t, "", fields["extraValue"].GetStringValue())
}

func TestChangeFeed_RequiresToken(t *testing.T) {
	hub := broadcast.NewHub(nil, 0, 8)
	defer hub.Close()
	conn := startServer(t, hub, "secret")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	feed, err := grpcapi.Subscribe(ctx, conn)
	if err == nil {
		_, err = feed.Recv()
	}
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	authed := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer secret")
	feed, err = grpcapi.Subscribe(authed, conn)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.SubscriberCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(types.ChangeEvent{RecordID: "9", EntityType: types.EntityParking, Field: "remarksColumn"})
	ev, err := feed.Recv()
	require.NoError(t, err)
	assert.Equal(t, "9", ev.GetFields()["id"].GetStringValue())
}

func TestChangeFeed_TooManySubscribers(t *testing.T) {
	hub := broadcast.NewHub(nil, 1, 8)
	defer hub.Close()
	_, err := hub.Subscribe(0)
	require.NoError(t, err)

	conn := startServer(t, hub, "")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	feed, err := grpcapi.Subscribe(ctx, conn)
	if err == nil {
		_, err = feed.Recv()
	}
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
