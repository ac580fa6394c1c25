//go:build integration

package natsbus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/natsclient"
	"github.com/c360/wirebus/qos"
)

func natsURL() string {
	if url := os.Getenv("NATS_URL"); url != "" {
		return url
	}
	return "nats://localhost:4222"
}

func connectedBackend(t *testing.T) (*Backend, *natsclient.Client) {
	t.Helper()

	client, err := natsclient.NewClient(natsURL(), natsclient.WithName("natsbus-test"))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Connect(ctx); err != nil {
		t.Skipf("NATS server not available at %s: %v", natsURL(), err)
	}

	b, err := New(client)
	require.NoError(t, err)
	return b, client
}

func TestIntegrationVolatileRoundTrip(t *testing.T) {
	b, client := connectedBackend(t)
	defer client.Close(context.Background())
	defer b.Close()

	ctx := context.Background()
	info := backend.EndpointInfo{
		Topic:       "/integration/chatter",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         qos.DefaultProfile(),
		Node:        "itest",
	}

	sub, err := b.CreateSubscription(ctx, info)
	require.NoError(t, err)
	defer sub.Close()

	pub, err := b.CreatePublisher(ctx, info)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(ctx, []byte("over the wire")))

	takeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	data, taken, err := sub.Take(takeCtx)
	require.NoError(t, err)
	require.True(t, taken)
	assert.Equal(t, []byte("over the wire"), data)
}

func TestIntegrationTransientLocalReplay(t *testing.T) {
	b, client := connectedBackend(t)
	defer client.Close(context.Background())
	defer b.Close()

	ctx := context.Background()
	info := backend.EndpointInfo{
		Topic:       "/integration/latched",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         qos.TransientLocalProfile(),
		Node:        "itest",
	}

	pub, err := b.CreatePublisher(ctx, info)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(ctx, []byte("retained")))

	// Subscriber joins after the publish and replays from the stream.
	sub, err := b.CreateSubscription(ctx, info)
	require.NoError(t, err)
	defer sub.Close()

	takeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	data, taken, err := sub.Take(takeCtx)
	require.NoError(t, err)
	require.True(t, taken)
	assert.Equal(t, []byte("retained"), data)
}
