package channelbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

func endpointInfo(topic string, profile qos.Profile) backend.EndpointInfo {
	return backend.EndpointInfo{
		Topic:       topic,
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         profile,
		Node:        "test_node",
	}
}

func TestPublishTake(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	ctx := context.Background()
	sub, err := b.CreateSubscription(ctx, endpointInfo("/chatter", qos.DefaultProfile()))
	require.NoError(t, err)
	pub, err := b.CreatePublisher(ctx, endpointInfo("/chatter", qos.DefaultProfile()))
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, []byte("hello")))

	takeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	data, taken, err := sub.Take(takeCtx)
	require.NoError(t, err)
	require.True(t, taken)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, pub.Close())
	require.NoError(t, sub.Close())
}

func TestTryTakeEmpty(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	sub, err := b.CreateSubscription(context.Background(), endpointInfo("/empty", qos.DefaultProfile()))
	require.NoError(t, err)
	defer func() { require.NoError(t, sub.Close()) }()

	data, taken, err := sub.TryTake()
	require.NoError(t, err)
	assert.False(t, taken)
	assert.Nil(t, data)
}

func TestTakeHonorsContext(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	sub, err := b.CreateSubscription(context.Background(), endpointInfo("/silent", qos.DefaultProfile()))
	require.NoError(t, err)
	defer func() { require.NoError(t, sub.Close()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, taken, err := sub.Take(ctx)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestKeepLastDropsOldest(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	profile := qos.DefaultProfile()
	profile.Depth = 2

	ctx := context.Background()
	sub, err := b.CreateSubscription(ctx, endpointInfo("/bounded", profile))
	require.NoError(t, err)
	defer func() { require.NoError(t, sub.Close()) }()
	pub, err := b.CreatePublisher(ctx, endpointInfo("/bounded", profile))
	require.NoError(t, err)
	defer func() { require.NoError(t, pub.Close()) }()

	for _, payload := range []string{"one", "two", "three"} {
		require.NoError(t, pub.Publish(ctx, []byte(payload)))
	}

	// Give the pump goroutine time to drain the channel into the queue.
	deadline := time.Now().Add(time.Second)
	var got []string
	for len(got) < 2 && time.Now().Before(deadline) {
		if data, taken, _ := sub.TryTake(); taken {
			got = append(got, string(data))
		} else {
			time.Sleep(5 * time.Millisecond)
		}
	}

	require.Len(t, got, 2)
	assert.Equal(t, []string{"two", "three"}, got)
}

func TestTransientLocalReplaysToLateJoiner(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	profile := qos.TransientLocalProfile()
	ctx := context.Background()

	pub, err := b.CreatePublisher(ctx, endpointInfo("/latched", profile))
	require.NoError(t, err)
	defer func() { require.NoError(t, pub.Close()) }()

	require.NoError(t, pub.Publish(ctx, []byte("last value")))

	// The subscriber joins after the publish and still sees the message.
	sub, err := b.CreateSubscription(ctx, endpointInfo("/latched", profile))
	require.NoError(t, err)
	defer func() { require.NoError(t, sub.Close()) }()

	takeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	data, taken, err := sub.Take(takeCtx)
	require.NoError(t, err)
	require.True(t, taken)
	assert.Equal(t, []byte("last value"), data)
}

func TestCountMatched(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	ctx := context.Background()
	pub, err := b.CreatePublisher(ctx, endpointInfo("/counted", qos.DefaultProfile()))
	require.NoError(t, err)
	sub, err := b.CreateSubscription(ctx, endpointInfo("/counted", qos.DefaultProfile()))
	require.NoError(t, err)

	n, err := b.CountMatched("/counted", registry.KindPublisher)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = b.CountMatched("/counted", registry.KindSubscription)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, pub.Close())
	require.NoError(t, sub.Close())

	n, err = b.CountMatched("/counted", registry.KindPublisher)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRejectsUnresolvedQoS(t *testing.T) {
	b := New()
	defer func() { require.NoError(t, b.Close()) }()

	ctx := context.Background()
	_, err := b.CreatePublisher(ctx, endpointInfo("/bad", qos.SystemDefaultProfile()))
	assert.Error(t, err)
	_, err = b.CreateSubscription(ctx, endpointInfo("/bad", qos.UnknownProfile()))
	assert.Error(t, err)
}

func TestClosedBackendRejectsCreation(t *testing.T) {
	b := New()
	require.NoError(t, b.Close())

	ctx := context.Background()
	_, err := b.CreatePublisher(ctx, endpointInfo("/late", qos.DefaultProfile()))
	assert.Error(t, err)
	_, err = b.CreateSubscription(ctx, endpointInfo("/late", qos.DefaultProfile()))
	assert.Error(t, err)

	// Closing twice is harmless at the backend level.
	assert.NoError(t, b.Close())
}
