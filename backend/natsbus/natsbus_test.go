package natsbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/natsclient"
	"github.com/c360/wirebus/qos"
)

func testBackend(t *testing.T, opts ...Option) *Backend {
	t.Helper()
	client, err := natsclient.NewClient("nats://localhost:4222")
	require.NoError(t, err)
	b, err := New(client, opts...)
	require.NoError(t, err)
	return b
}

func TestNewRequiresClient(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestSubjectMapping(t *testing.T) {
	b := testBackend(t)

	tests := []struct {
		topic string
		want  string
	}{
		{"/chatter", "wirebus.chatter"},
		{"/robot/cmd_vel", "wirebus.robot.cmd_vel"},
		{"/a/b/c", "wirebus.a.b.c"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.SubjectFor(tt.topic))
	}
}

func TestSubjectPrefixOverride(t *testing.T) {
	b := testBackend(t, WithSubjectPrefix("fleet"))
	assert.Equal(t, "fleet.robot.odom", b.SubjectFor("/robot/odom"))
	assert.Equal(t, "FLEET_robot_odom", b.streamNameFor("/robot/odom"))
}

func TestRejectsKeepAllVolatile(t *testing.T) {
	b := testBackend(t)

	profile := qos.DefaultProfile()
	profile.History = qos.HistoryKeepAll
	profile.Depth = 0

	info := backend.EndpointInfo{
		Topic:       "/chatter",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         profile,
	}

	_, err := b.CreatePublisher(context.Background(), info)
	assert.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))

	_, err = b.CreateSubscription(context.Background(), info)
	assert.Error(t, err)
	assert.True(t, errors.IsUnsupported(err))
}

func TestReliabilitySelectsPublishConfirmation(t *testing.T) {
	b := testBackend(t)

	info := backend.EndpointInfo{
		Topic:       "/chatter",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         qos.SensorDataProfile(),
	}
	pub, err := b.CreatePublisher(context.Background(), info)
	require.NoError(t, err)
	assert.False(t, pub.(*publisher).reliable)
	assert.False(t, pub.(*publisher).durable)

	// The default profile is reliable volatile: core NATS plus a flush.
	info.QoS = qos.DefaultProfile()
	pub, err = b.CreatePublisher(context.Background(), info)
	require.NoError(t, err)
	assert.True(t, pub.(*publisher).reliable)
	assert.False(t, pub.(*publisher).durable)
}

func TestRejectsUnresolvedQoS(t *testing.T) {
	b := testBackend(t)

	info := backend.EndpointInfo{
		Topic:       "/chatter",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         qos.SystemDefaultProfile(),
	}
	_, err := b.CreatePublisher(context.Background(), info)
	assert.Error(t, err)
}

func TestClosedBackendRejectsCreation(t *testing.T) {
	b := testBackend(t)
	require.NoError(t, b.Close())

	info := backend.EndpointInfo{
		Topic:       "/late",
		TypeSupport: message.RawTypeSupport("test_msgs/BasicTypes"),
		QoS:         qos.DefaultProfile(),
	}
	_, err := b.CreatePublisher(context.Background(), info)
	assert.Error(t, err)

	_, err = b.CountMatched("/late", 0)
	assert.Error(t, err)
}
