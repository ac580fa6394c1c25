package bus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/wirebus/backend"
	"github.com/c360/wirebus/errors"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// faultBackend is a minimal in-memory backend whose endpoints fail
// Close on demand, for exercising the destroy error path.
type faultBackend struct {
	closeErr error
}

func (f *faultBackend) ImplementationID() string { return "wirebus_faultbus" }
func (f *faultBackend) DefaultQoS() qos.Profile  { return qos.DefaultProfile() }

func (f *faultBackend) CreatePublisher(context.Context, backend.EndpointInfo) (backend.Publisher, error) {
	return &faultEndpoint{backend: f}, nil
}

func (f *faultBackend) CreateSubscription(context.Context, backend.EndpointInfo) (backend.Subscription, error) {
	return &faultEndpoint{backend: f}, nil
}

func (f *faultBackend) CountMatched(string, registry.EntityKind) (int, error) { return 0, nil }
func (f *faultBackend) Close() error                                          { return nil }

type faultEndpoint struct {
	backend *faultBackend
	closes  int
}

func (e *faultEndpoint) Publish(context.Context, []byte) error      { return nil }
func (e *faultEndpoint) Take(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (e *faultEndpoint) TryTake() ([]byte, bool, error)             { return nil, false, nil }

func (e *faultEndpoint) Close() error {
	e.closes++
	return e.backend.closeErr
}

func newFaultContext(t *testing.T) (*Context, *faultBackend) {
	t.Helper()
	fault := &faultBackend{}
	ctx, err := NewContext(fault, InitOptions{})
	require.NoError(t, err)
	return ctx, fault
}

func TestDestroySubscriptionKeepsEntryWhenCloseFails(t *testing.T) {
	ctx, fault := newFaultContext(t)
	node := newTestNode(t, ctx)

	sub, err := node.CreateSubscription(context.Background(), basicTypes(), "chatter", DefaultSubscriptionOptions())
	require.NoError(t, err)
	require.Equal(t, 2, ctx.LiveEntities())

	fault.closeErr = fmt.Errorf("broker unreachable")
	err = node.DestroySubscription(sub)
	require.Error(t, err)
	assert.True(t, errors.IsBackendFailure(err))

	// The handle stays registered, so a corrected retry can succeed.
	assert.Equal(t, 2, ctx.LiveEntities())

	fault.closeErr = nil
	require.NoError(t, node.DestroySubscription(sub))
	assert.Equal(t, 1, ctx.LiveEntities())

	// A destroy after deregistration never reaches the endpoint again.
	endpoint := sub.endpoint.(*faultEndpoint)
	closesAfterSuccess := endpoint.closes
	err = node.DestroySubscription(sub)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotRegistered)
	assert.Equal(t, closesAfterSuccess, endpoint.closes)
}

func TestDestroyPublisherKeepsEntryWhenCloseFails(t *testing.T) {
	ctx, fault := newFaultContext(t)
	node := newTestNode(t, ctx)

	pub, err := node.CreatePublisher(context.Background(), basicTypes(), "chatter", DefaultPublisherOptions())
	require.NoError(t, err)
	require.Equal(t, 2, ctx.LiveEntities())

	fault.closeErr = fmt.Errorf("broker unreachable")
	err = node.DestroyPublisher(pub)
	require.Error(t, err)
	assert.True(t, errors.IsBackendFailure(err))
	assert.Equal(t, 2, ctx.LiveEntities())

	fault.closeErr = nil
	require.NoError(t, node.DestroyPublisher(pub))
	assert.Equal(t, 1, ctx.LiveEntities())
}
