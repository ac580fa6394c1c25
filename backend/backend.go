package backend

import (
	"context"

	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/qos"
	"github.com/c360/wirebus/registry"
)

// EndpointInfo carries everything a backend needs to allocate a concrete
// endpoint. The QoS profile is always resolved: sentinels never cross
// this boundary.
type EndpointInfo struct {
	// Topic is the fully qualified topic name
	Topic string
	// TypeSupport describes the message type bound to the endpoint.
	// Borrowed from the caller; backends must not retain it past Close.
	TypeSupport *message.TypeSupport
	// QoS is the resolved profile the endpoint must honor
	QoS qos.Profile
	// Node is the owning node's name, for diagnostics
	Node string
}

// Publisher is a backend-owned sending endpoint
type Publisher interface {
	// Publish sends one message in wire form. May block in transport I/O.
	Publish(ctx context.Context, data []byte) error
	// Close releases the endpoint's transport resources
	Close() error
}

// Subscription is a backend-owned receiving endpoint
type Subscription interface {
	// Take blocks until a message arrives or ctx is done. It returns
	// taken=false with a nil error when ctx ends first.
	Take(ctx context.Context) (data []byte, taken bool, err error)
	// TryTake returns immediately; taken=false means nothing was pending
	TryTake() (data []byte, taken bool, err error)
	// Close releases the endpoint's transport resources
	Close() error
}

// Interface is the port a concrete messaging backend satisfies. Creation
// calls may block while the backend performs I/O during entity setup;
// everything above this interface is synchronous and non-blocking.
type Interface interface {
	// ImplementationID returns the identifier stamped on every entity
	// this backend creates. Unique per backend build; compared by value.
	ImplementationID() string

	// DefaultQoS returns the backend's configured defaults used to
	// resolve system-default sentinels. Must be fully concrete.
	DefaultQoS() qos.Profile

	// CreatePublisher allocates a sending endpoint
	CreatePublisher(ctx context.Context, info EndpointInfo) (Publisher, error)

	// CreateSubscription allocates a receiving endpoint
	CreateSubscription(ctx context.Context, info EndpointInfo) (Subscription, error)

	// CountMatched reports how many endpoints of the given kind this
	// backend currently matches on a topic
	CountMatched(topic string, kind registry.EntityKind) (int, error)

	// Close releases all backend resources
	Close() error
}
