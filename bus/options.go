package bus

import (
	"log/slog"

	"github.com/c360/wirebus/message"
	"github.com/c360/wirebus/metric"
	"github.com/c360/wirebus/qos"
)

// InitOptions configures a Context at creation time
type InitOptions struct {
	// Enclave names the security enclave this session runs in. Purely
	// informational for backends that do not enforce enclaves.
	Enclave string

	// Allocator supplies buffers for serialized messages. Defaults to
	// the heap allocator.
	Allocator message.Allocator

	// Logger receives lifecycle events. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics enables entity lifecycle instrumentation. Optional.
	Metrics *metric.MetricsRegistry
}

// DefaultInitOptions returns the options used when callers pass nothing
func DefaultInitOptions() InitOptions {
	return InitOptions{
		Enclave:   "/",
		Allocator: message.DefaultAllocator(),
		Logger:    slog.Default(),
	}
}

// PublisherOptions configures a publisher at creation time
type PublisherOptions struct {
	// QoS is the requested profile. SystemDefault sentinels are resolved
	// against the backend's defaults at creation.
	QoS qos.Profile
}

// DefaultPublisherOptions returns publisher options requesting the
// default profile
func DefaultPublisherOptions() *PublisherOptions {
	return &PublisherOptions{QoS: qos.DefaultProfile()}
}

// SubscriptionOptions configures a subscription at creation time
type SubscriptionOptions struct {
	// QoS is the requested profile. SystemDefault sentinels are resolved
	// against the backend's defaults at creation.
	QoS qos.Profile

	// IgnoreLocalPublications drops messages published by endpoints of
	// the same node. Honored only by backends that track message origin.
	IgnoreLocalPublications bool
}

// DefaultSubscriptionOptions returns subscription options requesting
// the default profile
func DefaultSubscriptionOptions() *SubscriptionOptions {
	return &SubscriptionOptions{QoS: qos.DefaultProfile()}
}
