// Package message provides the data-plane value types shared by all
// backends: serialized message buffers with explicit allocator control,
// the allocator interface itself, and the opaque type-support descriptor
// that binds an endpoint to a message type. Type-support descriptors are
// borrowed by the entities that use them; this package never takes
// ownership of caller storage.
package message
