// Package wirebus is a pluggable publish/subscribe middleware
// abstraction. It separates the lifecycle of messaging entities from
// the transport that carries their messages: applications create
// nodes, publishers, and subscriptions against a stable API, and a
// backend implementation supplies discovery, matching, and delivery.
//
// # Architecture
//
// The module is layered from the bottom up:
//
//   - qos: quality-of-service profiles, sentinels, and resolution
//   - names: the topic and node name grammar
//   - message: serialized buffers, allocators, and type support
//   - registry: in-process bookkeeping of live entities
//   - backend: the port a concrete transport implements
//   - bus: the entity lifecycle layer tying the above together
//
// Two backends ship with the module: backend/channelbus runs entirely
// in process on watermill channels, and backend/natsbus carries
// messages over NATS with JetStream providing transient-local
// durability.
//
// # Entity lifecycle
//
// A bus.Context owns one backend and all entities created through it.
// Creation validates arguments in a fixed order, resolves the
// requested QoS profile against the backend's defaults, and registers
// the entity; destruction reverses creation and is deliberately not
// idempotent. Every entity is stamped with the implementation
// identifier of its backend, and lifecycle operations reject handles
// whose identifier does not match the serving backend.
package wirebus
