// Package natsclient manages the NATS connection shared by the NATS
// backend. It owns connection establishment, reconnect policy,
// authentication and TLS wiring, and drains the connection on close so
// in-flight messages are not dropped. JetStream access hangs off the
// same connection and is initialized lazily on first use.
package natsclient
