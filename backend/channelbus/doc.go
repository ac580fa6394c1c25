// Package channelbus implements the wirebus backend port on watermill's
// in-process GoChannel pub/sub. It needs no external broker, which makes
// it the backend of choice for tests and for embedding wirebus inside a
// single process.
//
// Durability is modeled with two GoChannel instances: a volatile bus and
// a persistent one that replays history to late-joining subscribers.
// Endpoints match only within their durability class; a transient-local
// publisher is not visible to a volatile subscriber.
package channelbus
