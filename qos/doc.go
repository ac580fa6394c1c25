// Package qos defines the quality-of-service profile shared by publishers
// and subscriptions, the sentinel values legal only in requested profiles
// (system default, unknown), the preset profiles, and the resolver that
// turns a requested profile into the concrete profile a backend will honor.
package qos
