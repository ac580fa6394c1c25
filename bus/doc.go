// Package bus is the entity lifecycle layer of wirebus. A Context owns
// one backend plus the bookkeeping shared by every entity created
// through it: the live-entity registry, the error sink, the allocator,
// and the graph guard that wakes watchers on membership changes.
//
// Entities form a strict ownership chain: the Context creates Nodes,
// Nodes create Publishers and Subscriptions, and destruction runs in
// the reverse order. Destruction is not idempotent; destroying a handle
// twice is a caller error and is reported as one.
//
// Every entity carries the implementation identifier of the backend
// that created it. Lifecycle operations compare that identifier against
// the serving backend before touching anything else, so a handle from a
// different backend build is rejected instead of misinterpreted.
package bus
