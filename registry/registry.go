package registry

import (
	"fmt"
	"sync"

	"github.com/c360/wirebus/errors"
)

// EntityKind identifies what a registered handle refers to
type EntityKind int

const (
	// KindNode is a participant in the communication graph
	KindNode EntityKind = iota
	// KindPublisher is a topic endpoint that sends messages
	KindPublisher
	// KindSubscription is a topic endpoint that receives messages
	KindSubscription
)

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	switch k {
	case KindNode:
		return "node"
	case KindPublisher:
		return "publisher"
	case KindSubscription:
		return "subscription"
	default:
		return "unknown"
	}
}

// Entry describes one live entity
type Entry struct {
	ID               string     // Unique handle identifier
	Kind             EntityKind // Node, publisher, or subscription
	Topic            string     // Fully qualified topic, empty for nodes
	NodeID           string     // Owning node, empty for nodes themselves
	ImplementationID string     // Backend that created the entity
}

// Registry is the in-process bookkeeping of live entities. All operations
// are safe for concurrent use; a lookup never observes a partially
// inserted or partially removed entry.
type Registry struct {
	entries map[string]Entry
	mu      sync.RWMutex
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Insert registers a newly created entity. Returns an error if the ID is
// empty or already registered.
func (r *Registry) Insert(entry Entry) error {
	if entry.ID == "" {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Registry", "Insert", "entity ID validation")
	}
	if entry.ImplementationID == "" {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Registry", "Insert", "implementation ID validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		msg := fmt.Errorf("entity '%s' is already registered", entry.ID)
		return errors.WrapInvalid(msg, "Registry", "Insert", "duplicate entity check")
	}

	r.entries[entry.ID] = entry
	return nil
}

// Remove deregisters an entity on destruction. Removing a handle that is
// not registered returns ErrNotRegistered: destruction is not idempotent
// and a second destroy is a caller error.
func (r *Registry) Remove(id string) error {
	if id == "" {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "Registry", "Remove", "entity ID validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; !exists {
		return errors.WrapInvalid(
			fmt.Errorf("entity '%s': %w", id, errors.ErrNotRegistered),
			"Registry", "Remove", "registration check")
	}

	delete(r.entries, id)
	return nil
}

// Lookup returns the entry for a handle, if registered
func (r *Registry) Lookup(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	return entry, ok
}

// Contains reports whether a handle is currently registered
func (r *Registry) Contains(id string) bool {
	_, ok := r.Lookup(id)
	return ok
}

// Len returns the number of live entities
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.entries)
}

// CountByKind returns the number of live entities of one kind
func (r *Registry) CountByKind(kind EntityKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if entry.Kind == kind {
			count++
		}
	}
	return count
}

// CountByTopic returns the number of live entities of one kind bound to a
// topic. Used for discovery matching queries.
func (r *Registry) CountByTopic(topic string, kind EntityKind) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, entry := range r.entries {
		if entry.Kind == kind && entry.Topic == topic {
			count++
		}
	}
	return count
}

// ListByNode returns the entries owned by a node. The caller contract is
// that all of them are destroyed before the node itself.
func (r *Registry) ListByNode(nodeID string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var owned []Entry
	for _, entry := range r.entries {
		if entry.NodeID == nodeID {
			owned = append(owned, entry)
		}
	}
	return owned
}
