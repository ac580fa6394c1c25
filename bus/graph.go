package bus

import "context"

// GraphGuard wakes watchers when the entity graph changes. Creating or
// destroying any entity triggers it. Triggers coalesce: a waiter that
// missed several triggers wakes exactly once.
type GraphGuard struct {
	ch chan struct{}
}

// NewGraphGuard creates an untriggered guard
func NewGraphGuard() *GraphGuard {
	return &GraphGuard{ch: make(chan struct{}, 1)}
}

// Trigger marks the guard. Never blocks.
func (g *GraphGuard) Trigger() {
	select {
	case g.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until the guard is triggered or ctx ends. It returns true
// when a trigger was consumed.
func (g *GraphGuard) Wait(ctx context.Context) bool {
	select {
	case <-g.ch:
		return true
	case <-ctx.Done():
		return false
	}
}

// TryWait consumes a pending trigger without blocking
func (g *GraphGuard) TryWait() bool {
	select {
	case <-g.ch:
		return true
	default:
		return false
	}
}
