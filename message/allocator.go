package message

import (
	"fmt"

	"github.com/c360/wirebus/errors"
)

// Allocator abstracts transient buffer allocation so callers can supply
// pooled or instrumented allocators. Implementations must be safe for
// concurrent use.
type Allocator interface {
	// Allocate returns a buffer of exactly size bytes
	Allocate(size int) ([]byte, error)
	// Deallocate releases a buffer obtained from Allocate
	Deallocate(buf []byte)
}

// defaultAllocator allocates from the Go heap
type defaultAllocator struct{}

func (defaultAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("allocation size %d is negative", size),
			"Allocator", "Allocate", "size validation")
	}
	return make([]byte, size), nil
}

func (defaultAllocator) Deallocate(_ []byte) {
	// The garbage collector reclaims heap buffers.
}

// DefaultAllocator returns the process-wide heap allocator
func DefaultAllocator() Allocator {
	return defaultAllocator{}
}

// FailingAllocator always fails to allocate. It exists to exercise
// allocation-failure paths in tests.
type FailingAllocator struct{}

// Allocate always returns ErrBadAlloc
func (FailingAllocator) Allocate(size int) ([]byte, error) {
	return nil, errors.WrapBackend(
		fmt.Errorf("refusing to allocate %d bytes: %w", size, errors.ErrBadAlloc),
		"FailingAllocator", "Allocate", "allocation")
}

// Deallocate is a no-op
func (FailingAllocator) Deallocate(_ []byte) {}
