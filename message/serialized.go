package message

import (
	"fmt"

	"github.com/c360/wirebus/errors"
)

// Serialized is a length-tracked byte buffer for messages in wire form.
// Its storage comes from an explicit Allocator so transport code can use
// pooled buffers. The zero value is uninitialized; Resize and Release on
// an uninitialized buffer are errors, mirroring the entity rule that
// double-destroy is a caller error.
type Serialized struct {
	buf      []byte
	length   int
	capacity int
	alloc    Allocator
}

// NewSerialized creates a buffer with the given capacity. A zero capacity
// is valid and defers allocation to the first growing Resize.
func NewSerialized(capacity int, alloc Allocator) (*Serialized, error) {
	if capacity < 0 {
		return nil, errors.WrapInvalid(
			fmt.Errorf("capacity %d is negative", capacity),
			"Serialized", "NewSerialized", "capacity validation")
	}
	if alloc == nil {
		return nil, errors.WrapInvalid(
			errors.ErrInvalidArgument, "Serialized", "NewSerialized", "allocator validation")
	}

	s := &Serialized{alloc: alloc}
	if capacity > 0 {
		buf, err := alloc.Allocate(capacity)
		if err != nil {
			return nil, errors.WrapBackend(err, "Serialized", "NewSerialized", "buffer allocation")
		}
		s.buf = buf
		s.capacity = capacity
	}
	return s, nil
}

// Length returns the number of meaningful bytes in the buffer
func (s *Serialized) Length() int {
	return s.length
}

// Capacity returns the allocated size of the buffer
func (s *Serialized) Capacity() int {
	return s.capacity
}

// Bytes returns the meaningful portion of the buffer. The slice aliases
// the internal storage and is invalidated by Resize and Release.
func (s *Serialized) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return s.buf[:s.length]
}

// SetData copies data into the buffer, growing it if needed, and updates
// the length.
func (s *Serialized) SetData(data []byte) error {
	if s.alloc == nil {
		return errors.WrapInvalid(
			errors.ErrInvalidArgument, "Serialized", "SetData", "initialization check")
	}
	if len(data) > s.capacity {
		if err := s.Resize(len(data)); err != nil {
			return err
		}
	}
	copy(s.buf, data)
	s.length = len(data)
	return nil
}

// Resize changes the buffer capacity. Shrinking truncates in place without
// reallocating; growing allocates a new buffer and preserves existing
// content. Resizing to zero or resizing an uninitialized buffer is an
// error.
func (s *Serialized) Resize(capacity int) error {
	if s.alloc == nil {
		return errors.WrapInvalid(
			errors.ErrInvalidArgument, "Serialized", "Resize", "initialization check")
	}
	if capacity <= 0 {
		return errors.WrapInvalid(
			fmt.Errorf("capacity %d is not positive", capacity),
			"Serialized", "Resize", "capacity validation")
	}

	if capacity <= s.capacity {
		s.capacity = capacity
		s.buf = s.buf[:capacity]
		if s.length > capacity {
			s.length = capacity
		}
		return nil
	}

	grown, err := s.alloc.Allocate(capacity)
	if err != nil {
		return errors.WrapBackend(err, "Serialized", "Resize", "buffer allocation")
	}
	copy(grown, s.buf[:s.length])
	s.alloc.Deallocate(s.buf)
	s.buf = grown
	s.capacity = capacity
	return nil
}

// Release returns the storage to the allocator. Releasing an uninitialized
// or already-released buffer is an error, not a no-op.
func (s *Serialized) Release() error {
	if s.alloc == nil {
		return errors.WrapInvalid(
			errors.ErrInvalidArgument, "Serialized", "Release", "initialization check")
	}

	s.alloc.Deallocate(s.buf)
	s.buf = nil
	s.length = 0
	s.capacity = 0
	s.alloc = nil
	return nil
}
