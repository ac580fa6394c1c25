package errors

import (
	"fmt"
	"sync"
	"time"
)

// State is the error sink shared by a middleware session. Failing lifecycle
// operations record a human-readable message into it; the message stays
// retrievable until the caller clears it. Reset with nothing pending is a
// no-op.
type State struct {
	mu      sync.RWMutex
	err     error
	message string
	setAt   time.Time
}

// NewState creates an empty error sink
func NewState() *State {
	return &State{}
}

// Set records err as the pending failure. A nil err is ignored so callers
// can pass through return values unconditionally.
func (s *State) Set(err error) {
	if err == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = err
	s.message = err.Error()
	s.setAt = time.Now()
}

// Setf records a formatted failure message without an underlying error value
func (s *State) Setf(format string, args ...any) {
	s.Set(newClassified(ErrorBackend, ErrBackendFailure, "", "", fmt.Sprintf(format, args...)))
}

// Last returns the pending failure, or nil when nothing is pending
func (s *State) Last() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

// Message returns the pending failure text, or the empty string
func (s *State) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.message
}

// HasError reports whether a failure is pending
func (s *State) HasError() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err != nil
}

// Reset clears the pending failure. Idempotent.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.err = nil
	s.message = ""
	s.setAt = time.Time{}
}

// Record wraps the common "set and return" pattern so call sites stay on
// one line: it records err into the sink and returns it unchanged.
func (s *State) Record(err error) error {
	s.Set(err)
	return err
}
