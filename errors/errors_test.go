package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorInvalid, "invalid_argument"},
		{ErrorIncorrectImplementation, "incorrect_implementation"},
		{ErrorUnsupported, "unsupported"},
		{ErrorBackend, "error"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsInvalidArgument(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid argument", ErrInvalidArgument, true},
		{"invalid name", ErrInvalidName, true},
		{"invalid qos", ErrInvalidQoS, true},
		{"not registered", ErrNotRegistered, true},
		{"invalid context", ErrInvalidContext, true},
		{"identifier mismatch", ErrIncorrectImplementation, false},
		{"backend failure", ErrBackendFailure, false},
		{"wrapped invalid", fmt.Errorf("create: %w", ErrInvalidArgument), true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"classified backend", &ClassifiedError{Class: ErrorBackend, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalidArgument(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsIncorrectImplementation(t *testing.T) {
	if !IsIncorrectImplementation(ErrIncorrectImplementation) {
		t.Error("sentinel should classify as incorrect implementation")
	}
	if !IsIncorrectImplementation(fmt.Errorf("destroy: %w", ErrIncorrectImplementation)) {
		t.Error("wrapped sentinel should classify as incorrect implementation")
	}
	if IsIncorrectImplementation(ErrInvalidArgument) {
		t.Error("invalid argument should not classify as incorrect implementation")
	}
	if IsIncorrectImplementation(nil) {
		t.Error("nil should not classify as incorrect implementation")
	}
}

func TestIsUnsupported(t *testing.T) {
	if !IsUnsupported(ErrUnsupportedQoS) {
		t.Error("sentinel should classify as unsupported")
	}
	err := WrapUnsupported(fmt.Errorf("keep-all over volatile transport"), "natsbus", "CreateSubscription", "qos resolution")
	if !IsUnsupported(err) {
		t.Error("WrapUnsupported result should classify as unsupported")
	}
	if IsUnsupported(ErrBackendFailure) {
		t.Error("backend failure should not classify as unsupported")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"invalid argument", ErrInvalidArgument, ErrorInvalid},
		{"identifier mismatch", ErrIncorrectImplementation, ErrorIncorrectImplementation},
		{"unsupported qos", ErrUnsupportedQoS, ErrorUnsupported},
		{"backend failure", ErrBackendFailure, ErrorBackend},
		{"bad alloc", ErrBadAlloc, ErrorBackend},
		{"unknown error", fmt.Errorf("something else"), ErrorBackend},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v", test.expected, result)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	baseErr := fmt.Errorf("base error")
	wrapped := Wrap(baseErr, "Node", "CreateSubscription", "topic validation")

	expected := "Node.CreateSubscription: topic validation failed: base error"
	if wrapped.Error() != expected {
		t.Errorf("expected %q, got %q", expected, wrapped.Error())
	}
	if !errors.Is(wrapped, baseErr) {
		t.Error("wrapped error should unwrap to base error")
	}
	if Wrap(nil, "Node", "CreateSubscription", "anything") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := WrapInvalid(ErrInvalidName, "Node", "CreateSubscription", "topic validation")

	if !errors.Is(err, ErrInvalidName) {
		t.Error("classified error should unwrap to sentinel")
	}
	if !IsInvalidArgument(err) {
		t.Error("classified error should keep its class")
	}
	if !strings.Contains(err.Error(), "Node.CreateSubscription") {
		t.Errorf("error message should carry context, got %q", err.Error())
	}
}

func TestState(t *testing.T) {
	s := NewState()

	if s.HasError() {
		t.Error("new state should have no pending error")
	}
	if s.Last() != nil {
		t.Error("new state should return nil from Last")
	}

	// Reset with nothing pending is a no-op
	s.Reset()
	if s.HasError() {
		t.Error("reset of empty state should stay empty")
	}

	err := WrapInvalid(ErrInvalidArgument, "Node", "CreateSubscription", "null type support")
	s.Set(err)

	if !s.HasError() {
		t.Error("state should report pending error after Set")
	}
	if s.Last() == nil || !errors.Is(s.Last(), ErrInvalidArgument) {
		t.Errorf("Last should return the recorded error, got %v", s.Last())
	}
	if s.Message() == "" {
		t.Error("Message should return the recorded text")
	}

	// Message stays retrievable until reset
	if s.Last() == nil {
		t.Error("repeated Last should still return the recorded error")
	}

	s.Reset()
	if s.HasError() || s.Last() != nil || s.Message() != "" {
		t.Error("reset should clear all pending state")
	}

	// Setting nil is ignored
	s.Set(nil)
	if s.HasError() {
		t.Error("Set(nil) should not record anything")
	}
}

func TestStateRecord(t *testing.T) {
	s := NewState()

	if s.Record(nil) != nil {
		t.Error("Record(nil) should return nil")
	}
	if s.HasError() {
		t.Error("Record(nil) should not record anything")
	}

	err := fmt.Errorf("endpoint setup failed")
	if got := s.Record(err); got != err {
		t.Errorf("Record should return its argument, got %v", got)
	}
	if s.Last() != err {
		t.Error("Record should store its argument")
	}
}
