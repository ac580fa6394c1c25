package errors

import (
	"errors"
	"fmt"
)

// ErrorClass represents the classification of errors for handling purposes
type ErrorClass int

const (
	// ErrorInvalid represents errors due to invalid arguments or entity state
	ErrorInvalid ErrorClass = iota
	// ErrorIncorrectImplementation represents a foreign-backend handle being
	// passed to an operation serviced by a different backend
	ErrorIncorrectImplementation
	// ErrorUnsupported represents a requested QoS value the active backend
	// cannot satisfy
	ErrorUnsupported
	// ErrorBackend represents a generic backend-level failure distinct from
	// argument problems (resource exhaustion, transport setup failure)
	ErrorBackend
)

// String returns the string representation of ErrorClass
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorInvalid:
		return "invalid_argument"
	case ErrorIncorrectImplementation:
		return "incorrect_implementation"
	case ErrorUnsupported:
		return "unsupported"
	case ErrorBackend:
		return "error"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions
var (
	// Argument and entity state errors
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidName     = errors.New("invalid name")
	ErrInvalidQoS      = errors.New("invalid qos profile")
	ErrNotRegistered   = errors.New("entity not registered")
	ErrInvalidContext  = errors.New("context not valid for entity creation")

	// Implementation identity errors
	ErrIncorrectImplementation = errors.New("implementation identifier mismatch")

	// QoS resolution errors
	ErrUnsupportedQoS = errors.New("qos value unsupported by backend")

	// Backend errors
	ErrBackendFailure = errors.New("backend operation failed")
	ErrBadAlloc       = errors.New("allocation failed")
	ErrShuttingDown   = errors.New("context is shutting down")
)

// ClassifiedError wraps an error with its classification
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsInvalidArgument checks if an error is due to an invalid argument
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Class == ErrorInvalid {
		return true
	}

	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrInvalidQoS) ||
		errors.Is(err, ErrNotRegistered) ||
		errors.Is(err, ErrInvalidContext)
}

// IsIncorrectImplementation checks if an error is an implementation
// identifier mismatch
func IsIncorrectImplementation(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Class == ErrorIncorrectImplementation {
		return true
	}

	return errors.Is(err, ErrIncorrectImplementation)
}

// IsUnsupported checks if an error is an unsupported QoS request
func IsUnsupported(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Class == ErrorUnsupported {
		return true
	}

	return errors.Is(err, ErrUnsupportedQoS)
}

// IsBackendFailure checks if an error is a generic backend failure
func IsBackendFailure(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) && ce.Class == ErrorBackend {
		return true
	}

	return errors.Is(err, ErrBackendFailure) || errors.Is(err, ErrBadAlloc)
}

// Classify returns the error class for an error
func Classify(err error) ErrorClass {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class
	}

	switch {
	case IsIncorrectImplementation(err):
		return ErrorIncorrectImplementation
	case IsUnsupported(err):
		return ErrorUnsupported
	case IsInvalidArgument(err):
		return ErrorInvalid
	default:
		return ErrorBackend
	}
}

// newClassified creates a new classified error
// This is an internal helper - use the Wrap* functions instead.
func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapInvalid wraps an error as an invalid-argument failure with context
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrappedErr, component, method, wrappedErr.Error())
}

// WrapIncorrectImplementation wraps an error as an identifier mismatch with context
func WrapIncorrectImplementation(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorIncorrectImplementation, wrappedErr, component, method, wrappedErr.Error())
}

// WrapUnsupported wraps an error as an unsupported QoS request with context
func WrapUnsupported(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorUnsupported, wrappedErr, component, method, wrappedErr.Error())
}

// WrapBackend wraps an error as a generic backend failure with context
func WrapBackend(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrappedErr := Wrap(err, component, method, action)
	return newClassified(ErrorBackend, wrappedErr, component, method, wrappedErr.Error())
}
