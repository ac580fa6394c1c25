package message

import (
	"fmt"

	"github.com/c360/wirebus/errors"
)

// TypeSupport describes how messages of one type move between their
// in-memory and wire representations. Instances are produced outside this
// module (typically by generated code) and are borrowed by the endpoints
// bound to them: entities hold the pointer for their lifetime but never
// free or copy the descriptor.
type TypeSupport struct {
	// TypeName is the fully qualified message type, e.g. "std_msgs/String"
	TypeName string
	// Encode converts a message value to wire bytes
	Encode func(msg any) ([]byte, error)
	// Decode converts wire bytes back to a message value
	Decode func(data []byte) (any, error)
}

// Validate checks that the descriptor is usable by an endpoint
func (ts *TypeSupport) Validate() error {
	if ts == nil {
		return errors.WrapInvalid(errors.ErrInvalidArgument, "TypeSupport", "Validate", "nil descriptor check")
	}
	if ts.TypeName == "" {
		return errors.WrapInvalid(
			fmt.Errorf("type support has no type name"),
			"TypeSupport", "Validate", "type name check")
	}
	if ts.Encode == nil || ts.Decode == nil {
		return errors.WrapInvalid(
			fmt.Errorf("type support for %q is missing codec functions", ts.TypeName),
			"TypeSupport", "Validate", "codec check")
	}
	return nil
}

// RawTypeSupport returns a pass-through descriptor for callers that
// publish and take raw bytes without a typed representation.
func RawTypeSupport(typeName string) *TypeSupport {
	return &TypeSupport{
		TypeName: typeName,
		Encode: func(msg any) ([]byte, error) {
			data, ok := msg.([]byte)
			if !ok {
				return nil, errors.WrapInvalid(
					fmt.Errorf("raw type support requires []byte, got %T", msg),
					"TypeSupport", "Encode", "message type check")
			}
			return data, nil
		},
		Decode: func(data []byte) (any, error) {
			return data, nil
		},
	}
}
