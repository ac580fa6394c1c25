package names

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/c360/wirebus/errors"
)

// Topic name grammar: slash-separated tokens of [A-Za-z_][A-Za-z0-9_]*.
// A leading slash makes the name absolute; names without one are relative
// and must be expanded against a node namespace before reaching a backend.

// IsAbsolute reports whether name is fully qualified
func IsAbsolute(name string) bool {
	return strings.HasPrefix(name, "/")
}

// ValidateTopicName checks a topic name against the grammar. It accepts
// both absolute and relative names; whether a relative name is acceptable
// in context is the lifecycle layer's decision.
func ValidateTopicName(name string) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidName, "names", "ValidateTopicName", "empty name check")
	}

	for _, r := range name {
		if unicode.IsSpace(r) {
			return errors.WrapInvalid(
				fmt.Errorf("topic name %q contains whitespace", name),
				"names", "ValidateTopicName", "whitespace check")
		}
	}

	trimmed := strings.TrimPrefix(name, "/")
	if trimmed == "" {
		return errors.WrapInvalid(
			fmt.Errorf("topic name %q has no tokens", name),
			"names", "ValidateTopicName", "token check")
	}
	if strings.HasSuffix(trimmed, "/") {
		return errors.WrapInvalid(
			fmt.Errorf("topic name %q ends with a slash", name),
			"names", "ValidateTopicName", "trailing slash check")
	}

	for _, token := range strings.Split(trimmed, "/") {
		if err := validateToken(token, name); err != nil {
			return err
		}
	}

	return nil
}

func validateToken(token, name string) error {
	if token == "" {
		return errors.WrapInvalid(
			fmt.Errorf("topic name %q contains an empty token", name),
			"names", "ValidateTopicName", "empty token check")
	}
	for i, r := range token {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return errors.WrapInvalid(
					fmt.Errorf("token %q in topic name %q starts with a digit", token, name),
					"names", "ValidateTopicName", "token start check")
			}
		default:
			return errors.WrapInvalid(
				fmt.Errorf("token %q in topic name %q contains illegal character %q", token, name, r),
				"names", "ValidateTopicName", "token character check")
		}
	}
	return nil
}

// ValidateNodeName checks a node name: a single topic token, no slashes
func ValidateNodeName(name string) error {
	if name == "" {
		return errors.WrapInvalid(errors.ErrInvalidName, "names", "ValidateNodeName", "empty name check")
	}
	if strings.Contains(name, "/") {
		return errors.WrapInvalid(
			fmt.Errorf("node name %q contains a slash", name),
			"names", "ValidateNodeName", "slash check")
	}
	return validateToken(name, name)
}

// ValidateNamespace checks a node namespace. The root namespace "/" is
// valid; any other namespace is an absolute topic name.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return errors.WrapInvalid(errors.ErrInvalidName, "names", "ValidateNamespace", "empty namespace check")
	}
	if namespace == "/" {
		return nil
	}
	if !IsAbsolute(namespace) {
		return errors.WrapInvalid(
			fmt.Errorf("namespace %q is not absolute", namespace),
			"names", "ValidateNamespace", "absolute check")
	}
	return ValidateTopicName(namespace)
}

// ExpandTopic resolves a relative topic name against a node namespace,
// producing an absolute name. Absolute names pass through unchanged.
func ExpandTopic(name, namespace string) (string, error) {
	if err := ValidateTopicName(name); err != nil {
		return "", err
	}
	if IsAbsolute(name) {
		return name, nil
	}
	if err := ValidateNamespace(namespace); err != nil {
		return "", err
	}
	if namespace == "/" {
		return "/" + name, nil
	}
	return namespace + "/" + name, nil
}
