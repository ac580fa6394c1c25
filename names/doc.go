// Package names validates topic names, node names, and namespaces, and
// expands relative topic names against a node namespace. Validation is
// pure: functions return errors and have no side effects.
package names
