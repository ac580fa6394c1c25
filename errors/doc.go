// Package errors provides standardized error handling for wirebus.
// It defines the status taxonomy shared by every lifecycle operation
// (invalid argument, incorrect implementation, unsupported QoS, generic
// backend failure), classified error wrapping with component/method/action
// context, and the error sink that records the last failure message for
// callers until explicitly cleared.
package errors
