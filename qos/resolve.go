package qos

import (
	"fmt"

	"github.com/c360/wirebus/errors"
)

// ValidateProfile checks that a requested profile is legal. A profile
// carrying the Unknown sentinel in any field used for matching is rejected:
// Unknown only ever represents "not yet resolved", never a request.
func ValidateProfile(p *Profile) error {
	if p == nil {
		return errors.WrapInvalid(errors.ErrInvalidQoS, "qos", "ValidateProfile", "nil profile check")
	}

	if p.History < HistorySystemDefault || p.History > HistoryUnknown {
		return errors.WrapInvalid(
			fmt.Errorf("history value %d out of range", p.History),
			"qos", "ValidateProfile", "history range check")
	}
	if p.Reliability < ReliabilitySystemDefault || p.Reliability > ReliabilityUnknown {
		return errors.WrapInvalid(
			fmt.Errorf("reliability value %d out of range", p.Reliability),
			"qos", "ValidateProfile", "reliability range check")
	}
	if p.Durability < DurabilitySystemDefault || p.Durability > DurabilityUnknown {
		return errors.WrapInvalid(
			fmt.Errorf("durability value %d out of range", p.Durability),
			"qos", "ValidateProfile", "durability range check")
	}
	if p.Liveliness < LivelinessSystemDefault || p.Liveliness > LivelinessUnknown {
		return errors.WrapInvalid(
			fmt.Errorf("liveliness value %d out of range", p.Liveliness),
			"qos", "ValidateProfile", "liveliness range check")
	}

	if p.History == HistoryUnknown {
		return errors.WrapInvalid(errors.ErrInvalidQoS, "qos", "ValidateProfile", "unknown history check")
	}
	if p.Reliability == ReliabilityUnknown {
		return errors.WrapInvalid(errors.ErrInvalidQoS, "qos", "ValidateProfile", "unknown reliability check")
	}
	if p.Durability == DurabilityUnknown {
		return errors.WrapInvalid(errors.ErrInvalidQoS, "qos", "ValidateProfile", "unknown durability check")
	}
	if p.Liveliness == LivelinessUnknown {
		return errors.WrapInvalid(errors.ErrInvalidQoS, "qos", "ValidateProfile", "unknown liveliness check")
	}

	if p.Depth < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("depth %d is negative", p.Depth),
			"qos", "ValidateProfile", "depth range check")
	}

	return nil
}

// IsResolved reports whether p contains no SystemDefault and no Unknown
// sentinel in any field. Every profile returned to a caller as "actual"
// QoS must satisfy this.
func (p Profile) IsResolved() bool {
	switch p.History {
	case HistoryKeepLast, HistoryKeepAll:
	default:
		return false
	}
	switch p.Reliability {
	case ReliabilityReliable, ReliabilityBestEffort:
	default:
		return false
	}
	switch p.Durability {
	case DurabilityVolatile, DurabilityTransientLocal:
	default:
		return false
	}
	switch p.Liveliness {
	case LivelinessAutomatic, LivelinessManualByTopic:
	default:
		return false
	}
	if p.History == HistoryKeepLast && p.Depth == DepthSystemDefault {
		return false
	}
	return true
}

// Resolve produces the concrete profile for a request by substituting, field
// by field, every SystemDefault sentinel with the backend's configured
// default. Fields are resolved independently: resolving one never changes
// another. The defaults profile must itself be fully concrete; a backend
// that offers a sentinel as its default cannot satisfy the request.
func Resolve(requested, defaults Profile) (Profile, error) {
	if !defaults.IsResolved() {
		return UnknownProfile(), errors.WrapUnsupported(
			fmt.Errorf("backend default profile is not concrete"),
			"qos", "Resolve", "default profile check")
	}

	resolved := requested

	if resolved.History == HistorySystemDefault {
		resolved.History = defaults.History
	}
	if resolved.Depth == DepthSystemDefault {
		resolved.Depth = defaults.Depth
	}
	if resolved.Reliability == ReliabilitySystemDefault {
		resolved.Reliability = defaults.Reliability
	}
	if resolved.Durability == DurabilitySystemDefault {
		resolved.Durability = defaults.Durability
	}
	if resolved.Liveliness == LivelinessSystemDefault {
		resolved.Liveliness = defaults.Liveliness
	}
	if resolved.Deadline.IsUnspecified() {
		resolved.Deadline = defaults.Deadline
	}
	if resolved.Lifespan.IsUnspecified() {
		resolved.Lifespan = defaults.Lifespan
	}
	if resolved.LivelinessLeaseDuration.IsUnspecified() {
		resolved.LivelinessLeaseDuration = defaults.LivelinessLeaseDuration
	}

	if !resolved.IsResolved() {
		return UnknownProfile(), errors.WrapUnsupported(
			fmt.Errorf("requested profile resolves to non-concrete values"),
			"qos", "Resolve", "post-resolution check")
	}

	return resolved, nil
}
