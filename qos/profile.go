package qos

// History controls how many messages are kept for delivery
type History int32

const (
	// HistorySystemDefault lets the backend choose. Legal only in requests.
	HistorySystemDefault History = iota
	// HistoryKeepLast keeps only the last Depth messages
	HistoryKeepLast
	// HistoryKeepAll keeps all messages, limited by backend resources
	HistoryKeepAll
	// HistoryUnknown marks a not-yet-resolved value. Never legal in requests.
	HistoryUnknown
)

// String returns the string representation of History
func (h History) String() string {
	switch h {
	case HistorySystemDefault:
		return "system_default"
	case HistoryKeepLast:
		return "keep_last"
	case HistoryKeepAll:
		return "keep_all"
	default:
		return "unknown"
	}
}

// Reliability controls message delivery guarantees
type Reliability int32

const (
	// ReliabilitySystemDefault lets the backend choose. Legal only in requests.
	ReliabilitySystemDefault Reliability = iota
	// ReliabilityReliable retransmits lost messages
	ReliabilityReliable
	// ReliabilityBestEffort delivers messages without retransmission
	ReliabilityBestEffort
	// ReliabilityUnknown marks a not-yet-resolved value. Never legal in requests.
	ReliabilityUnknown
)

// String returns the string representation of Reliability
func (r Reliability) String() string {
	switch r {
	case ReliabilitySystemDefault:
		return "system_default"
	case ReliabilityReliable:
		return "reliable"
	case ReliabilityBestEffort:
		return "best_effort"
	default:
		return "unknown"
	}
}

// Durability controls whether late-joining subscribers see past messages
type Durability int32

const (
	// DurabilitySystemDefault lets the backend choose. Legal only in requests.
	DurabilitySystemDefault Durability = iota
	// DurabilityVolatile only delivers messages published after subscription
	DurabilityVolatile
	// DurabilityTransientLocal delivers cached messages to late joiners
	DurabilityTransientLocal
	// DurabilityUnknown marks a not-yet-resolved value. Never legal in requests.
	DurabilityUnknown
)

// String returns the string representation of Durability
func (d Durability) String() string {
	switch d {
	case DurabilitySystemDefault:
		return "system_default"
	case DurabilityVolatile:
		return "volatile"
	case DurabilityTransientLocal:
		return "transient_local"
	default:
		return "unknown"
	}
}

// Liveliness controls how endpoint liveliness is asserted
type Liveliness int32

const (
	// LivelinessSystemDefault lets the backend choose. Legal only in requests.
	LivelinessSystemDefault Liveliness = iota
	// LivelinessAutomatic asserts liveliness automatically
	LivelinessAutomatic
	// LivelinessManualByTopic requires manual liveliness assertion per topic
	LivelinessManualByTopic
	// LivelinessUnknown marks a not-yet-resolved value. Never legal in requests.
	LivelinessUnknown
)

// String returns the string representation of Liveliness
func (l Liveliness) String() string {
	switch l {
	case LivelinessSystemDefault:
		return "system_default"
	case LivelinessAutomatic:
		return "automatic"
	case LivelinessManualByTopic:
		return "manual_by_topic"
	default:
		return "unknown"
	}
}

// DepthSystemDefault is the Depth sentinel meaning "let the backend choose"
const DepthSystemDefault = 0

// Duration represents a QoS time constraint in seconds and nanoseconds
type Duration struct {
	Sec  uint64
	Nsec uint64
}

// DurationUnspecified returns the sentinel meaning "let the backend choose"
func DurationUnspecified() Duration {
	return Duration{}
}

// DurationInfinite returns an effectively infinite duration, the concrete
// default for QoS time constraints
func DurationInfinite() Duration {
	return Duration{Sec: 9223372036, Nsec: 854775807}
}

// IsUnspecified reports whether d is the system-default sentinel
func (d Duration) IsUnspecified() bool {
	return d.Sec == 0 && d.Nsec == 0
}

// Profile contains all QoS settings for a publisher or subscription.
// Requested profiles may carry the SystemDefault sentinels; resolved
// ("actual") profiles never carry SystemDefault or Unknown in any field.
type Profile struct {
	History                 History
	Depth                   int
	Reliability             Reliability
	Durability              Durability
	Liveliness              Liveliness
	Deadline                Duration
	Lifespan                Duration
	LivelinessLeaseDuration Duration

	// AvoidNamespaceConventions marks the endpoint's topic as native:
	// exempt from topic-name expansion against the node namespace.
	AvoidNamespaceConventions bool
}

// DefaultProfile returns the default profile (KeepLast(10), Reliable, Volatile)
func DefaultProfile() Profile {
	return Profile{
		History:                 HistoryKeepLast,
		Depth:                   10,
		Reliability:             ReliabilityReliable,
		Durability:              DurabilityVolatile,
		Liveliness:              LivelinessAutomatic,
		Deadline:                DurationInfinite(),
		Lifespan:                DurationInfinite(),
		LivelinessLeaseDuration: DurationInfinite(),
	}
}

// SystemDefaultProfile returns a profile requesting the backend's configured
// default for every field
func SystemDefaultProfile() Profile {
	return Profile{
		History:                 HistorySystemDefault,
		Depth:                   DepthSystemDefault,
		Reliability:             ReliabilitySystemDefault,
		Durability:              DurabilitySystemDefault,
		Liveliness:              LivelinessSystemDefault,
		Deadline:                DurationUnspecified(),
		Lifespan:                DurationUnspecified(),
		LivelinessLeaseDuration: DurationUnspecified(),
	}
}

// UnknownProfile returns a profile with every field unresolved. It is the
// zero state for reading back an actual profile and is never a legal request.
func UnknownProfile() Profile {
	return Profile{
		History:     HistoryUnknown,
		Depth:       DepthSystemDefault,
		Reliability: ReliabilityUnknown,
		Durability:  DurabilityUnknown,
		Liveliness:  LivelinessUnknown,
	}
}

// SensorDataProfile returns QoS suitable for high-rate sensor data
// (KeepLast(5), BestEffort, Volatile)
func SensorDataProfile() Profile {
	p := DefaultProfile()
	p.Reliability = ReliabilityBestEffort
	p.Depth = 5
	return p
}

// TransientLocalProfile returns QoS for latched topics where late joiners
// need the last published value (KeepLast(1), Reliable, TransientLocal)
func TransientLocalProfile() Profile {
	p := DefaultProfile()
	p.Durability = DurabilityTransientLocal
	p.Depth = 1
	return p
}

// ServicesProfile returns QoS for request/reply style endpoints
// (KeepLast(10), Reliable, Volatile)
func ServicesProfile() Profile {
	return DefaultProfile()
}
