package hotspot

// State describes the canonical lifecycle state of the access point.
// The values follow the offset (+10) encoding that is carried by state
// notifications, so that every state used within a session shares a
// single representation.
type State int

// The different access point states.
const (
	StateUnknown   State = -1
	StateDisabling State = 10
	StateDisabled  State = 11
	StateEnabling  State = 12
	StateEnabled   State = 13
	StateFailed    State = 14
)

// stateOffset is the offset applied to raw subsystem values.
const stateOffset = 10

// RawUnknown is the raw value reported when the state cannot be read.
const RawUnknown = -1

var stateNames = map[State]string{
	StateUnknown:   "unknown",
	StateDisabling: "disabling",
	StateDisabled:  "disabled",
	StateEnabling:  "enabling",
	StateEnabled:   "enabled",
	StateFailed:    "failed",
}

// Normalize converts a raw subsystem value (0..4) to its canonical state.
// The unknown value (-1) is never offset, and values which already carry
// the offset are returned as is.
func Normalize(raw int) State {
	if raw != RawUnknown && raw >= 0 && raw < stateOffset {
		raw += stateOffset
	}

	return State(raw)
}

// Raw returns the raw (non-offset) subsystem value of the state.
func (s State) Raw() int {
	if s == StateUnknown || s < stateOffset {
		return int(s)
	}

	return int(s) - stateOffset
}

// IsKnown returns whether the state is one of the five values
// reported by the subsystem.
func (s State) IsKnown() bool {
	return s >= StateDisabling && s <= StateFailed
}

// String returns the name of the state.
func (s State) String() string {
	name, ok := stateNames[s]
	if !ok {
		return "unrecognized"
	}

	return name
}
