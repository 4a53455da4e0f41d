package hotspot

import "strings"

// Capabilities describes the capability flags of a backend.
type Capabilities uint

// The different capability flags.
const (
	CapabilityNone             Capabilities = 0 // The zero value for this type.
	CapabilitySetConfiguration Capabilities = 1 << iota
	CapabilityToggleByAnyCaller
	CapabilityRequiresCreatorToDisable
)

// CapabilityMap holds a list of descriptions for each capability.
var CapabilityMap = map[Capabilities]string{
	CapabilitySetConfiguration:         "Set Configuration",
	CapabilityToggleByAnyCaller:        "Toggle By Any Caller",
	CapabilityRequiresCreatorToDisable: "Requires Creator To Disable",
}

// Confirmation describes how a backend confirms a requested transition.
type Confirmation int

// The different confirmation channels.
const (
	ConfirmationNone Confirmation = iota
	ConfirmationBroadcast
	ConfirmationDirectCallback
)

// String returns the name of the confirmation channel.
func (c Confirmation) String() string {
	switch c {
	case ConfirmationBroadcast:
		return "broadcast"

	case ConfirmationDirectCallback:
		return "direct-callback"
	}

	return "none"
}

// Precondition describes a permission that must be held before
// a backend can be asked to change the access point state.
type Precondition string

// The different preconditions.
const (
	PreconditionNone           Precondition = ""
	PreconditionModifySettings Precondition = "modify-settings"
	PreconditionRuntimeConsent Precondition = "runtime-consent"
)

// String returns the name of the precondition.
func (p Precondition) String() string {
	if p == PreconditionNone {
		return "none"
	}

	return string(p)
}

// BackendCapability holds the capability set that a backend
// declares once, at construction.
type BackendCapability struct {
	Flags        Capabilities
	Confirmation Confirmation
	Precondition Precondition
}

// Has returns if the capability set has all of the provided flags.
func (b BackendCapability) Has(compare ...Capabilities) bool {
	if len(compare) == 0 {
		return false
	}

	for _, c := range compare {
		if b.Flags&c == 0 {
			return false
		}
	}

	return true
}

// CanSetConfiguration returns whether the configuration can be read or written.
func (b BackendCapability) CanSetConfiguration() bool {
	return b.Has(CapabilitySetConfiguration)
}

// CanToggleByAnyCaller returns whether any caller may toggle the access point.
func (b BackendCapability) CanToggleByAnyCaller() bool {
	return b.Has(CapabilityToggleByAnyCaller)
}

// RequiresCreatorToDisable returns whether only the creator may disable the access point.
func (b BackendCapability) RequiresCreatorToDisable() bool {
	return b.Has(CapabilityRequiresCreatorToDisable)
}

// String converts a set of capabilities to a comma-separated string of
// their respective descriptions.
func (c Capabilities) String() string {
	s := make([]string, 0, len(CapabilityMap))

	for _, capability := range []Capabilities{
		CapabilitySetConfiguration,
		CapabilityToggleByAnyCaller,
		CapabilityRequiresCreatorToDisable,
	} {
		if c&capability != 0 {
			s = append(s, CapabilityMap[capability])
		}
	}

	return strings.Join(s, ", ")
}
