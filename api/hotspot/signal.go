package hotspot

// The action and extras carried by a state-change signal.
const (
	ActionStateChanged = "org.freedesktop.NetworkManager.Device.StateChanged"
	ExtraPreviousState = "previous_state"
	ExtraState         = "state"
)

// Signal describes a raw state-change signal, as it is emitted
// by the platform and before it is parsed.
type Signal struct {
	Action string
	Extras map[string]any
}

// NewStateSignal returns a state-change signal that carries the
// provided raw states with the notification offset applied.
func NewStateSignal(previousRaw, raw int) Signal {
	return Signal{
		Action: ActionStateChanged,
		Extras: map[string]any{
			ExtraPreviousState: int(Normalize(previousRaw)),
			ExtraState:         int(Normalize(raw)),
		},
	}
}
