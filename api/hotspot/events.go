package hotspot

// StateTransitionEvent describes a single confirmed state transition.
type StateTransitionEvent struct {
	From State `json:"from"`
	To   State `json:"to"`
}

// Listener describes an observer of confirmed state transitions.
type Listener interface {
	OnTransition(event StateTransitionEvent)
}

// Callbacks adapts the five state callbacks to a Listener.
// Any callback may be nil. Use a pointer to Callbacks when
// registering, so that the registration can be identified.
type Callbacks struct {
	OnEnabling  func()
	OnEnabled   func()
	OnDisabling func()
	OnDisabled  func()
	OnFailed    func()
}

// OnTransition invokes the single callback that matches the new state.
// Unknown or unrecognized states invoke OnFailed.
func (c *Callbacks) OnTransition(event StateTransitionEvent) {
	var fn func()

	switch event.To {
	case StateEnabling:
		fn = c.OnEnabling

	case StateEnabled:
		fn = c.OnEnabled

	case StateDisabling:
		fn = c.OnDisabling

	case StateDisabled:
		fn = c.OnDisabled

	default:
		fn = c.OnFailed
	}

	if fn != nil {
		fn()
	}
}

// PermissionEvent describes the outcome of a permission check or grant request.
type PermissionEvent struct {
	// Precondition holds the checked precondition.
	Precondition Precondition `json:"precondition"`

	// Granted holds whether the precondition is satisfied.
	Granted bool `json:"granted"`

	// Operation holds the name of the operation which required the permission,
	// or "grant" if the event is the result of a grant request.
	Operation string `json:"operation,omitempty"`
}

// ListenerFunc adapts a function to a Listener.
// Function listeners are never considered identical, so every
// registration of a ListenerFunc is a distinct registration.
type ListenerFunc func(event StateTransitionEvent)

// OnTransition calls the function.
func (f ListenerFunc) OnTransition(event StateTransitionEvent) {
	f(event)
}
