package hotspot

import (
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/eventbus"
)

// EventID represents a unique event ID.
type EventID byte

// The different types of event IDs.
const (
	EventNone EventID = iota // The zero value for this type.
	EventError
	EventState
	EventPermission
)

// eventNames holds names of different events.
var eventNames = map[EventID]string{
	EventNone:       "",
	EventError:      "error_event",
	EventState:      "state_event",
	EventPermission: "permission_event",
}

// String returns the name of the event ID.
func (e EventID) String() string {
	return eventNames[e]
}

// Value returns the event ID.
func (e EventID) Value() uint {
	return uint(e)
}

// Events defines a set of possible event data types.
type Events interface {
	errorkinds.GenericError | StateTransitionEvent | PermissionEvent
}

// Event represents a general event.
type Event[T Events] struct {
	// ID holds the event ID.
	ID EventID `json:"event_id,omitempty"`

	// Data holds the actual event data.
	Data T `json:"event_data,omitempty"`
}

// EventGroup holds a set of events of a single type for a particular event ID.
type EventGroup[T Events] struct {
	// ID holds the event ID.
	ID EventID
}

// Subscriber describes a subscription to an event group.
type Subscriber[T Events] struct {
	C    chan T
	Done chan struct{}

	Unsubscribe eventbus.UnsubFunc
}

// Publish publishes an event to the provided event stream.
func (e EventGroup[T]) Publish(bus *eventbus.Bus, data T) {
	bus.Publish(e.ID, Event[T]{e.ID, data})
}

// Subscribe subscribes to an event group, and returns a subscriber which can be used
// to receive and unsubscribe from the event.
func (e EventGroup[T]) Subscribe(bus *eventbus.Bus) (*Subscriber[T], bool) {
	id := bus.Subscribe(e.ID)

	sub := Subscriber[T]{
		C:           make(chan T, eventbus.DefaultCapacity),
		Done:        make(chan struct{}, 1),
		Unsubscribe: id.Unsubscribe,
	}

	if !id.IsActive() {
		close(sub.C)
		return &sub, false
	}

	go func() {
		for data := range id.C {
			v, ok := data.(Event[T])
			if !ok {
				continue
			}

			select {
			case sub.C <- v.Data:
			default:
			}
		}

		select {
		case sub.Done <- struct{}{}:
		default:
		}

		close(sub.C)
	}()

	return &sub, true
}

// StateEvents returns an event interface to subscribe to state transition events.
func StateEvents() EventGroup[StateTransitionEvent] {
	return EventGroup[StateTransitionEvent]{ID: EventState}
}

// PermissionEvents returns an event interface to subscribe to permission events.
func PermissionEvents() EventGroup[PermissionEvent] {
	return EventGroup[PermissionEvent]{ID: EventPermission}
}

// ErrorEvents returns an event interface to subscribe to error events.
func ErrorEvents() EventGroup[errorkinds.GenericError] {
	return EventGroup[errorkinds.GenericError]{ID: EventError}
}
