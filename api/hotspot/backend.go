package hotspot

import "context"

// ConfirmFunc is called by a backend to report a locally confirmed state,
// for backends that do not confirm transitions through notifications.
// The error is set when the state is StateFailed.
type ConfirmFunc func(state State, err error)

// Backend describes the capability interface of an access point control path.
// All implementations translate platform failures into the error kinds of
// the errorkinds package before returning them.
type Backend interface {
	// Capabilities returns the capability set declared at construction.
	Capabilities() BackendCapability

	// ReadState synchronously reads the raw (non-offset) state from the subsystem.
	ReadState(ctx context.Context) (int, error)

	// Enable asks the subsystem to start the access point. A nil configuration
	// means that the stored configuration is used. The confirm function is
	// used only by backends without a broadcast confirmation channel.
	Enable(ctx context.Context, cfg *AccessPointConfig, confirm ConfirmFunc) error

	// Disable asks the subsystem to stop the access point.
	Disable(ctx context.Context) error

	// ReadConfiguration reads the stored access point configuration.
	ReadConfiguration(ctx context.Context) (AccessPointConfig, error)

	// WriteConfiguration writes the access point configuration to the subsystem.
	WriteConfiguration(ctx context.Context, cfg AccessPointConfig) error
}

// ReservationHandle describes an opaque token which represents an
// access point that was reserved by this process.
type ReservationHandle interface {
	// ID returns the identifier of the reservation.
	ID() string

	// Close releases the reservation and tears down the access point.
	Close(ctx context.Context) error
}
