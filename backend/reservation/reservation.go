// Package reservation implements the backend which reserves an access point
// that is owned by, and can only be torn down by, this process.
package reservation

import (
	"context"
	"sync"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/backend/internal/backenderr"
)

// Callbacks holds the completion callbacks of a reservation request.
type Callbacks struct {
	// Started is called once the access point is up.
	Started func(handle hotspot.ReservationHandle)

	// Failed is called if the reservation could not be completed.
	Failed func(err error)

	// Stopped is called if the subsystem tears down a started reservation
	// without it being closed by the owner.
	Stopped func()
}

// Reserver describes the reservation primitive of the subsystem.
type Reserver interface {
	// APState returns the raw (non-offset) access point state.
	APState(ctx context.Context) (int, error)

	// StartReservation requests a new reservation. The callbacks may be
	// called before StartReservation returns. If cfg is nil, the subsystem
	// chooses the network parameters.
	StartReservation(ctx context.Context, cfg *hotspot.AccessPointConfig, callbacks Callbacks) error
}

// Adapter is the reservation backend.
type Adapter struct {
	reserver Reserver

	handle     hotspot.ReservationHandle
	pending    bool
	closing    bool
	generation uint64

	mu sync.Mutex
}

var capabilities = hotspot.BackendCapability{
	Flags:        hotspot.CapabilityRequiresCreatorToDisable,
	Confirmation: hotspot.ConfirmationDirectCallback,
	Precondition: hotspot.PreconditionRuntimeConsent,
}

// New returns a new reservation backend.
func New(reserver Reserver) *Adapter {
	return &Adapter{reserver: reserver}
}

// Capabilities returns the capability set of the backend.
func (a *Adapter) Capabilities() hotspot.BackendCapability {
	return capabilities
}

// HoldsReservation returns whether a live reservation handle is held.
func (a *Adapter) HoldsReservation() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.handle != nil
}

// Handle returns the live reservation handle, if any.
func (a *Adapter) Handle() (hotspot.ReservationHandle, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.handle, a.handle != nil
}

// ReadState reads the raw access point state.
func (a *Adapter) ReadState(ctx context.Context) (int, error) {
	raw, err := a.reserver.APState(ctx)
	if err != nil {
		return hotspot.RawUnknown, backenderr.Wrap(err, "reservation-read-state", "Cannot read the access point state")
	}

	return raw, nil
}

// Enable requests a reservation. The outcome is reported through confirm:
// [hotspot.StateEnabled] once the handle is acquired, [hotspot.StateFailed]
// if the request fails, and [hotspot.StateDisabled] if the subsystem later
// revokes the reservation.
func (a *Adapter) Enable(ctx context.Context, cfg *hotspot.AccessPointConfig, confirm hotspot.ConfirmFunc) error {
	if confirm == nil {
		confirm = func(hotspot.State, error) {}
	}

	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return backenderr.Wrap(err, "reservation-enable-validate", "Invalid access point configuration")
		}
	}

	a.mu.Lock()
	if a.handle != nil || a.pending {
		a.mu.Unlock()
		return backenderr.Wrap(errorkinds.ErrReservationActive, "reservation-enable", "A reservation is already held")
	}

	a.pending = true
	a.generation++
	generation := a.generation
	a.mu.Unlock()

	err := a.reserver.StartReservation(ctx, cfg, Callbacks{
		Started: func(handle hotspot.ReservationHandle) {
			if !a.started(generation, handle) {
				return
			}

			confirm(hotspot.StateEnabled, nil)
		},
		Failed: func(err error) {
			if !a.failed(generation) {
				return
			}

			confirm(hotspot.StateFailed, backenderr.Wrap(err, "reservation-failed", "The reservation request failed"))
		},
		Stopped: func() {
			if !a.revoked(generation) {
				return
			}

			confirm(hotspot.StateDisabled, nil)
		},
	})
	if err != nil {
		a.failed(generation)
		return backenderr.Wrap(err, "reservation-enable", "Cannot request a reservation")
	}

	return nil
}

// Disable closes the held reservation. If no handle is held,
// [errorkinds.ErrNotOwner] is returned without calling the subsystem.
func (a *Adapter) Disable(ctx context.Context) error {
	a.mu.Lock()
	handle := a.handle
	if handle == nil || a.closing {
		a.mu.Unlock()
		return backenderr.Wrap(errorkinds.ErrNotOwner, "reservation-disable", "No reservation is held by this process")
	}

	a.closing = true
	a.mu.Unlock()

	err := handle.Close(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.closing = false
	if err != nil {
		return backenderr.Wrap(err, "reservation-disable", "Cannot close the reservation")
	}

	if a.handle == handle {
		a.handle = nil
		a.generation++
	}

	return nil
}

// ReadConfiguration is unsupported on this backend.
func (a *Adapter) ReadConfiguration(context.Context) (hotspot.AccessPointConfig, error) {
	return hotspot.AccessPointConfig{}, errorkinds.ErrUnsupportedOperation
}

// WriteConfiguration is unsupported on this backend.
func (a *Adapter) WriteConfiguration(context.Context, hotspot.AccessPointConfig) error {
	return errorkinds.ErrUnsupportedOperation
}

func (a *Adapter) started(generation uint64, handle hotspot.ReservationHandle) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if generation != a.generation || !a.pending || handle == nil {
		return false
	}

	a.pending = false
	a.handle = handle

	return true
}

func (a *Adapter) failed(generation uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if generation != a.generation || !a.pending {
		return false
	}

	a.pending = false

	return true
}

func (a *Adapter) revoked(generation uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if generation != a.generation || a.handle == nil || a.closing {
		return false
	}

	a.handle = nil
	a.generation++

	return true
}
