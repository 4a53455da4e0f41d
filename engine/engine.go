// Package engine implements the access point control engine, which
// holds the canonical access point state and reconciles it with
// notifications from the platform.
package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/eventbus"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/bridge"
	"github.com/darkhz/hotspotctl/permission"
	"go.uber.org/atomic"
)

// Gate describes the permission gate used by the engine.
type Gate interface {
	Check(ctx context.Context, precondition hotspot.Precondition) bool
	RequestGrant(ctx context.Context, precondition hotspot.Precondition, onResolved permission.ResolvedFunc)
}

// Owner is implemented by backends that track ownership of the access point.
type Owner interface {
	HoldsReservation() bool
}

// Engine holds the canonical access point state.
type Engine struct {
	backend hotspot.Backend
	caps    hotspot.BackendCapability
	gate    Gate

	source bridge.Source
	bridge *bridge.Bridge

	bus     *eventbus.Bus
	ownsBus bool

	listeners  registry
	listenerMu sync.Mutex
	state      atomic.Int32

	config   *hotspot.AccessPointConfig
	configMu sync.Mutex

	queue    []func()
	draining bool
	queueMu  sync.Mutex
}

// New returns a new engine, and performs the bootstrap read of the access point state.
func New(ctx context.Context, backend hotspot.Backend, gate Gate, opts ...Option) (*Engine, error) {
	if backend == nil || gate == nil {
		return nil, fault.Wrap(errorkinds.ErrSessionStart,
			fctx.With(context.Background(), "error_at", "engine-new"),
			ftag.With(ftag.InvalidArgument),
			fmsg.With("A backend and a permission gate are required"),
		)
	}

	e := &Engine{
		backend: backend,
		caps:    backend.Capabilities(),
		gate:    gate,
		bus:     eventbus.New(eventbus.DefaultCapacity),
		ownsBus: true,
	}
	e.state.Store(int32(hotspot.StateUnknown))

	for _, opt := range opts {
		opt(e)
	}

	if e.source != nil {
		e.bridge = bridge.New(e.source, e, func(err error) {
			e.publishError(err, "bridge-parse", "Discarded a malformed state notification")
		})
	}

	if raw, err := backend.ReadState(ctx); err != nil {
		e.fail(err, "engine-bootstrap", "Cannot read the initial access point state")
	} else {
		e.state.Store(int32(hotspot.Normalize(raw)))
	}

	return e, nil
}

// Capabilities returns the capability set of the active backend.
func (e *Engine) Capabilities() hotspot.BackendCapability {
	return e.caps
}

// CurrentState returns the canonical access point state.
func (e *Engine) CurrentState() hotspot.State {
	return hotspot.State(e.state.Load())
}

// Events returns the event stream of the engine.
func (e *Engine) Events() *eventbus.Bus {
	return e.bus
}

// Enable starts the access point. The call does nothing unless the access point
// is disabled. With a broadcast backend, the returned error only
// reports whether the request was issued, and the new state is reported by
// state notifications.
func (e *Engine) Enable(ctx context.Context) error {
	if e.CurrentState() != hotspot.StateDisabled {
		return nil
	}

	if err := e.checkPermission(ctx, "enable"); err != nil {
		return err
	}

	if err := e.backend.Enable(ctx, e.configuration(), e.confirm); err != nil {
		return e.fail(err, "engine-enable", "Cannot enable the access point")
	}

	return nil
}

// Disable stops the access point. The call does nothing unless the access point
// is enabled. Backends that require the creator to disable the
// access point return [errorkinds.ErrNotOwner] if no reservation is held,
// regardless of the access point state.
func (e *Engine) Disable(ctx context.Context) error {
	if e.caps.RequiresCreatorToDisable() {
		if owner, ok := e.backend.(Owner); !ok || !owner.HoldsReservation() {
			return fault.Wrap(errorkinds.ErrNotOwner,
				fctx.With(context.Background(), "error_at", "engine-disable-owner"),
				ftag.With(ftag.PermissionDenied),
				fmsg.With("The access point was not started by this process"),
			)
		}
	}

	if e.CurrentState() != hotspot.StateEnabled {
		return nil
	}

	if err := e.checkPermission(ctx, "disable"); err != nil {
		return err
	}

	if err := e.backend.Disable(ctx); err != nil {
		return e.fail(err, "engine-disable", "Cannot disable the access point")
	}

	if e.caps.Confirmation != hotspot.ConfirmationBroadcast {
		e.assert(hotspot.StateDisabled)
	}

	return nil
}

// SetConfiguration validates the configuration and writes it to the subsystem.
// The configuration is used by the next call to Enable.
func (e *Engine) SetConfiguration(ctx context.Context, cfg hotspot.AccessPointConfig) error {
	if !e.caps.CanSetConfiguration() {
		return unsupported("engine-set-configuration")
	}

	if err := cfg.Validate(); err != nil {
		return fault.Wrap(err,
			fctx.With(context.Background(), "error_at", "engine-set-configuration-validate"),
			ftag.With(ftag.InvalidArgument),
			fmsg.With("Invalid access point configuration"),
		)
	}

	if err := e.backend.WriteConfiguration(ctx, cfg); err != nil {
		if errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
			e.publishError(err, "engine-set-configuration", "Cannot write the access point configuration")
		}

		return err
	}

	cfg = cfg.Clone()

	e.configMu.Lock()
	e.config = &cfg
	e.configMu.Unlock()

	return nil
}

// UseConfiguration validates the configuration, and sets it as the configuration
// used by the next call to Enable, without writing it to the subsystem.
func (e *Engine) UseConfiguration(cfg hotspot.AccessPointConfig) error {
	if err := cfg.Validate(); err != nil {
		return fault.Wrap(err,
			fctx.With(context.Background(), "error_at", "engine-use-configuration"),
			ftag.With(ftag.InvalidArgument),
			fmsg.With("Invalid access point configuration"),
		)
	}

	cfg = cfg.Clone()

	e.configMu.Lock()
	e.config = &cfg
	e.configMu.Unlock()

	return nil
}

// Configuration returns the stored access point configuration.
func (e *Engine) Configuration(ctx context.Context) (hotspot.AccessPointConfig, error) {
	if !e.caps.CanSetConfiguration() {
		return hotspot.AccessPointConfig{}, unsupported("engine-configuration")
	}

	cfg, err := e.backend.ReadConfiguration(ctx)
	if err != nil {
		if errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
			e.publishError(err, "engine-configuration", "Cannot read the access point configuration")
		}

		return hotspot.AccessPointConfig{}, err
	}

	return cfg, nil
}

// Refresh reads the access point state from the subsystem, and updates the
// canonical state if it has changed. Since commands are ignored while the
// access point has failed, this is how callers leave the failed state.
func (e *Engine) Refresh(ctx context.Context) error {
	raw, err := e.backend.ReadState(ctx)
	if err != nil {
		return e.fail(err, "engine-refresh", "Cannot read the access point state")
	}

	e.assert(hotspot.Normalize(raw))

	return nil
}

// RequestPermission asks for the precondition of the active backend, and calls
// onResolved asynchronously with the result. A permission event is published
// once the request is resolved.
func (e *Engine) RequestPermission(ctx context.Context, onResolved permission.ResolvedFunc) {
	precondition := e.caps.Precondition

	e.gate.RequestGrant(ctx, precondition, func(granted bool, err error) {
		hotspot.PermissionEvents().Publish(e.bus, hotspot.PermissionEvent{
			Precondition: precondition,
			Granted:      granted,
			Operation:    "grant",
		})

		if onResolved != nil {
			onResolved(granted, err)
		}
	})
}

// OnNotification writes the canonical state to next, and notifies every
// listener. Unknown or unrecognized states move the engine to the failed state,
// since the unknown state is never re-entered. The previous state reported by
// the notification is informational.
func (e *Engine) OnNotification(_, next hotspot.State) {
	e.apply(func() {
		e.transition(next)
	})
}

// RegisterListener registers a listener and returns its ID. Registering a
// listener that is already registered returns its existing ID. The first
// registration subscribes to state notifications.
func (e *Engine) RegisterListener(listener hotspot.Listener) ListenerID {
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()

	id, added, first := e.listeners.add(listener)
	if added && first && e.bridge != nil {
		if err := e.bridge.Activate(context.Background()); err != nil {
			e.publishError(err, "engine-bridge-activate", "Cannot subscribe to state notifications")
		}
	}

	return id
}

// UnregisterListener unregisters a listener, and returns whether it was registered.
// Removing the last listener unsubscribes from state notifications.
func (e *Engine) UnregisterListener(id ListenerID) bool {
	e.listenerMu.Lock()
	defer e.listenerMu.Unlock()

	removed, empty := e.listeners.remove(id)
	if removed && empty && e.bridge != nil {
		e.bridge.Deactivate()
	}

	return removed
}

// Close unsubscribes from state notifications and removes every listener.
func (e *Engine) Close() {
	e.listenerMu.Lock()
	if e.bridge != nil {
		e.bridge.Deactivate()
	}

	e.listeners.clear()
	e.listenerMu.Unlock()

	if e.ownsBus {
		e.bus.Close()
	}
}

// confirm is called by backends which confirm transitions locally.
func (e *Engine) confirm(state hotspot.State, err error) {
	if err != nil {
		e.publishError(err, "engine-confirm", "The access point request failed")
	}

	e.assert(state)
}

// assert writes a locally confirmed state, if it differs from the canonical state.
func (e *Engine) assert(state hotspot.State) {
	e.apply(func() {
		if !state.IsKnown() {
			state = hotspot.StateFailed
		}

		if e.CurrentState() == state {
			return
		}

		e.transition(state)
	})
}

// transition writes the canonical state, and notifies every listener.
// It must only be called from apply.
func (e *Engine) transition(next hotspot.State) {
	if !next.IsKnown() {
		next = hotspot.StateFailed
	}

	event := hotspot.StateTransitionEvent{
		From: hotspot.State(e.state.Swap(int32(next))),
		To:   next,
	}

	for _, listener := range e.listeners.snapshot() {
		listener.OnTransition(event)
	}

	hotspot.StateEvents().Publish(e.bus, event)
}

// apply runs transitions one at a time. A transition which is applied while
// another one is running, including from within a listener, is queued and
// run after the running transition returns.
func (e *Engine) apply(fn func()) {
	e.queueMu.Lock()
	e.queue = append(e.queue, fn)
	if e.draining {
		e.queueMu.Unlock()
		return
	}

	e.draining = true
	for len(e.queue) > 0 {
		next := e.queue[0]
		e.queue[0] = nil
		e.queue = e.queue[1:]

		e.queueMu.Unlock()
		next()
		e.queueMu.Lock()
	}

	e.draining = false
	e.queueMu.Unlock()
}

// checkPermission checks the precondition of the active backend, and publishes
// a permission event if it is not held.
func (e *Engine) checkPermission(ctx context.Context, operation string) error {
	precondition := e.caps.Precondition
	if e.gate.Check(ctx, precondition) {
		return nil
	}

	hotspot.PermissionEvents().Publish(e.bus, hotspot.PermissionEvent{
		Precondition: precondition,
		Granted:      false,
		Operation:    operation,
	})

	return fault.Wrap(errorkinds.ErrPermissionDenied,
		fctx.With(context.Background(),
			"error_at", "engine-"+operation+"-permission",
			"precondition", precondition.String(),
		),
		ftag.With(ftag.PermissionDenied),
		fmsg.With("The required permission is not granted"),
	)
}

// fail publishes the error, and moves the engine to the failed state if the
// subsystem is unavailable.
func (e *Engine) fail(err error, errorAt, message string) error {
	e.publishError(err, errorAt, message)

	if errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
		e.assert(hotspot.StateFailed)
	}

	return err
}

func (e *Engine) publishError(err error, errorAt, message string) {
	hotspot.ErrorEvents().Publish(e.bus, errorkinds.GenericError{
		Errors: fault.Wrap(err,
			fctx.With(context.Background(), "error_at", errorAt),
			ftag.With(ftag.Internal),
			fmsg.With(message),
		),
	})
}

func (e *Engine) configuration() *hotspot.AccessPointConfig {
	e.configMu.Lock()
	defer e.configMu.Unlock()

	if e.config == nil {
		return nil
	}

	cfg := e.config.Clone()

	return &cfg
}

func unsupported(errorAt string) error {
	return fault.Wrap(errorkinds.ErrUnsupportedOperation,
		fctx.With(context.Background(), "error_at", errorAt),
		ftag.With(ftag.InvalidArgument),
		fmsg.With("The active backend does not support configuration access"),
	)
}
