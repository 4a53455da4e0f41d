package reservation

import (
	"context"
	"errors"
	"testing"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
)

type fakeHandle struct {
	id     string
	closed int
	err    error
}

func (h *fakeHandle) ID() string { return h.id }

func (h *fakeHandle) Close(context.Context) error {
	if h.err != nil {
		return h.err
	}

	h.closed++

	return nil
}

type fakeReserver struct {
	raw       int
	calls     int
	handle    *fakeHandle
	fail      error
	startErr  error
	deferred  bool
	callbacks Callbacks
}

func (f *fakeReserver) APState(context.Context) (int, error) {
	return f.raw, nil
}

func (f *fakeReserver) StartReservation(_ context.Context, _ *hotspot.AccessPointConfig, cb Callbacks) error {
	f.calls++
	f.callbacks = cb

	if f.startErr != nil {
		return f.startErr
	}

	if f.deferred {
		return nil
	}

	if f.fail != nil {
		cb.Failed(f.fail)
		return nil
	}

	cb.Started(f.handle)

	return nil
}

type confirmation struct {
	state hotspot.State
	err   error
}

func recorder(out *[]confirmation) hotspot.ConfirmFunc {
	return func(state hotspot.State, err error) {
		*out = append(*out, confirmation{state, err})
	}
}

func TestCapabilities(t *testing.T) {
	caps := New(&fakeReserver{}).Capabilities()

	if caps.CanSetConfiguration() || caps.CanToggleByAnyCaller() {
		t.Fatalf("unexpected flags: %s", caps.Flags)
	}

	if !caps.RequiresCreatorToDisable() {
		t.Fatal("reservation backend must require the creator to disable")
	}

	if caps.Confirmation != hotspot.ConfirmationDirectCallback {
		t.Fatalf("unexpected confirmation: %s", caps.Confirmation)
	}

	if caps.Precondition != hotspot.PreconditionRuntimeConsent {
		t.Fatalf("unexpected precondition: %s", caps.Precondition)
	}
}

func TestEnableDisableOwnership(t *testing.T) {
	handle := &fakeHandle{id: "/org/freedesktop/NetworkManager/ActiveConnection/4"}
	reserver := &fakeReserver{handle: handle}
	adapter := New(reserver)
	ctx := context.Background()

	var confirmed []confirmation
	if err := adapter.Enable(ctx, nil, recorder(&confirmed)); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if len(confirmed) != 1 || confirmed[0].state != hotspot.StateEnabled {
		t.Fatalf("unexpected confirmations: %v", confirmed)
	}

	if h, ok := adapter.Handle(); !ok || h.ID() != handle.id {
		t.Fatal("expected the handle to be retained")
	}

	if err := adapter.Disable(ctx); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if handle.closed != 1 {
		t.Fatalf("expected one close, got %d", handle.closed)
	}

	if err := adapter.Disable(ctx); !errors.Is(err, errorkinds.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if handle.closed != 1 {
		t.Fatal("the subsystem must not be called without a handle")
	}

	// A revocation after a local close is ignored.
	reserver.callbacks.Stopped()
	if len(confirmed) != 1 {
		t.Fatalf("unexpected confirmations: %v", confirmed)
	}
}

func TestDisableWithoutHandleWhileRunning(t *testing.T) {
	adapter := New(&fakeReserver{raw: 3})

	if err := adapter.Disable(context.Background()); !errors.Is(err, errorkinds.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestEnableWhileActive(t *testing.T) {
	reserver := &fakeReserver{handle: &fakeHandle{id: "h"}}
	adapter := New(reserver)

	if err := adapter.Enable(context.Background(), nil, nil); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if err := adapter.Enable(context.Background(), nil, nil); !errors.Is(err, errorkinds.ErrReservationActive) {
		t.Fatalf("expected ErrReservationActive, got %v", err)
	}

	if reserver.calls != 1 {
		t.Fatalf("expected a single reservation request, got %d", reserver.calls)
	}
}

func TestEnableWhilePending(t *testing.T) {
	reserver := &fakeReserver{deferred: true}
	adapter := New(reserver)

	if err := adapter.Enable(context.Background(), nil, nil); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if err := adapter.Enable(context.Background(), nil, nil); !errors.Is(err, errorkinds.ErrReservationActive) {
		t.Fatalf("expected ErrReservationActive, got %v", err)
	}
}

func TestEnableFailure(t *testing.T) {
	adapter := New(&fakeReserver{fail: errors.New("no wifi device")})

	var confirmed []confirmation
	if err := adapter.Enable(context.Background(), nil, recorder(&confirmed)); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if len(confirmed) != 1 || confirmed[0].state != hotspot.StateFailed {
		t.Fatalf("unexpected confirmations: %v", confirmed)
	}

	if !errors.Is(confirmed[0].err, errorkinds.ErrSubsystemUnavailable) {
		t.Fatalf("expected ErrSubsystemUnavailable, got %v", confirmed[0].err)
	}

	if adapter.HoldsReservation() {
		t.Fatal("no handle must be held after a failure")
	}
}

func TestStartError(t *testing.T) {
	adapter := New(&fakeReserver{startErr: errors.New("method not found")})

	err := adapter.Enable(context.Background(), nil, nil)
	if !errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
		t.Fatalf("expected ErrSubsystemUnavailable, got %v", err)
	}

	// The adapter can be used again after a failed request.
	if err := adapter.Enable(context.Background(), nil, nil); errors.Is(err, errorkinds.ErrReservationActive) {
		t.Fatal("a failed request must not leave a pending reservation")
	}
}

func TestRevocation(t *testing.T) {
	reserver := &fakeReserver{handle: &fakeHandle{id: "h"}}
	adapter := New(reserver)

	var confirmed []confirmation
	if err := adapter.Enable(context.Background(), nil, recorder(&confirmed)); err != nil {
		t.Fatalf("enable: %v", err)
	}

	reserver.callbacks.Stopped()
	reserver.callbacks.Stopped()

	if len(confirmed) != 2 || confirmed[1].state != hotspot.StateDisabled {
		t.Fatalf("unexpected confirmations: %v", confirmed)
	}

	if err := adapter.Disable(context.Background()); !errors.Is(err, errorkinds.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner after revocation, got %v", err)
	}
}

func TestCloseFailureKeepsHandle(t *testing.T) {
	handle := &fakeHandle{id: "h", err: errors.New("unknown connection")}
	adapter := New(&fakeReserver{handle: handle})

	if err := adapter.Enable(context.Background(), nil, nil); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if err := adapter.Disable(context.Background()); !errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
		t.Fatalf("expected ErrSubsystemUnavailable, got %v", err)
	}

	if !adapter.HoldsReservation() {
		t.Fatal("the handle must be kept when closing fails")
	}
}

func TestConfigurationUnsupported(t *testing.T) {
	adapter := New(&fakeReserver{})

	if _, err := adapter.ReadConfiguration(context.Background()); !errors.Is(err, errorkinds.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}

	if err := adapter.WriteConfiguration(context.Background(), hotspot.AccessPointConfig{}); !errors.Is(err, errorkinds.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}
