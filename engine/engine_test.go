package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/backend/reservation"
	"github.com/darkhz/hotspotctl/permission"
)

type fakeBackend struct {
	caps      hotspot.BackendCapability
	raw       int
	readErr   error
	enableErr error

	enables  int
	disables int
	written  []hotspot.AccessPointConfig
	enabled  []*hotspot.AccessPointConfig

	mu sync.Mutex
}

func legacyBackend(raw int) *fakeBackend {
	return &fakeBackend{
		raw: raw,
		caps: hotspot.BackendCapability{
			Flags:        hotspot.CapabilitySetConfiguration | hotspot.CapabilityToggleByAnyCaller,
			Confirmation: hotspot.ConfirmationBroadcast,
			Precondition: hotspot.PreconditionModifySettings,
		},
	}
}

func (f *fakeBackend) Capabilities() hotspot.BackendCapability { return f.caps }

func (f *fakeBackend) ReadState(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.raw, f.readErr
}

func (f *fakeBackend) Enable(_ context.Context, cfg *hotspot.AccessPointConfig, _ hotspot.ConfirmFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.enables++
	f.enabled = append(f.enabled, cfg)

	return f.enableErr
}

func (f *fakeBackend) Disable(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.disables++

	return nil
}

func (f *fakeBackend) ReadConfiguration(context.Context) (hotspot.AccessPointConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.written) == 0 {
		return hotspot.AccessPointConfig{}, nil
	}

	return f.written[len(f.written)-1], nil
}

func (f *fakeBackend) WriteConfiguration(_ context.Context, cfg hotspot.AccessPointConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.written = append(f.written, cfg)

	return nil
}

func (f *fakeBackend) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.enables, f.disables
}

type fakeGate struct {
	granted bool
	checks  int
}

func (f *fakeGate) Check(context.Context, hotspot.Precondition) bool {
	f.checks++
	return f.granted
}

func (f *fakeGate) RequestGrant(_ context.Context, _ hotspot.Precondition, onResolved permission.ResolvedFunc) {
	f.granted = true
	onResolved(true, nil)
}

type fakeSource struct {
	ch     chan hotspot.Signal
	active bool

	mu sync.Mutex
}

func (f *fakeSource) Subscribe(context.Context) (<-chan hotspot.Signal, context.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.active = true
	f.ch = make(chan hotspot.Signal, 8)
	ch := f.ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			f.active = false
			f.mu.Unlock()

			close(ch)
		})
	}, nil
}

func (f *fakeSource) isActive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.active
}

func (f *fakeSource) send(previousRaw, raw int) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()

	ch <- hotspot.NewStateSignal(previousRaw, raw)
}

type recorder struct {
	events []hotspot.StateTransitionEvent
	mu     sync.Mutex
}

func (r *recorder) OnTransition(event hotspot.StateTransitionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, event)
}

func (r *recorder) recorded() []hotspot.StateTransitionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]hotspot.StateTransitionEvent(nil), r.events...)
}

func newEngine(t *testing.T, backend hotspot.Backend, gate Gate, opts ...Option) *Engine {
	t.Helper()

	e, err := New(context.Background(), backend, gate, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(e.Close)

	return e
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}

		time.Sleep(5 * time.Millisecond)
	}
}

func TestBootstrapNormalizes(t *testing.T) {
	tests := []struct {
		raw  int
		want hotspot.State
	}{
		{1, hotspot.StateDisabled},
		{2, hotspot.StateEnabling},
		{3, hotspot.StateEnabled},
		{-1, hotspot.StateUnknown},
	}

	for _, tt := range tests {
		e := newEngine(t, legacyBackend(tt.raw), &fakeGate{granted: true})
		if got := e.CurrentState(); got != tt.want {
			t.Errorf("raw %d: got %s, want %s", tt.raw, got, tt.want)
		}
	}
}

func TestBootstrapFailure(t *testing.T) {
	backend := legacyBackend(1)
	backend.readErr = errorkinds.ErrSubsystemUnavailable

	e := newEngine(t, backend, &fakeGate{granted: true})
	if got := e.CurrentState(); got != hotspot.StateFailed {
		t.Fatalf("got %s, want failed", got)
	}
}

func TestNoOpCommands(t *testing.T) {
	for _, tt := range []struct {
		raw    int
		enable bool
	}{
		{3, true},
		{2, true},
		{1, false},
		{0, false},
	} {
		backend := legacyBackend(tt.raw)
		gate := &fakeGate{granted: true}
		e := newEngine(t, backend, gate)

		r := &recorder{}
		e.RegisterListener(r)

		for range 3 {
			var err error
			if tt.enable {
				err = e.Enable(context.Background())
			} else {
				err = e.Disable(context.Background())
			}

			if err != nil {
				t.Fatalf("raw %d: unexpected error: %v", tt.raw, err)
			}
		}

		if enables, disables := backend.calls(); enables != 0 || disables != 0 {
			t.Fatalf("raw %d: unexpected backend calls (%d, %d)", tt.raw, enables, disables)
		}

		if gate.checks != 0 {
			t.Fatalf("raw %d: the gate must not be checked for no-op commands", tt.raw)
		}

		if len(r.recorded()) != 0 {
			t.Fatalf("raw %d: unexpected listener calls", tt.raw)
		}
	}
}

func TestCommandsIgnoredWhenFailed(t *testing.T) {
	backend := legacyBackend(4)
	gate := &fakeGate{granted: true}
	e := newEngine(t, backend, gate)

	if got := e.CurrentState(); got != hotspot.StateFailed {
		t.Fatalf("got %s, want failed", got)
	}

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if err := e.Disable(context.Background()); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if enables, disables := backend.calls(); enables != 0 || disables != 0 {
		t.Fatalf("unexpected backend calls (%d, %d)", enables, disables)
	}
	if gate.checks != 0 {
		t.Fatal("the gate must not be checked while failed")
	}

	backend.mu.Lock()
	backend.raw = 1
	backend.mu.Unlock()

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if enables, _ := backend.calls(); enables != 1 {
		t.Fatalf("expected one enable after refresh, got %d", enables)
	}
}

func TestEnableConfirmedByNotification(t *testing.T) {
	backend := legacyBackend(1)
	source := &fakeSource{}
	e := newEngine(t, backend, &fakeGate{granted: true}, WithSource(source))

	if got := e.CurrentState(); got != hotspot.StateDisabled {
		t.Fatalf("bootstrap: got %s, want disabled", got)
	}

	var mu sync.Mutex
	enabled := 0

	e.RegisterListener(&hotspot.Callbacks{
		OnEnabled: func() {
			mu.Lock()
			enabled++
			mu.Unlock()
		},
	})

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if enables, _ := backend.calls(); enables != 1 {
		t.Fatalf("expected one backend call, got %d", enables)
	}

	if got := e.CurrentState(); got != hotspot.StateDisabled {
		t.Fatalf("broadcast backends must wait for notifications, got %s", got)
	}

	source.send(1, 3)

	waitFor(t, "enabled state", func() bool {
		return e.CurrentState() == hotspot.StateEnabled
	})

	mu.Lock()
	defer mu.Unlock()

	if enabled != 1 {
		t.Fatalf("expected OnEnabled once, got %d", enabled)
	}
}

func TestPermissionDenied(t *testing.T) {
	backend := legacyBackend(1)
	e := newEngine(t, backend, &fakeGate{})

	sub, ok := hotspot.PermissionEvents().Subscribe(e.Events())
	if !ok {
		t.Fatal("expected an active subscription")
	}
	defer sub.Unsubscribe()

	err := e.Enable(context.Background())
	if !errors.Is(err, errorkinds.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	if enables, _ := backend.calls(); enables != 0 {
		t.Fatal("the backend must not be called without permission")
	}

	select {
	case ev := <-sub.C:
		if ev.Granted || ev.Precondition != hotspot.PreconditionModifySettings || ev.Operation != "enable" {
			t.Fatalf("unexpected permission event: %+v", ev)
		}

	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the permission event")
	}
}

func TestPermissionRecheckedEveryCall(t *testing.T) {
	backend := legacyBackend(1)
	gate := &fakeGate{granted: true}
	e := newEngine(t, backend, gate)

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	e.OnNotification(hotspot.StateEnabling, hotspot.StateDisabled)
	gate.granted = false

	if err := e.Enable(context.Background()); !errors.Is(err, errorkinds.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied after revocation, got %v", err)
	}

	if gate.checks != 2 {
		t.Fatalf("expected 2 checks, got %d", gate.checks)
	}
}

func TestRequestPermission(t *testing.T) {
	gate := &fakeGate{}
	e := newEngine(t, legacyBackend(1), gate)

	done := make(chan bool, 1)
	e.RequestPermission(context.Background(), func(granted bool, err error) {
		done <- granted && err == nil
	})

	if !<-done {
		t.Fatal("expected the permission to be granted")
	}

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable after grant: %v", err)
	}
}

func TestSubsystemUnavailable(t *testing.T) {
	backend := legacyBackend(1)
	backend.enableErr = errorkinds.ErrSubsystemUnavailable

	e := newEngine(t, backend, &fakeGate{granted: true})

	sub, _ := hotspot.ErrorEvents().Subscribe(e.Events())
	defer sub.Unsubscribe()

	failed := 0
	e.RegisterListener(&hotspot.Callbacks{OnFailed: func() { failed++ }})

	if err := e.Enable(context.Background()); !errors.Is(err, errorkinds.ErrSubsystemUnavailable) {
		t.Fatalf("expected ErrSubsystemUnavailable, got %v", err)
	}

	if got := e.CurrentState(); got != hotspot.StateFailed {
		t.Fatalf("got %s, want failed", got)
	}

	if failed != 1 {
		t.Fatalf("expected OnFailed once, got %d", failed)
	}

	select {
	case ev := <-sub.C:
		if !errors.Is(ev, errorkinds.ErrSubsystemUnavailable) {
			t.Fatalf("unexpected error event: %v", ev)
		}

	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the error event")
	}

	// Failed is not sticky.
	backend.enableErr = nil
	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable from failed: %v", err)
	}
	if enables, _ := backend.calls(); enables != 1 {
		t.Fatalf("enable must not reach the backend while failed, got %d calls", enables)
	}

	e.OnNotification(hotspot.StateFailed, hotspot.StateEnabled)
	if got := e.CurrentState(); got != hotspot.StateEnabled {
		t.Fatalf("got %s, want enabled", got)
	}
}

func TestTwoListenersOneNotification(t *testing.T) {
	e := newEngine(t, legacyBackend(2), &fakeGate{granted: true})

	var order []string
	var depth, maxDepth int

	listener := func(name string) *hotspot.Callbacks {
		return &hotspot.Callbacks{
			OnEnabled: func() {
				depth++
				maxDepth = max(maxDepth, depth)

				order = append(order, name)

				// Re-entrant notifications are queued.
				if len(order) == 1 {
					e.OnNotification(hotspot.StateEnabled, hotspot.StateEnabled)
				}

				depth--
			},
		}
	}

	first, second := listener("first"), listener("second")
	e.RegisterListener(first)
	e.RegisterListener(second)

	e.OnNotification(hotspot.StateEnabling, hotspot.StateEnabled)

	if maxDepth != 1 {
		t.Fatalf("notifications must not be re-entrant, depth %d", maxDepth)
	}

	// The first notification fires both listeners once each, before the
	// queued notification fires them again.
	want := []string{"first", "second", "first", "second"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}

	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestListenerOrderExactlyOnce(t *testing.T) {
	e := newEngine(t, legacyBackend(2), &fakeGate{granted: true})

	var order []int
	for i := range 3 {
		e.RegisterListener(&hotspot.Callbacks{OnEnabled: func() { order = append(order, i) }})
	}

	e.OnNotification(hotspot.StateEnabling, hotspot.StateEnabled)

	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestUnregisteredListener(t *testing.T) {
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true})

	r := &recorder{}
	id := e.RegisterListener(r)

	if !e.UnregisterListener(id) {
		t.Fatal("expected the listener to be removed")
	}

	if e.UnregisterListener(id) {
		t.Fatal("a listener must only be removed once")
	}

	e.OnNotification(hotspot.StateDisabled, hotspot.StateEnabling)

	if len(r.recorded()) != 0 {
		t.Fatal("unregistered listeners must not be called")
	}
}

func TestRegisterIdempotent(t *testing.T) {
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true})

	r := &recorder{}
	first := e.RegisterListener(r)
	second := e.RegisterListener(r)

	if first != second {
		t.Fatalf("expected the same ID, got %q and %q", first, second)
	}

	e.OnNotification(hotspot.StateDisabled, hotspot.StateEnabling)

	if got := len(r.recorded()); got != 1 {
		t.Fatalf("expected one event, got %d", got)
	}

	// Function listeners are always distinct.
	fn := hotspot.ListenerFunc(func(hotspot.StateTransitionEvent) {})
	if e.RegisterListener(fn) == e.RegisterListener(fn) {
		t.Fatal("function listeners must be registered separately")
	}
}

func TestUnknownNotificationFails(t *testing.T) {
	e := newEngine(t, legacyBackend(3), &fakeGate{granted: true})

	r := &recorder{}
	failed := 0

	e.RegisterListener(r)
	e.RegisterListener(&hotspot.Callbacks{OnFailed: func() { failed++ }})

	e.OnNotification(hotspot.StateEnabled, hotspot.StateUnknown)
	e.OnNotification(hotspot.StateEnabled, hotspot.State(99))

	if got := e.CurrentState(); got != hotspot.StateFailed {
		t.Fatalf("got %s, want failed", got)
	}

	if failed != 2 {
		t.Fatalf("expected OnFailed twice, got %d", failed)
	}

	events := r.recorded()
	if len(events) != 2 || events[0].From != hotspot.StateEnabled || events[0].To != hotspot.StateFailed {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestNotificationUnconditional(t *testing.T) {
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true})

	r := &recorder{}
	e.RegisterListener(r)

	// Notifications are written even if they repeat the current state
	// or race a locally issued command.
	e.OnNotification(hotspot.StateDisabled, hotspot.StateDisabled)
	e.OnNotification(hotspot.StateDisabled, hotspot.StateDisabling)

	events := r.recorded()
	if len(events) != 2 || events[1].To != hotspot.StateDisabling {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestStateEvents(t *testing.T) {
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true})

	sub, ok := hotspot.StateEvents().Subscribe(e.Events())
	if !ok {
		t.Fatal("expected an active subscription")
	}
	defer sub.Unsubscribe()

	e.OnNotification(hotspot.StateDisabled, hotspot.StateEnabling)

	select {
	case ev := <-sub.C:
		if ev.From != hotspot.StateDisabled || ev.To != hotspot.StateEnabling {
			t.Fatalf("unexpected event: %+v", ev)
		}

	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the state event")
	}
}

func TestBridgeLifecycle(t *testing.T) {
	source := &fakeSource{}
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true}, WithSource(source))

	if source.isActive() {
		t.Fatal("the bridge must be inactive without listeners")
	}

	first := e.RegisterListener(&recorder{})
	second := e.RegisterListener(&recorder{})

	if !source.isActive() {
		t.Fatal("the bridge must be active with listeners")
	}

	e.UnregisterListener(first)
	if !source.isActive() {
		t.Fatal("the bridge must stay active while listeners remain")
	}

	e.UnregisterListener(second)
	if source.isActive() {
		t.Fatal("the bridge must be inactive after the last listener is removed")
	}
}

func TestBridgeLifecycleConcurrent(t *testing.T) {
	source := &fakeSource{}
	e := newEngine(t, legacyBackend(1), &fakeGate{granted: true}, WithSource(source))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for range 200 {
				id := e.RegisterListener(&recorder{})
				e.UnregisterListener(id)
			}
		}()
	}
	wg.Wait()

	if source.isActive() {
		t.Fatal("the bridge must be inactive once every listener is removed")
	}

	id := e.RegisterListener(&recorder{})
	if !source.isActive() {
		t.Fatal("the bridge must be active with a listener")
	}

	e.UnregisterListener(id)
	if source.isActive() {
		t.Fatal("the bridge must be inactive after the last listener is removed")
	}
}

func TestConfiguration(t *testing.T) {
	backend := legacyBackend(1)
	e := newEngine(t, backend, &fakeGate{granted: true})
	ctx := context.Background()

	if err := e.SetConfiguration(ctx, hotspot.AccessPointConfig{Name: "x"}); !errors.Is(err, errorkinds.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	cfg := hotspot.AccessPointConfig{Name: "Hotspot", Passphrase: "secretkey", Security: hotspot.SecurityWPAPSK}
	if err := e.SetConfiguration(ctx, cfg); err != nil {
		t.Fatalf("set configuration: %v", err)
	}

	got, err := e.Configuration(ctx)
	if err != nil || got.Name != cfg.Name {
		t.Fatalf("configuration: got (%+v, %v)", got, err)
	}

	if err := e.Enable(ctx); err != nil {
		t.Fatalf("enable: %v", err)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()

	if len(backend.enabled) != 1 || backend.enabled[0] == nil || backend.enabled[0].Name != cfg.Name {
		t.Fatal("enable must use the configuration that was set")
	}
}

type fakeHandle struct {
	closed int
}

func (h *fakeHandle) ID() string { return "reservation" }

func (h *fakeHandle) Close(context.Context) error {
	h.closed++
	return nil
}

type fakeReserver struct {
	raw       int
	handle    *fakeHandle
	callbacks reservation.Callbacks
}

func (f *fakeReserver) APState(context.Context) (int, error) {
	return f.raw, nil
}

func (f *fakeReserver) StartReservation(_ context.Context, _ *hotspot.AccessPointConfig, cb reservation.Callbacks) error {
	f.callbacks = cb
	cb.Started(f.handle)

	return nil
}

func TestReservationScenario(t *testing.T) {
	reserver := &fakeReserver{raw: 1, handle: &fakeHandle{}}
	e := newEngine(t, reservation.New(reserver), &fakeGate{granted: true})
	ctx := context.Background()

	r := &recorder{}
	e.RegisterListener(r)

	if err := e.Enable(ctx); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if got := e.CurrentState(); got != hotspot.StateEnabled {
		t.Fatalf("got %s, want enabled", got)
	}

	if err := e.Disable(ctx); err != nil {
		t.Fatalf("disable: %v", err)
	}

	if got := e.CurrentState(); got != hotspot.StateDisabled {
		t.Fatalf("got %s, want disabled", got)
	}

	if err := e.Disable(ctx); !errors.Is(err, errorkinds.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if reserver.handle.closed != 1 {
		t.Fatalf("expected one close, got %d", reserver.handle.closed)
	}

	events := r.recorded()
	if len(events) != 2 || events[0].To != hotspot.StateEnabled || events[1].To != hotspot.StateDisabled {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestReservationNotOwnerWhileRunning(t *testing.T) {
	e := newEngine(t, reservation.New(&fakeReserver{raw: 3}), &fakeGate{granted: true})

	if got := e.CurrentState(); got != hotspot.StateEnabled {
		t.Fatalf("got %s, want enabled", got)
	}

	if err := e.Disable(context.Background()); !errors.Is(err, errorkinds.ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}
}

func TestReservationRevoked(t *testing.T) {
	reserver := &fakeReserver{raw: 1, handle: &fakeHandle{}}
	e := newEngine(t, reservation.New(reserver), &fakeGate{granted: true})

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	reserver.callbacks.Stopped()

	if got := e.CurrentState(); got != hotspot.StateDisabled {
		t.Fatalf("got %s, want disabled", got)
	}
}

func TestReservationConfigurationUnsupported(t *testing.T) {
	e := newEngine(t, reservation.New(&fakeReserver{raw: 1}), &fakeGate{granted: true})

	if _, err := e.Configuration(context.Background()); !errors.Is(err, errorkinds.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}

	cfg := hotspot.AccessPointConfig{Name: "Hotspot", Security: hotspot.SecurityOpen}
	if err := e.SetConfiguration(context.Background(), cfg); !errors.Is(err, errorkinds.ErrUnsupportedOperation) {
		t.Fatalf("expected ErrUnsupportedOperation, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	backend := legacyBackend(1)
	backend.readErr = errorkinds.ErrSubsystemUnavailable

	e := newEngine(t, backend, &fakeGate{granted: true})
	if e.CurrentState() != hotspot.StateFailed {
		t.Fatal("expected a failed bootstrap")
	}

	backend.mu.Lock()
	backend.readErr = nil
	backend.raw = 3
	backend.mu.Unlock()

	if err := e.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	if got := e.CurrentState(); got != hotspot.StateEnabled {
		t.Fatalf("got %s, want enabled", got)
	}
}

func TestNewRequiresBackendAndGate(t *testing.T) {
	if _, err := New(context.Background(), nil, &fakeGate{}); !errors.Is(err, errorkinds.ErrSessionStart) {
		t.Fatalf("expected ErrSessionStart, got %v", err)
	}

	if _, err := New(context.Background(), legacyBackend(1), nil); !errors.Is(err, errorkinds.ErrSessionStart) {
		t.Fatalf("expected ErrSessionStart, got %v", err)
	}
}

func TestUseConfiguration(t *testing.T) {
	backend := legacyBackend(1)
	e := newEngine(t, backend, &fakeGate{granted: true})

	invalid := hotspot.AccessPointConfig{Name: "Hotspot", Passphrase: "short", Security: hotspot.SecurityWPAPSK}
	if err := e.UseConfiguration(invalid); !errors.Is(err, errorkinds.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	cfg := hotspot.AccessPointConfig{Name: "Hotspot", Passphrase: "password1", Security: hotspot.SecurityWPAPSK}
	if err := e.UseConfiguration(cfg); err != nil {
		t.Fatalf("use configuration: %v", err)
	}

	if err := e.Enable(context.Background()); err != nil {
		t.Fatalf("enable: %v", err)
	}

	if len(backend.written) != 0 {
		t.Fatalf("expected no configuration writes, got %d", len(backend.written))
	}
	if len(backend.enabled) != 1 || backend.enabled[0] == nil || backend.enabled[0].Name != "Hotspot" {
		t.Fatalf("unexpected enable configuration: %+v", backend.enabled)
	}
}
