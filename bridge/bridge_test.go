package bridge

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
)

type fakeSource struct {
	subscriptions int
	ch            chan hotspot.Signal
	err           error

	mu sync.Mutex
}

func (f *fakeSource) Subscribe(context.Context) (<-chan hotspot.Signal, context.CancelFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, nil, f.err
	}

	f.subscriptions++
	f.ch = make(chan hotspot.Signal, 8)

	ch := f.ch
	var once sync.Once

	return ch, func() { once.Do(func() { close(ch) }) }, nil
}

func (f *fakeSource) send(signal hotspot.Signal) {
	f.mu.Lock()
	ch := f.ch
	f.mu.Unlock()

	ch <- signal
}

type notification struct {
	previous, next hotspot.State
}

type fakeSink struct {
	ch chan notification
}

func (f *fakeSink) OnNotification(previous, next hotspot.State) {
	f.ch <- notification{previous, next}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		signal   hotspot.Signal
		previous hotspot.State
		next     hotspot.State
		valid    bool
	}{
		{
			name:     "offset values",
			signal:   hotspot.NewStateSignal(1, 2),
			previous: hotspot.StateDisabled,
			next:     hotspot.StateEnabling,
			valid:    true,
		},
		{
			name: "case-insensitive action",
			signal: hotspot.Signal{
				Action: "ORG.FREEDESKTOP.NETWORKMANAGER.DEVICE.STATECHANGED",
				Extras: map[string]any{hotspot.ExtraPreviousState: int32(12), hotspot.ExtraState: uint32(13)},
			},
			previous: hotspot.StateEnabling,
			next:     hotspot.StateEnabled,
			valid:    true,
		},
		{
			name:     "unknown",
			signal:   hotspot.NewStateSignal(-1, 1),
			previous: hotspot.StateUnknown,
			next:     hotspot.StateDisabled,
			valid:    true,
		},
		{
			name:   "foreign action",
			signal: hotspot.Signal{Action: "org.freedesktop.NetworkManager.StateChanged", Extras: hotspot.NewStateSignal(1, 2).Extras},
		},
		{
			name:   "missing state",
			signal: hotspot.Signal{Action: hotspot.ActionStateChanged, Extras: map[string]any{hotspot.ExtraPreviousState: 11}},
		},
		{
			name:   "missing previous state",
			signal: hotspot.Signal{Action: hotspot.ActionStateChanged, Extras: map[string]any{hotspot.ExtraState: 11}},
		},
		{
			name: "non-integer",
			signal: hotspot.Signal{
				Action: hotspot.ActionStateChanged,
				Extras: map[string]any{hotspot.ExtraPreviousState: "11", hotspot.ExtraState: 13},
			},
		},
		{
			name:   "nil extras",
			signal: hotspot.Signal{Action: hotspot.ActionStateChanged},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous, next, err := Parse(tt.signal)
			if !tt.valid {
				if !errors.Is(err, errorkinds.ErrMalformedNotification) {
					t.Fatalf("expected ErrMalformedNotification, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if previous != tt.previous || next != tt.next {
				t.Fatalf("got (%d, %d), want (%d, %d)", previous, next, tt.previous, tt.next)
			}
		})
	}
}

func TestBridgeForwards(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{ch: make(chan notification, 8)}

	var malformed []error
	var mu sync.Mutex

	b := New(source, sink, func(err error) {
		mu.Lock()
		malformed = append(malformed, err)
		mu.Unlock()
	})

	if err := b.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}
	defer b.Deactivate()

	source.send(hotspot.Signal{Action: "garbage"})
	source.send(hotspot.NewStateSignal(2, 3))

	select {
	case n := <-sink.ch:
		if n.previous != hotspot.StateEnabling || n.next != hotspot.StateEnabled {
			t.Fatalf("unexpected notification: %+v", n)
		}

	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}

	mu.Lock()
	defer mu.Unlock()

	if len(malformed) != 1 {
		t.Fatalf("expected one malformed signal, got %d", len(malformed))
	}
}

func TestActivateIdempotent(t *testing.T) {
	source := &fakeSource{}
	b := New(source, &fakeSink{ch: make(chan notification, 1)}, nil)

	for range 3 {
		if err := b.Activate(context.Background()); err != nil {
			t.Fatalf("activate: %v", err)
		}
	}

	if source.subscriptions != 1 {
		t.Fatalf("expected a single subscription, got %d", source.subscriptions)
	}

	if !b.Active() {
		t.Fatal("expected an active bridge")
	}

	b.Deactivate()
	b.Deactivate()

	if b.Active() {
		t.Fatal("expected an inactive bridge")
	}

	if err := b.Activate(context.Background()); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	defer b.Deactivate()

	if source.subscriptions != 2 {
		t.Fatalf("expected a new subscription, got %d", source.subscriptions)
	}
}

func TestActivateError(t *testing.T) {
	b := New(&fakeSource{err: errors.New("bus closed")}, &fakeSink{}, nil)

	if err := b.Activate(context.Background()); err == nil {
		t.Fatal("expected an error")
	}

	if b.Active() {
		t.Fatal("a failed activation must leave the bridge inactive")
	}
}

func TestDeactivateIgnoresLateSignals(t *testing.T) {
	source := &fakeSource{}
	sink := &fakeSink{ch: make(chan notification, 8)}
	b := New(source, sink, nil)

	if err := b.Activate(context.Background()); err != nil {
		t.Fatalf("activate: %v", err)
	}

	source.mu.Lock()
	ch := source.ch
	source.mu.Unlock()

	b.mu.Lock()
	b.generation++
	b.mu.Unlock()

	ch <- hotspot.NewStateSignal(1, 2)

	b.Deactivate()

	select {
	case n := <-sink.ch:
		t.Fatalf("unexpected notification after deactivation: %+v", n)

	case <-time.After(50 * time.Millisecond):
	}
}
