// Package bridge forwards parsed state-change signals from the
// platform to the engine.
package bridge

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
)

// Source describes a platform stream of state-change signals.
type Source interface {
	// Subscribe starts delivering signals on the returned channel, until
	// the returned cancel function is called. The channel is closed
	// once the subscription ends.
	Subscribe(ctx context.Context) (<-chan hotspot.Signal, context.CancelFunc, error)
}

// Sink receives parsed notifications.
type Sink interface {
	OnNotification(previous, next hotspot.State)
}

// ErrorFunc is called with signals that could not be parsed.
type ErrorFunc func(err error)

// Bridge subscribes to a signal source while it is active, and forwards
// every well-formed state-change signal to the sink.
type Bridge struct {
	source  Source
	sink    Sink
	onError ErrorFunc

	cancel     context.CancelFunc
	generation uint64

	mu sync.Mutex
}

// New returns a new inactive bridge.
func New(source Source, sink Sink, onError ErrorFunc) *Bridge {
	if onError == nil {
		onError = func(error) {}
	}

	return &Bridge{
		source:  source,
		sink:    sink,
		onError: onError,
	}
}

// Activate subscribes to the signal source. Calling Activate on an
// active bridge does nothing.
func (b *Bridge) Activate(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		return nil
	}

	signals, cancel, err := b.source.Subscribe(ctx)
	if err != nil {
		return err
	}

	b.generation++
	b.cancel = cancel

	go b.pump(b.generation, signals)

	return nil
}

// Deactivate drops the subscription. Signals which arrive after
// Deactivate returns are ignored. Calling Deactivate on an inactive
// bridge does nothing.
func (b *Bridge) Deactivate() {
	b.mu.Lock()
	cancel := b.cancel
	b.cancel = nil
	b.generation++
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Active returns whether the bridge is subscribed.
func (b *Bridge) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.cancel != nil
}

func (b *Bridge) pump(generation uint64, signals <-chan hotspot.Signal) {
	for signal := range signals {
		previous, next, err := Parse(signal)
		if err != nil {
			b.onError(err)
			continue
		}

		b.mu.Lock()
		current := b.generation == generation && b.cancel != nil
		b.mu.Unlock()

		if !current {
			continue
		}

		b.sink.OnNotification(previous, next)
	}
}

// Parse extracts the (previous, next) state pair from a state-change signal.
// Signals with a foreign action, or with missing or non-integer extras, return
// [errorkinds.ErrMalformedNotification].
func Parse(signal hotspot.Signal) (hotspot.State, hotspot.State, error) {
	if !strings.EqualFold(signal.Action, hotspot.ActionStateChanged) {
		return hotspot.StateUnknown, hotspot.StateUnknown,
			fmt.Errorf("unexpected action %q: %w", signal.Action, errorkinds.ErrMalformedNotification)
	}

	previous, err := extra(signal, hotspot.ExtraPreviousState)
	if err != nil {
		return hotspot.StateUnknown, hotspot.StateUnknown, err
	}

	next, err := extra(signal, hotspot.ExtraState)
	if err != nil {
		return hotspot.StateUnknown, hotspot.StateUnknown, err
	}

	return previous, next, nil
}

func extra(signal hotspot.Signal, name string) (hotspot.State, error) {
	value, ok := signal.Extras[name]
	if !ok {
		return hotspot.StateUnknown, fmt.Errorf("missing extra %q: %w", name, errorkinds.ErrMalformedNotification)
	}

	var v int64

	switch n := value.(type) {
	case int:
		v = int64(n)
	case int8:
		v = int64(n)
	case int16:
		v = int64(n)
	case int32:
		v = int64(n)
	case int64:
		v = n
	case uint8:
		v = int64(n)
	case uint16:
		v = int64(n)
	case uint32:
		v = int64(n)

	default:
		return hotspot.StateUnknown, fmt.Errorf("extra %q is not an integer (%T): %w", name, value, errorkinds.ErrMalformedNotification)
	}

	if v < math.MinInt32 || v > math.MaxInt32 {
		return hotspot.StateUnknown, fmt.Errorf("extra %q is out of range: %w", name, errorkinds.ErrMalformedNotification)
	}

	return hotspot.State(v), nil
}
