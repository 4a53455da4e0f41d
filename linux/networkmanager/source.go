//go:build linux

package networkmanager

import (
	"context"
	"sync"

	"github.com/darkhz/hotspotctl/api/hotspot"
	dbh "github.com/darkhz/hotspotctl/linux/internal/dbushelper"
	"github.com/godbus/dbus/v5"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/xid"
)

// SignalSource translates state changes of the wireless device into
// access point state-change signals.
type SignalSource struct {
	m      *Manager
	buffer int

	subscribers *xsync.MapOf[string, *subscriber]

	watching bool
	stop     context.CancelFunc
	mu       sync.Mutex
}

// subscriber holds a single subscription to the signal source.
type subscriber struct {
	ch     chan hotspot.Signal
	closed bool

	mu sync.Mutex
}

// NewSignalSource returns a new signal source, where each subscription is
// buffered with the provided size.
func (m *Manager) NewSignalSource(buffer int) *SignalSource {
	if buffer <= 0 {
		buffer = 1
	}

	return &SignalSource{
		m:           m,
		buffer:      buffer,
		subscribers: xsync.NewMapOf[string, *subscriber](),
	}
}

// Subscribe starts delivering state-change signals. The first subscription
// starts watching the wireless device, and cancelling the last one stops it.
func (s *SignalSource) Subscribe(context.Context) (<-chan hotspot.Signal, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.watching {
		if err := s.watch(); err != nil {
			return nil, nil, err
		}
	}

	id := xid.New().String()
	sub := &subscriber{ch: make(chan hotspot.Signal, s.buffer)}
	s.subscribers.Store(id, sub)

	return sub.ch, func() {
		s.subscribers.Delete(id)
		sub.close()

		s.mu.Lock()
		defer s.mu.Unlock()

		if s.subscribers.Size() == 0 && s.watching {
			s.stop()
			s.watching = false
		}
	}, nil
}

// watch registers a signal match for state changes of the wireless device.
func (s *SignalSource) watch() error {
	device, err := s.m.Device()
	if err != nil {
		return err
	}

	match := []dbus.MatchOption{
		dbus.WithMatchObjectPath(device.GetPath()),
		dbus.WithMatchInterface(dbh.NetworkManagerDeviceIface),
		dbus.WithMatchMember(dbh.DeviceSignalStateChanged),
	}

	if err := s.m.systemBus.AddMatchSignal(match...); err != nil {
		return dbh.WrapError(err,
			"Cannot watch the wireless device",
			"error_at", "source-add-match",
			"path", string(device.GetPath()),
		)
	}

	ch := make(chan *dbus.Signal, s.buffer)
	s.m.systemBus.Signal(ch)

	ctx, cancel := context.WithCancel(context.Background())
	s.stop = func() {
		cancel()
		s.m.systemBus.RemoveSignal(ch)
		_ = s.m.systemBus.RemoveMatchSignal(match...)
	}
	s.watching = true

	go s.dispatch(ctx, device.GetPath(), ch)

	return nil
}

// dispatch translates device signals and sends them to every subscriber.
func (s *SignalSource) dispatch(ctx context.Context, path dbus.ObjectPath, ch chan *dbus.Signal) {
	for {
		select {
		case <-ctx.Done():
			return

		case signal, ok := <-ch:
			if !ok {
				return
			}

			if signal.Path != path || signal.Name != hotspot.ActionStateChanged {
				continue
			}

			translated, ok := s.translate(signal)
			if !ok {
				continue
			}

			s.subscribers.Range(func(_ string, sub *subscriber) bool {
				sub.send(translated)
				return true
			})
		}
	}
}

// translate converts a device state-change signal (new, old, reason) into
// an access point state-change signal.
func (s *SignalSource) translate(signal *dbus.Signal) (hotspot.Signal, bool) {
	if len(signal.Body) < 2 {
		return hotspot.Signal{}, false
	}

	newState, ok := signal.Body[0].(uint32)
	if !ok {
		return hotspot.Signal{}, false
	}

	oldState, ok := signal.Body[1].(uint32)
	if !ok {
		return hotspot.Signal{}, false
	}

	apMode := s.m.lastAPMode.Load()
	if device, err := s.m.Device(); err == nil {
		apMode = s.m.apMode(device)
	}

	return hotspot.NewStateSignal(rawState(oldState, apMode), rawState(newState, apMode)), true
}

// send delivers a signal without blocking. Signals are dropped
// if the subscriber's buffer is full.
func (s *subscriber) send(signal hotspot.Signal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- signal:
	default:
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	close(s.ch)
}
