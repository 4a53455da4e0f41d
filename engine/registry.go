package engine

import (
	"reflect"
	"slices"
	"sync"

	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/rs/xid"
)

// ListenerID identifies a registered listener.
type ListenerID string

type registration struct {
	id       ListenerID
	listener hotspot.Listener
}

// registry holds listeners in registration order.
type registry struct {
	listeners []registration

	mu sync.RWMutex
}

// add registers the listener, and returns its ID. If the listener is
// already registered, the existing ID is returned and first is false.
func (r *registry) add(listener hotspot.Listener) (id ListenerID, added, first bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.listeners {
		if sameListener(reg.listener, listener) {
			return reg.id, false, false
		}
	}

	id = ListenerID(xid.New().String())
	r.listeners = append(r.listeners, registration{id, listener})

	return id, true, len(r.listeners) == 1
}

// remove unregisters the listener with the provided ID, and returns whether
// it was registered, and whether no listeners are left.
func (r *registry) remove(id ListenerID) (removed, empty bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := slices.IndexFunc(r.listeners, func(reg registration) bool {
		return reg.id == id
	})
	if index < 0 {
		return false, len(r.listeners) == 0
	}

	r.listeners = slices.Delete(r.listeners, index, index+1)

	return true, len(r.listeners) == 0
}

// snapshot returns the listeners in registration order.
func (r *registry) snapshot() []hotspot.Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listeners := make([]hotspot.Listener, 0, len(r.listeners))
	for _, reg := range r.listeners {
		listeners = append(listeners, reg.listener)
	}

	return listeners
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.listeners)
}

func (r *registry) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listeners = nil
}

// sameListener compares two listeners by identity. Listeners with
// non-comparable dynamic types are never identical.
func sameListener(a, b hotspot.Listener) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || ta == nil || !ta.Comparable() {
		return false
	}

	return a == b
}
