//go:build linux

package networkmanager

import (
	"context"
	"errors"
	"strings"

	nm "github.com/Wifx/gonetworkmanager"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/backend/reservation"
	dbh "github.com/darkhz/hotspotctl/linux/internal/dbushelper"
	"github.com/godbus/dbus/v5"
	"github.com/google/uuid"
	"github.com/rs/xid"
)

// errActivationFailed is returned when a reserved connection is torn
// down before it is activated.
var errActivationFailed = errors.New("access point connection was deactivated before activation")

// Reserver reserves volatile access point connections, which are bound
// to the lifetime of this process' DBus connection.
type Reserver struct {
	*Manager
}

// NewReserver returns the reservation access point primitive.
func (m *Manager) NewReserver() *Reserver {
	return &Reserver{Manager: m}
}

// reservationHandle holds a reserved active connection.
type reservationHandle struct {
	active nm.ActiveConnection
	cfg    hotspot.AccessPointConfig

	r *Reserver
}

// ID returns the path of the reserved active connection.
func (h *reservationHandle) ID() string {
	return string(h.active.GetPath())
}

// Configuration returns the configuration of the reserved access point.
func (h *reservationHandle) Configuration() hotspot.AccessPointConfig {
	return h.cfg
}

// Close deactivates the reserved connection.
func (h *reservationHandle) Close(context.Context) error {
	if err := h.r.DeactivateConnection(h.active); err != nil {
		return dbh.WrapError(err,
			"Cannot deactivate the reserved connection",
			"error_at", "reserver-close",
			"path", h.ID(),
		)
	}

	return nil
}

// StartReservation adds and activates a volatile access point connection.
// If no configuration is provided, a network name and passphrase are generated.
func (r *Reserver) StartReservation(ctx context.Context, cfg *hotspot.AccessPointConfig, callbacks reservation.Callbacks) error {
	device, err := r.Device()
	if err != nil {
		return err
	}

	apConfig := generatedConfig()
	if cfg != nil {
		apConfig = cfg.Clone()
	}

	settings := profileSettings{
		ID:                r.connectionID + " (" + xid.New().String() + ")",
		Interface:         r.iface,
		AccessPointConfig: apConfig,
	}.toMap()

	options := map[string]dbus.Variant{
		"persist":         dbus.MakeVariant("volatile"),
		"bind-activation": dbus.MakeVariant("dbus-client"),
	}

	var (
		connPath, activePath dbus.ObjectPath
		result               map[string]dbus.Variant
	)

	r.lastAPMode.Store(true)

	if err := r.systemBus.Object(dbh.NetworkManagerBusName, dbh.NetworkManagerPath).
		CallWithContext(ctx, dbh.NetworkManagerAddAndActivate2, 0,
			settings, device.GetPath(), dbus.ObjectPath("/"), options,
		).
		Store(&connPath, &activePath, &result); err != nil {
		return dbh.WrapError(err,
			"Cannot reserve an access point connection",
			"error_at", "reserver-add-activate",
		)
	}

	active, err := nm.NewActiveConnection(activePath)
	if err != nil {
		return dbh.WrapError(err,
			"Cannot access the reserved connection",
			"error_at", "reserver-active-connection",
			"path", string(activePath),
		)
	}

	handle := &reservationHandle{active: active, cfg: apConfig, r: r}

	go r.watchReservation(handle, callbacks)

	return nil
}

// watchReservation reports the lifecycle of the reserved connection.
func (r *Reserver) watchReservation(handle *reservationHandle, callbacks reservation.Callbacks) {
	exit := make(chan struct{})
	states := make(chan nm.StateChange)

	if err := handle.active.SubscribeState(states, exit); err != nil {
		callbacks.Failed(dbh.WrapError(err,
			"Cannot watch the reserved connection",
			"error_at", "reserver-subscribe",
			"path", handle.ID(),
		))

		return
	}

	started := false
	report := func(state nm.NmActiveConnectionState) bool {
		switch state {
		case nm.NmActiveConnectionStateActivated:
			if !started {
				started = true
				callbacks.Started(handle)
			}

		case nm.NmActiveConnectionStateDeactivated:
			if started {
				callbacks.Stopped()
			} else {
				callbacks.Failed(errActivationFailed)
			}

			return false
		}

		return true
	}

	stop := func() {
		for {
			select {
			case exit <- struct{}{}:
				return

			case <-states:
			}
		}
	}
	defer stop()

	// The connection may have been activated before the subscription.
	if state, err := handle.active.GetPropertyState(); err == nil && !report(state) {
		return
	}

	for change := range states {
		if !report(change.State) {
			return
		}
	}
}

// generatedConfig returns a configuration with a generated network name and passphrase.
func generatedConfig() hotspot.AccessPointConfig {
	id := xid.New().String()

	return hotspot.AccessPointConfig{
		Name:       "hotspot-" + id[len(id)-6:],
		Passphrase: strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Security:   hotspot.SecurityWPAPSK,
	}
}
