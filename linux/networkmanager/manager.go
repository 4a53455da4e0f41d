//go:build linux

// Package networkmanager implements the access point primitives
// on top of NetworkManager.
package networkmanager

import (
	"context"
	"errors"
	"fmt"

	nm "github.com/Wifx/gonetworkmanager"
	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	dbh "github.com/darkhz/hotspotctl/linux/internal/dbushelper"
	"github.com/godbus/dbus/v5"
	"go.uber.org/atomic"
)

// Manager holds the NetworkManager session.
type Manager struct {
	systemBus *dbus.Conn

	iface        string
	connectionID string

	// lastAPMode holds whether the wireless device was last seen
	// with an access point connection.
	lastAPMode atomic.Bool

	nm.NetworkManager
	nm.Settings
}

// Initialize initializes and returns a new Manager.
func Initialize(systemBus *dbus.Conn, cfg config.Configuration) (*Manager, error) {
	cfg = cfg.WithDefaults()

	manager, err := nm.NewNetworkManager()
	if err != nil {
		return nil, dbh.WrapError(
			fmt.Errorf("%w: %w", errorkinds.ErrSubsystemUnavailable, err),
			"Cannot connect to NetworkManager",
			"error_at", "networkmanager-initialize",
		)
	}

	settings, err := nm.NewSettings()
	if err != nil {
		return nil, dbh.WrapError(
			fmt.Errorf("%w: %w", errorkinds.ErrSubsystemUnavailable, err),
			"Cannot access NetworkManager settings",
			"error_at", "networkmanager-settings",
		)
	}

	return &Manager{
		systemBus:      systemBus,
		iface:          cfg.Interface,
		connectionID:   cfg.ConnectionID,
		NetworkManager: manager,
		Settings:       settings,
	}, nil
}

// Version returns the NetworkManager version.
func (m *Manager) Version() (string, error) {
	version, err := m.GetPropertyVersion()
	if err != nil {
		return "", dbh.WrapError(err,
			"Cannot get the NetworkManager version",
			"error_at", "networkmanager-version",
		)
	}

	return version, nil
}

// Device returns the wireless device used for the access point.
func (m *Manager) Device() (nm.Device, error) {
	if m.iface != "" {
		device, err := m.GetDeviceByIpIface(m.iface)
		if err != nil {
			return nil, dbh.WrapError(
				fmt.Errorf("%w: %w", errorkinds.ErrDeviceNotFound, err),
				"Cannot find the wireless device",
				"error_at", "networkmanager-device-iface",
				"interface", m.iface,
			)
		}

		return device, nil
	}

	devices, err := m.GetPropertyDevices()
	if err != nil {
		return nil, dbh.WrapError(err,
			"Cannot list network devices",
			"error_at", "networkmanager-device-list",
		)
	}

	for _, device := range devices {
		dtype, err := device.GetPropertyDeviceType()
		if err != nil {
			continue
		}

		if dtype == nm.NmDeviceTypeWifi {
			return device, nil
		}
	}

	return nil, dbh.WrapError(errorkinds.ErrDeviceNotFound,
		"No wireless device was found",
		"error_at", "networkmanager-device-wifi",
	)
}

// APState returns the raw access point state of the wireless device.
func (m *Manager) APState(context.Context) (int, error) {
	device, err := m.Device()
	if err != nil {
		return -1, err
	}

	state, err := device.GetPropertyState()
	if err != nil {
		return -1, dbh.WrapError(err,
			"Cannot get the wireless device state",
			"error_at", "networkmanager-device-state",
		)
	}

	return rawState(uint32(state), m.apMode(device)), nil
}

// apMode returns whether the device's active connection is an access point
// connection. If the device has no active connection, the last observed
// mode is returned.
func (m *Manager) apMode(device nm.Device) bool {
	active, err := device.GetPropertyActiveConnection()
	if err != nil || active == nil {
		return m.lastAPMode.Load()
	}

	conn, err := active.GetPropertyConnection()
	if err != nil || conn == nil {
		return m.lastAPMode.Load()
	}

	settings, err := conn.GetSettings()
	if err != nil {
		return m.lastAPMode.Load()
	}

	mode, _ := settings[sectionWireless]["mode"].(string)
	ap := mode == wirelessModeAP
	m.lastAPMode.Store(ap)

	return ap
}

// activeConnectionFor returns the active connection of the device which uses the
// provided connection profile, if any.
func (m *Manager) activeConnectionFor(device nm.Device, conn nm.Connection) (nm.ActiveConnection, error) {
	active, err := device.GetPropertyActiveConnection()
	if err != nil {
		return nil, err
	}

	if active == nil {
		return nil, nil
	}

	activeConn, err := active.GetPropertyConnection()
	if err != nil {
		return nil, err
	}

	if activeConn == nil || activeConn.GetPath() != conn.GetPath() {
		return nil, nil
	}

	return active, nil
}

// secrets returns the secrets of a settings section of a connection.
func (m *Manager) secrets(ctx context.Context, conn nm.Connection, section string) (map[string]any, error) {
	var secrets map[string]map[string]dbus.Variant

	if err := m.systemBus.Object(dbh.NetworkManagerBusName, conn.GetPath()).
		CallWithContext(ctx, dbh.NetworkManagerGetSecrets, 0, section).
		Store(&secrets); err != nil {
		var dbusErr dbus.Error
		if errors.As(err, &dbusErr) && dbusErr.Name == "org.freedesktop.NetworkManager.Settings.Connection.SettingNotFound" {
			return nil, nil
		}

		return nil, err
	}

	values := make(map[string]any, len(secrets[section]))
	for key, variant := range secrets[section] {
		values[key] = variant.Value()
	}

	return values, nil
}
