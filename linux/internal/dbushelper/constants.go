//go:build linux

package dbushelper

import "github.com/godbus/dbus/v5"

// The DBus specific bus and property names.
const (
	DbusGetPropertiesIface = "org.freedesktop.DBus.Properties.Get"

	NetworkManagerBusName         = "org.freedesktop.NetworkManager"
	NetworkManagerPath            = dbus.ObjectPath("/org/freedesktop/NetworkManager")
	NetworkManagerIface           = "org.freedesktop.NetworkManager"
	NetworkManagerDeviceIface     = "org.freedesktop.NetworkManager.Device"
	NetworkManagerConnectionIface = "org.freedesktop.NetworkManager.Settings.Connection"

	NetworkManagerAddAndActivate2 = NetworkManagerIface + ".AddAndActivateConnection2"
	NetworkManagerGetSecrets      = NetworkManagerConnectionIface + ".GetSecrets"

	DeviceSignalStateChanged = "StateChanged"

	PolkitBusName             = "org.freedesktop.PolicyKit1"
	PolkitAuthorityPath       = dbus.ObjectPath("/org/freedesktop/PolicyKit1/Authority")
	PolkitCheckAuthorization  = "org.freedesktop.PolicyKit1.Authority.CheckAuthorization"
	PolkitCancelAuthorization = "org.freedesktop.PolicyKit1.Authority.CancelCheckAuthorization"
)

// The polkit actions which are checked by the authority.
const (
	ActionModifySystemSettings = "org.freedesktop.NetworkManager.settings.modify.system"
	ActionShareProtected       = "org.freedesktop.NetworkManager.wifi.share.protected"
	ActionShareOpen            = "org.freedesktop.NetworkManager.wifi.share.open"
)
