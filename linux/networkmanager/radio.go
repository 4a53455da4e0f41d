//go:build linux

package networkmanager

import (
	"context"

	nm "github.com/Wifx/gonetworkmanager"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	dbh "github.com/darkhz/hotspotctl/linux/internal/dbushelper"
)

// Radio toggles a persistent access point connection profile.
type Radio struct {
	*Manager
}

// NewRadio returns the legacy access point primitive.
func (m *Manager) NewRadio() *Radio {
	return &Radio{Manager: m}
}

// SetAPEnabled activates or deactivates the stored access point profile.
// If a configuration is provided, it is stored before activation.
func (r *Radio) SetAPEnabled(ctx context.Context, cfg *hotspot.AccessPointConfig, enabled bool) error {
	if enabled && cfg != nil {
		if err := r.SetAPConfiguration(ctx, *cfg); err != nil {
			return err
		}
	}

	device, err := r.Device()
	if err != nil {
		return err
	}

	conn, found, err := r.profile()
	if err != nil {
		return err
	}

	if !found {
		errorAt := "radio-enable-profile"
		if !enabled {
			errorAt = "radio-disable-profile"
		}

		return dbh.WrapError(errorkinds.ErrInvalidConfiguration,
			"No access point configuration is stored",
			"error_at", errorAt,
			"connection-id", r.connectionID,
		)
	}

	if enabled {
		r.lastAPMode.Store(true)

		if _, err := r.ActivateConnection(conn, device, nil); err != nil {
			return dbh.WrapError(err,
				"Cannot activate the access point profile",
				"error_at", "radio-enable-activate",
				"connection-id", r.connectionID,
			)
		}

		return nil
	}

	active, err := r.activeConnectionFor(device, conn)
	if err != nil {
		return dbh.WrapError(err,
			"Cannot get the active access point connection",
			"error_at", "radio-disable-active",
		)
	}

	if err := requireActive(active, r.connectionID); err != nil {
		return err
	}

	if err := r.DeactivateConnection(active); err != nil {
		return dbh.WrapError(err,
			"Cannot deactivate the access point profile",
			"error_at", "radio-disable-deactivate",
			"connection-id", r.connectionID,
		)
	}

	return nil
}

// requireActive returns an error if the stored profile is not the active
// connection of the device. No state change would be broadcast otherwise.
func requireActive(active nm.ActiveConnection, connectionID string) error {
	if active != nil {
		return nil
	}

	return dbh.WrapError(errorkinds.ErrInvalidConfiguration,
		"The running access point was not started from the stored profile",
		"error_at", "radio-disable-inactive",
		"connection-id", connectionID,
	)
}

// APConfiguration returns the configuration stored in the access point profile.
func (r *Radio) APConfiguration(ctx context.Context) (hotspot.AccessPointConfig, error) {
	conn, found, err := r.profile()
	if err != nil {
		return hotspot.AccessPointConfig{}, err
	}

	if !found {
		return hotspot.AccessPointConfig{Security: hotspot.SecurityWPAPSK}, nil
	}

	settings, err := conn.GetSettings()
	if err != nil {
		return hotspot.AccessPointConfig{}, dbh.WrapError(err,
			"Cannot get the access point profile settings",
			"error_at", "radio-configuration-settings",
		)
	}

	if _, ok := settings[sectionSecurity]; ok {
		secrets, err := r.secrets(ctx, conn, sectionSecurity)
		if err != nil {
			return hotspot.AccessPointConfig{}, dbh.WrapError(err,
				"Cannot get the access point passphrase",
				"error_at", "radio-configuration-secrets",
			)
		}

		for key, value := range secrets {
			settings[sectionSecurity][key] = value
		}
	}

	var wireless wirelessSection
	if err := dbh.DecodeSection(settings[sectionWireless], &wireless); err != nil {
		return hotspot.AccessPointConfig{}, dbh.WrapError(
			errorkinds.ErrPropertyDataParse,
			"Cannot decode the wireless settings",
			"error_at", "radio-configuration-wireless",
			"detail", err.Error(),
		)
	}

	var security securitySection
	if err := dbh.DecodeSection(settings[sectionSecurity], &security); err != nil {
		return hotspot.AccessPointConfig{}, dbh.WrapError(
			errorkinds.ErrPropertyDataParse,
			"Cannot decode the wireless security settings",
			"error_at", "radio-configuration-security",
			"detail", err.Error(),
		)
	}

	return accessPointConfig(settings, wireless, security), nil
}

// SetAPConfiguration writes the configuration to the access point profile,
// and creates the profile if it does not exist.
func (r *Radio) SetAPConfiguration(ctx context.Context, cfg hotspot.AccessPointConfig) error {
	conn, found, err := r.profile()
	if err != nil {
		return err
	}

	if found && cfg.Extra == nil {
		existing, err := r.APConfiguration(ctx)
		if err != nil {
			return err
		}

		cfg.Extra = existing.Extra
	}

	settings := profileSettings{
		ID:                r.connectionID,
		Interface:         r.iface,
		AccessPointConfig: cfg,
	}.toMap()

	if !found {
		if _, err := r.AddConnection(settings); err != nil {
			return dbh.WrapError(err,
				"Cannot create the access point profile",
				"error_at", "radio-configuration-add",
				"connection-id", r.connectionID,
			)
		}

		return nil
	}

	if err := conn.Update(settings); err != nil {
		return dbh.WrapError(err,
			"Cannot update the access point profile",
			"error_at", "radio-configuration-update",
			"connection-id", r.connectionID,
		)
	}

	return nil
}

// profile returns the stored access point connection profile.
func (r *Radio) profile() (nm.Connection, bool, error) {
	conns, err := r.ListConnections()
	if err != nil {
		return nil, false, dbh.WrapError(err,
			"Cannot list connection profiles",
			"error_at", "radio-profile-list",
		)
	}

	for _, conn := range conns {
		settings, err := conn.GetSettings()
		if err != nil {
			continue
		}

		id, _ := settings[sectionConnection]["id"].(string)
		mode, _ := settings[sectionWireless]["mode"].(string)

		if id == r.connectionID && mode == wirelessModeAP {
			return conn, true, nil
		}
	}

	return nil, false, nil
}
