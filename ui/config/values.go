package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/ui/keybindings"
	"github.com/darkhz/hotspotctl/ui/theme"
)

// Values describes the possible configuration values that a user can
// modify and supply to the application.
type Values struct {
	Interface    string            `koanf:"interface"`
	Backend      string            `koanf:"backend"`
	ConnectionID string            `koanf:"connection-id"`
	GrantTimeout string            `koanf:"grant-timeout"`
	LogFile      string            `koanf:"log-file"`
	NoWarning    bool              `koanf:"no-warning"`
	SSID         string            `koanf:"ssid"`
	Passphrase   string            `koanf:"passphrase"`
	Open         bool              `koanf:"open"`
	Band         string            `koanf:"band"`
	Theme        map[string]string `koanf:"theme"`
	Keybindings  map[string]string `koanf:"keybindings"`

	Timeout time.Duration
	Kb      *keybindings.Keybindings
}

// ToConfiguration returns the engine configuration described by the values.
func (v *Values) ToConfiguration() config.Configuration {
	return config.Configuration{
		Interface:    v.Interface,
		ConnectionID: v.ConnectionID,
		Backend:      config.BackendMode(v.Backend),
		GrantTimeout: v.Timeout,
	}.WithDefaults()
}

// AccessPoint returns the access point configuration described by the values.
// If no network name is set, nil is returned.
func (v *Values) AccessPoint() *hotspot.AccessPointConfig {
	if v.SSID == "" {
		return nil
	}

	ap := &hotspot.AccessPointConfig{
		Name:       v.SSID,
		Passphrase: v.Passphrase,
		Security:   hotspot.SecurityWPAPSK,
		Band:       v.Band,
	}
	if v.Open {
		ap.Security = hotspot.SecurityOpen
		ap.Passphrase = ""
	}

	return ap
}

// validateValues validates all configuration values.
func (v *Values) validateValues() error {
	for _, validate := range []func() error{
		v.validateKeybindings,
		v.validateBackend,
		v.validateGrantTimeout,
		v.validateLogFile,
		v.validateAccessPoint,
		v.validateTheme,
	} {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

// validateKeybindings validates the keybindings.
func (v *Values) validateKeybindings() error {
	v.Kb = keybindings.NewKeybindings()
	if len(v.Keybindings) == 0 {
		return nil
	}

	return v.Kb.Validate(v.Keybindings)
}

// validateBackend validates the backend selection mode.
func (v *Values) validateBackend() error {
	if !config.BackendMode(v.Backend).Valid() {
		return fmt.Errorf("provided backend '%s' is incorrect.\nValid backends are 'auto', 'legacy', 'reservation'", v.Backend)
	}

	return nil
}

// validateGrantTimeout validates the timeout for permission grant requests.
func (v *Values) validateGrantTimeout() error {
	if v.GrantTimeout == "" {
		v.Timeout = config.DefaultGrantTimeout
		return nil
	}

	timeout, err := time.ParseDuration(v.GrantTimeout)
	if err != nil || timeout <= 0 {
		return fmt.Errorf("provided grant timeout '%s' is not a valid duration (for example, '30s')", v.GrantTimeout)
	}

	v.Timeout = timeout

	return nil
}

// validateLogFile validates whether the directory of the log file is accessible.
func (v *Values) validateLogFile() error {
	if v.LogFile == "" {
		return nil
	}

	dir := filepath.Dir(v.LogFile)
	if statpath, err := os.Stat(dir); err != nil || !statpath.IsDir() {
		return fmt.Errorf("%s: Directory is not accessible", dir)
	}

	return nil
}

// validateAccessPoint validates the stored access point configuration.
func (v *Values) validateAccessPoint() error {
	ap := v.AccessPoint()
	if ap == nil {
		if v.Passphrase != "" {
			return fmt.Errorf("a passphrase was provided without a network name (ssid)")
		}

		return nil
	}

	return ap.Validate()
}

// validateTheme validates the theme configuration.
func (v *Values) validateTheme() error {
	if len(v.Theme) == 0 {
		return nil
	}

	return theme.ParseThemeConfig(v.Theme)
}
