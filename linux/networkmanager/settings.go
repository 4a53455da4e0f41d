package networkmanager

import (
	"maps"
	"strings"

	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/google/uuid"
)

// The NetworkManager connection setting sections and keys.
const (
	sectionConnection = "connection"
	sectionWireless   = "802-11-wireless"
	sectionSecurity   = "802-11-wireless-security"
	sectionIPv4       = "ipv4"
	sectionIPv6       = "ipv6"

	wirelessModeAP = "ap"
	keyMgmtWPAPSK  = "wpa-psk"
)

// profileSettings describes the parameters of an access point connection profile.
type profileSettings struct {
	ID        string
	Interface string

	hotspot.AccessPointConfig
}

// toMap returns the profile as a map of connection settings. Sections of the
// configuration's extra fields are used as a base, so that any existing setting
// that is not described by the configuration is kept as is.
func (p profileSettings) toMap() map[string]map[string]any {
	settings := make(map[string]map[string]any, len(p.Extra)+5)
	for section, values := range p.Extra {
		settings[section] = maps.Clone(values)
	}

	connection := section(settings, sectionConnection)
	connection["type"] = sectionWireless
	if _, ok := connection["uuid"]; !ok {
		connection["uuid"] = uuid.New().String()
	}
	if p.ID != "" {
		connection["id"] = p.ID
	}
	if p.Interface != "" {
		connection["interface-name"] = p.Interface
	}
	if _, ok := connection["autoconnect"]; !ok {
		connection["autoconnect"] = false
	}

	wireless := section(settings, sectionWireless)
	wireless["mode"] = wirelessModeAP
	wireless["ssid"] = []byte(p.Name)
	if p.Band != "" {
		wireless["band"] = p.Band
	} else {
		delete(wireless, "band")
		delete(wireless, "channel")
	}

	if p.IsOpen() {
		delete(settings, sectionSecurity)
		delete(wireless, "security")
	} else {
		security := section(settings, sectionSecurity)
		security["key-mgmt"] = keyMgmtWPAPSK
		security["psk"] = p.Passphrase
	}

	ipv4 := section(settings, sectionIPv4)
	if _, ok := ipv4["method"]; !ok {
		ipv4["method"] = "shared"
	}

	ipv6 := section(settings, sectionIPv6)
	if _, ok := ipv6["method"]; !ok {
		ipv6["method"] = "ignore"
	}

	// The address and route lists are returned in a format which cannot be
	// sent back as is.
	for _, name := range []string{sectionIPv4, sectionIPv6} {
		delete(settings[name], "addresses")
		delete(settings[name], "routes")
	}

	return settings
}

// wirelessSection holds the decoded wireless settings section.
type wirelessSection struct {
	Mode string `codec:"mode"`
	SSID []byte `codec:"ssid"`
	Band string `codec:"band"`
}

// securitySection holds the decoded wireless security settings section.
type securitySection struct {
	KeyMgmt string `codec:"key-mgmt"`
	PSK     string `codec:"psk"`
}

// accessPointConfig builds an access point configuration from decoded sections.
// Every other section is carried in the extra fields.
func accessPointConfig(settings map[string]map[string]any, wireless wirelessSection, security securitySection) hotspot.AccessPointConfig {
	cfg := hotspot.AccessPointConfig{
		Name:       string(wireless.SSID),
		Passphrase: security.PSK,
		Security:   hotspot.SecurityOpen,
		Band:       wireless.Band,
		Extra:      make(map[string]map[string]any, len(settings)),
	}

	if strings.HasPrefix(security.KeyMgmt, "wpa") || security.PSK != "" {
		cfg.Security = hotspot.SecurityWPAPSK
	}

	for name, values := range settings {
		cfg.Extra[name] = maps.Clone(values)
	}

	return cfg
}

func section(settings map[string]map[string]any, name string) map[string]any {
	values, ok := settings[name]
	if !ok || values == nil {
		values = make(map[string]any)
		settings[name] = values
	}

	return values
}
