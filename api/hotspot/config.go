package hotspot

import (
	"fmt"
	"maps"
	"unicode/utf8"

	"github.com/darkhz/hotspotctl/api/errorkinds"
)

// Security specifies the security type of the access point.
type Security string

// The different supported security types.
const (
	SecurityOpen   Security = "open"
	SecurityWPAPSK Security = "wpa-psk"
)

// The bounds of a WPA pre-shared passphrase.
const (
	MinPassphraseLength = 8
	MaxPassphraseLength = 63
	MaxNameLength       = 32
)

// AccessPointConfig holds the configuration of the access point.
type AccessPointConfig struct {
	// Name holds the network name (SSID).
	Name string `json:"name" codec:"name"`

	// Passphrase holds the pre-shared key. It may be empty only
	// if the network is open.
	Passphrase string `json:"passphrase,omitempty" codec:"passphrase,omitempty"`

	// Security holds the security type of the network.
	Security Security `json:"security" codec:"security"`

	// Band holds the frequency band ("a", "bg"), or empty for automatic selection.
	Band string `json:"band,omitempty" codec:"band,omitempty"`

	// Extra holds backend-specific fields that must be carried unmodified
	// so that an existing configuration can be written back as it was read.
	Extra map[string]map[string]any `json:"-" codec:"-"`
}

// Clone returns a copy of the configuration.
func (c AccessPointConfig) Clone() AccessPointConfig {
	if c.Extra == nil {
		return c
	}

	extra := make(map[string]map[string]any, len(c.Extra))
	for section, values := range c.Extra {
		extra[section] = maps.Clone(values)
	}
	c.Extra = extra

	return c
}

// IsOpen returns whether the network is open.
func (c AccessPointConfig) IsOpen() bool {
	return c.Security == SecurityOpen
}

// Validate validates the configuration.
func (c AccessPointConfig) Validate() error {
	switch {
	case c.Name == "":
		return fmt.Errorf("network name is empty: %w", errorkinds.ErrInvalidConfiguration)

	case len(c.Name) > MaxNameLength:
		return fmt.Errorf("network name is longer than %d bytes: %w", MaxNameLength, errorkinds.ErrInvalidConfiguration)
	}

	switch c.Security {
	case SecurityOpen:
		if c.Passphrase != "" {
			return fmt.Errorf("open networks cannot have a passphrase: %w", errorkinds.ErrInvalidConfiguration)
		}

	case SecurityWPAPSK, "":
		length := utf8.RuneCountInString(c.Passphrase)
		if length < MinPassphraseLength || length > MaxPassphraseLength {
			return fmt.Errorf(
				"passphrase must be %d to %d characters: %w",
				MinPassphraseLength, MaxPassphraseLength, errorkinds.ErrInvalidConfiguration,
			)
		}

	default:
		return fmt.Errorf("unknown security type %q: %w", c.Security, errorkinds.ErrInvalidConfiguration)
	}

	switch c.Band {
	case "", "a", "bg":

	default:
		return fmt.Errorf("unknown band %q: %w", c.Band, errorkinds.ErrInvalidConfiguration)
	}

	return nil
}
