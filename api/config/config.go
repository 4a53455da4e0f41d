package config

import (
	"time"
)

const (
	// DefaultGrantTimeout is the default timeout duration for permission grant requests.
	DefaultGrantTimeout = 30 * time.Second

	// DefaultConnectionID is the default identifier of the stored access point profile.
	DefaultConnectionID = "Hotspot"

	// DefaultSignalBuffer is the default buffer size of the state-change signal stream.
	DefaultSignalBuffer = 16
)

// BackendMode describes how the backend variant is selected.
type BackendMode string

// The different backend selection modes.
const (
	BackendAuto        BackendMode = "auto"
	BackendLegacy      BackendMode = "legacy"
	BackendReservation BackendMode = "reservation"
)

// Valid returns whether the backend mode is known.
func (b BackendMode) Valid() bool {
	switch b {
	case BackendAuto, BackendLegacy, BackendReservation, "":
		return true
	}

	return false
}

// Configuration describes a general configuration.
type Configuration struct {
	// Interface holds the name of the wireless interface to use.
	// If empty, the first wireless device is used.
	Interface string

	// ConnectionID holds the identifier of the stored access point profile.
	ConnectionID string

	// Backend holds the backend selection mode.
	Backend BackendMode

	// GrantTimeout holds the timeout for permission grant requests.
	GrantTimeout time.Duration

	// SignalBuffer holds the buffer size of the state-change signal stream.
	SignalBuffer int
}

// New returns a new configuration with the default values.
func New() Configuration {
	return Configuration{
		ConnectionID: DefaultConnectionID,
		Backend:      BackendAuto,
		GrantTimeout: DefaultGrantTimeout,
		SignalBuffer: DefaultSignalBuffer,
	}
}

// WithDefaults returns a copy of the configuration, where unset values
// are replaced with their defaults.
func (c Configuration) WithDefaults() Configuration {
	d := New()

	if c.ConnectionID == "" {
		c.ConnectionID = d.ConnectionID
	}
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.GrantTimeout <= 0 {
		c.GrantTimeout = d.GrantTimeout
	}
	if c.SignalBuffer <= 0 {
		c.SignalBuffer = d.SignalBuffer
	}

	return c
}
