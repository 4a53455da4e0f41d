// Package legacy implements the backend which directly toggles
// a stored, configurable access point profile.
package legacy

import (
	"context"

	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/backend/internal/backenderr"
)

// Radio describes the privileged toggle primitive of the subsystem.
type Radio interface {
	// APState returns the raw (non-offset) access point state.
	APState(ctx context.Context) (int, error)

	// SetAPEnabled starts or stops the access point. If cfg is nil,
	// the stored configuration is used.
	SetAPEnabled(ctx context.Context, cfg *hotspot.AccessPointConfig, enabled bool) error

	// APConfiguration returns the stored access point configuration.
	APConfiguration(ctx context.Context) (hotspot.AccessPointConfig, error)

	// SetAPConfiguration replaces the stored access point configuration.
	SetAPConfiguration(ctx context.Context, cfg hotspot.AccessPointConfig) error
}

// Adapter is the legacy backend.
type Adapter struct {
	radio Radio
}

var capabilities = hotspot.BackendCapability{
	Flags:        hotspot.CapabilitySetConfiguration | hotspot.CapabilityToggleByAnyCaller,
	Confirmation: hotspot.ConfirmationBroadcast,
	Precondition: hotspot.PreconditionModifySettings,
}

// New returns a new legacy backend.
func New(radio Radio) *Adapter {
	return &Adapter{radio: radio}
}

// Capabilities returns the capability set of the backend.
func (a *Adapter) Capabilities() hotspot.BackendCapability {
	return capabilities
}

// ReadState reads the raw access point state.
func (a *Adapter) ReadState(ctx context.Context) (int, error) {
	raw, err := a.radio.APState(ctx)
	if err != nil {
		return hotspot.RawUnknown, backenderr.Wrap(err, "legacy-read-state", "Cannot read the access point state")
	}

	return raw, nil
}

// Enable starts the access point. Confirmation arrives through the
// state-change broadcast, so the confirm function is not used.
func (a *Adapter) Enable(ctx context.Context, cfg *hotspot.AccessPointConfig, _ hotspot.ConfirmFunc) error {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return backenderr.Wrap(err, "legacy-enable-validate", "Invalid access point configuration")
		}
	}

	if err := a.radio.SetAPEnabled(ctx, cfg, true); err != nil {
		return backenderr.Wrap(err, "legacy-enable", "Cannot start the access point")
	}

	return nil
}

// Disable stops the access point.
func (a *Adapter) Disable(ctx context.Context) error {
	if err := a.radio.SetAPEnabled(ctx, nil, false); err != nil {
		return backenderr.Wrap(err, "legacy-disable", "Cannot stop the access point")
	}

	return nil
}

// ReadConfiguration reads the stored access point configuration.
func (a *Adapter) ReadConfiguration(ctx context.Context) (hotspot.AccessPointConfig, error) {
	cfg, err := a.radio.APConfiguration(ctx)
	if err != nil {
		return hotspot.AccessPointConfig{}, backenderr.Wrap(err, "legacy-read-configuration", "Cannot read the access point configuration")
	}

	return cfg, nil
}

// WriteConfiguration writes the access point configuration.
func (a *Adapter) WriteConfiguration(ctx context.Context, cfg hotspot.AccessPointConfig) error {
	if err := cfg.Validate(); err != nil {
		return backenderr.Wrap(err, "legacy-write-validate", "Invalid access point configuration")
	}

	if err := a.radio.SetAPConfiguration(ctx, cfg); err != nil {
		return backenderr.Wrap(err, "legacy-write-configuration", "Cannot write the access point configuration")
	}

	return nil
}
