//go:build !linux

package session

import (
	"context"
	"fmt"

	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/engine"
)

// Start returns an error, since access point control is only supported on Linux.
func Start(context.Context, config.Configuration, *hotspot.AccessPointConfig, ...engine.Option) (*Session, error) {
	return nil, fmt.Errorf("%w: %w", errorkinds.ErrSessionStart, errorkinds.ErrNotSupported)
}
