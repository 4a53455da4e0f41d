// Package backend selects the access point backend for a platform.
package backend

import (
	"fmt"

	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/api/platforminfo"
	"github.com/darkhz/hotspotctl/backend/legacy"
	"github.com/darkhz/hotspotctl/backend/reservation"
)

// ReservationVersion is the first subsystem version which supports reservations.
const ReservationVersion = "1.16"

// Select returns the backend for the platform. In automatic mode, the reservation
// backend is chosen for subsystem versions from [ReservationVersion] onwards.
// The selection is made once, and the returned backend is used for the lifetime
// of the session.
func Select(info platforminfo.PlatformInfo, mode config.BackendMode, radio legacy.Radio, reserver reservation.Reserver) (hotspot.Backend, error) {
	switch mode {
	case config.BackendAuto, "":
		if info.AtLeast(ReservationVersion) {
			mode = config.BackendReservation
		} else {
			mode = config.BackendLegacy
		}

	case config.BackendLegacy, config.BackendReservation:

	default:
		return nil, fmt.Errorf("unknown backend mode %q: %w", mode, errorkinds.ErrNotSupported)
	}

	switch mode {
	case config.BackendReservation:
		if reserver == nil {
			return nil, fmt.Errorf("reservation backend: %w", errorkinds.ErrNotSupported)
		}

		return reservation.New(reserver), nil

	default:
		if radio == nil {
			return nil, fmt.Errorf("legacy backend: %w", errorkinds.ErrNotSupported)
		}

		return legacy.New(radio), nil
	}
}
