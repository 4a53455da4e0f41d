package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/api/platforminfo"
	"github.com/darkhz/hotspotctl/backend/legacy"
	"github.com/darkhz/hotspotctl/backend/reservation"
)

type nopRadio struct{}

func (nopRadio) APState(context.Context) (int, error) { return 1, nil }

func (nopRadio) SetAPEnabled(context.Context, *hotspot.AccessPointConfig, bool) error { return nil }

func (nopRadio) APConfiguration(context.Context) (hotspot.AccessPointConfig, error) {
	return hotspot.AccessPointConfig{}, nil
}

func (nopRadio) SetAPConfiguration(context.Context, hotspot.AccessPointConfig) error { return nil }

type nopReserver struct{}

func (nopReserver) APState(context.Context) (int, error) { return 1, nil }

func (nopReserver) StartReservation(context.Context, *hotspot.AccessPointConfig, reservation.Callbacks) error {
	return nil
}

func TestSelect(t *testing.T) {
	tests := []struct {
		version     string
		mode        config.BackendMode
		reservation bool
	}{
		{"1.14.0", config.BackendAuto, false},
		{"1.16.0", config.BackendAuto, true},
		{"1.46.0", "", true},
		{"1.46.0", config.BackendLegacy, false},
		{"1.10.0", config.BackendReservation, true},
	}

	for _, tt := range tests {
		info := platforminfo.NewPlatformInfo("NetworkManager", tt.version, false)

		b, err := Select(info, tt.mode, nopRadio{}, nopReserver{})
		if err != nil {
			t.Fatalf("%s/%s: %v", tt.version, tt.mode, err)
		}

		switch b.(type) {
		case *reservation.Adapter:
			if !tt.reservation {
				t.Errorf("%s/%s: got reservation backend", tt.version, tt.mode)
			}

		case *legacy.Adapter:
			if tt.reservation {
				t.Errorf("%s/%s: got legacy backend", tt.version, tt.mode)
			}
		}
	}
}

func TestSelectUnknownMode(t *testing.T) {
	_, err := Select(platforminfo.PlatformInfo{}, "wps", nopRadio{}, nopReserver{})
	if !errors.Is(err, errorkinds.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}

func TestSelectMissingPrimitive(t *testing.T) {
	info := platforminfo.NewPlatformInfo("NetworkManager", "1.40", false)

	if _, err := Select(info, config.BackendAuto, nopRadio{}, nil); !errors.Is(err, errorkinds.ErrNotSupported) {
		t.Fatalf("expected ErrNotSupported, got %v", err)
	}
}
