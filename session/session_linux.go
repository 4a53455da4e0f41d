//go:build linux

package session

import (
	"context"
	"fmt"
	"os"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/api/platforminfo"
	"github.com/darkhz/hotspotctl/backend"
	"github.com/darkhz/hotspotctl/engine"
	"github.com/darkhz/hotspotctl/linux/networkmanager"
	"github.com/darkhz/hotspotctl/linux/polkit"
	"github.com/darkhz/hotspotctl/permission"
	"github.com/godbus/dbus/v5"
	"golang.org/x/sync/errgroup"
)

// Start detects the platform, selects the backend and returns a session with
// a bootstrapped engine. If ap is not nil, it is used by the next enable.
func Start(ctx context.Context, cfg config.Configuration, ap *hotspot.AccessPointConfig, opts ...engine.Option) (*Session, error) {
	cfg = cfg.WithDefaults()

	systemBus, err := dbus.SystemBus()
	if err != nil {
		return nil, wrapStart(err, "start-systembus", "Cannot initialize system DBus")
	}

	manager, err := networkmanager.Initialize(systemBus, cfg)
	if err != nil {
		return nil, wrapStart(err, "start-networkmanager", "Cannot initialize NetworkManager")
	}

	var version string

	var group errgroup.Group
	group.Go(func() error {
		var err error

		version, err = manager.Version()

		return err
	})
	group.Go(func() error {
		_, err := manager.Device()
		return err
	})

	if err := group.Wait(); err != nil {
		return nil, wrapStart(err, "start-platform", "Cannot detect the access point platform")
	}

	platform := platforminfo.NewPlatformInfo("NetworkManager (DBus)", version, os.Geteuid() == 0)

	selected, err := backend.Select(platform, cfg.Backend, manager.NewRadio(), manager.NewReserver())
	if err != nil {
		return nil, wrapStart(err, "start-backend", "Cannot select the access point backend")
	}

	authority := polkit.NewAuthority(systemBus)
	if ap != nil {
		authority.SetOpenNetwork(ap.IsOpen())
		opts = append([]engine.Option{engine.WithConfiguration(*ap)}, opts...)
	}

	opts = append([]engine.Option{engine.WithSource(manager.NewSignalSource(cfg.SignalBuffer))}, opts...)

	e, err := engine.New(ctx, selected, permission.NewGate(authority, platform, cfg.GrantTimeout), opts...)
	if err != nil {
		return nil, wrapStart(err, "start-engine", "Cannot initialize the access point engine")
	}

	return &Session{
		engine:      e,
		platform:    platform,
		openNetwork: authority.SetOpenNetwork,
	}, nil
}

func wrapStart(err error, errorAt, message string) error {
	return fault.Wrap(fmt.Errorf("%w: %w", errorkinds.ErrSessionStart, err),
		fctx.With(context.Background(), "error_at", errorAt),
		ftag.With(ftag.Internal),
		fmsg.With(message),
	)
}
