//go:build linux

// Package polkit checks access point permissions through the
// polkit authority.
package polkit

import (
	"context"
	"fmt"
	"os"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	dbh "github.com/darkhz/hotspotctl/linux/internal/dbushelper"
	"github.com/godbus/dbus/v5"
	"github.com/rs/xid"
	"go.uber.org/atomic"
)

// The polkit CheckAuthorization flags.
const (
	flagNone                 uint32 = 0
	flagAllowUserInteraction uint32 = 1
)

// subject describes the polkit subject, which is this process.
type subject struct {
	Kind    string
	Details map[string]dbus.Variant
}

// authorizationResult describes the result of an authorization check.
type authorizationResult struct {
	IsAuthorized bool
	IsChallenge  bool
	Details      map[string]string
}

// Authority checks preconditions through the polkit authority.
type Authority struct {
	systemBus *dbus.Conn
	subject   subject

	// openNetwork selects the action for sharing open networks.
	openNetwork atomic.Bool
}

// NewAuthority returns a new polkit authority.
func NewAuthority(systemBus *dbus.Conn) *Authority {
	return &Authority{
		systemBus: systemBus,
		subject: subject{
			Kind: "unix-process",
			Details: map[string]dbus.Variant{
				"pid":        dbus.MakeVariant(uint32(os.Getpid())),
				"start-time": dbus.MakeVariant(uint64(0)),
			},
		},
	}
}

// SetOpenNetwork sets whether the shared network is open, which selects
// the action that is checked for runtime consent.
func (a *Authority) SetOpenNetwork(open bool) {
	a.openNetwork.Store(open)
}

// Action returns the polkit action for the precondition.
func (a *Authority) Action(precondition hotspot.Precondition) (string, error) {
	switch precondition {
	case hotspot.PreconditionModifySettings:
		return dbh.ActionModifySystemSettings, nil

	case hotspot.PreconditionRuntimeConsent:
		if a.openNetwork.Load() {
			return dbh.ActionShareOpen, nil
		}

		return dbh.ActionShareProtected, nil
	}

	return "", fmt.Errorf("precondition %q: %w", precondition, errorkinds.ErrNotSupported)
}

// Authorize checks whether this process is authorized for the action of the
// precondition. If interactive is set, polkit may ask the user to authenticate.
// The check is cancelled if the context is done before it is resolved.
func (a *Authority) Authorize(ctx context.Context, precondition hotspot.Precondition, interactive bool) (bool, error) {
	action, err := a.Action(precondition)
	if err != nil {
		return false, err
	}

	flags := flagNone
	if interactive {
		flags = flagAllowUserInteraction
	}

	cancellationID := xid.New().String()
	authority := a.systemBus.Object(dbh.PolkitBusName, dbh.PolkitAuthorityPath)

	call := authority.GoWithContext(ctx, dbh.PolkitCheckAuthorization, 0, make(chan *dbus.Call, 1),
		a.subject, action, map[string]string{}, flags, cancellationID,
	)

	select {
	case <-ctx.Done():
		authority.Call(dbh.PolkitCancelAuthorization, 0, cancellationID)

		return false, dbh.WrapError(ctx.Err(),
			"The authorization request was cancelled",
			"error_at", "polkit-authorize-cancel",
			"action", action,
		)

	case reply := <-call.Done:
		var result authorizationResult

		if err := reply.Store(&result); err != nil {
			return false, dbh.WrapError(err,
				"Cannot check the authorization",
				"error_at", "polkit-authorize",
				"action", action,
			)
		}

		return result.IsAuthorized, nil
	}
}
