// Package permission evaluates the preconditions which must be held
// before the access point state can be changed.
package permission

import (
	"context"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/darkhz/hotspotctl/api/config"
	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/api/platforminfo"
	"golang.org/x/sync/singleflight"
)

// PolicyGatedVersion is the first subsystem version which gates the
// settings-modification privilege behind the authorization policy.
const PolicyGatedVersion = "0.9.10"

// Authority describes the platform authorization mechanism.
type Authority interface {
	// Authorize returns whether the precondition is held by this process.
	// If interactive is set, the authority may ask the user to grant it.
	Authorize(ctx context.Context, precondition hotspot.Precondition, interactive bool) (bool, error)
}

// ResolvedFunc is called once a grant request is resolved.
type ResolvedFunc func(granted bool, err error)

// Gate evaluates preconditions through an authority.
// Results are never cached: every call asks the authority.
type Gate struct {
	authority Authority
	info      platforminfo.PlatformInfo
	timeout   time.Duration

	group singleflight.Group
}

// NewGate returns a new permission gate.
func NewGate(authority Authority, info platforminfo.PlatformInfo, timeout time.Duration) *Gate {
	if timeout <= 0 {
		timeout = config.DefaultGrantTimeout
	}

	return &Gate{
		authority: authority,
		info:      info,
		timeout:   timeout,
	}
}

// Check returns whether the precondition is currently held, without
// user interaction. Authority failures are treated as a denial.
func (g *Gate) Check(ctx context.Context, precondition hotspot.Precondition) bool {
	if g.autoSatisfied(precondition) {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	granted, err := g.authority.Authorize(ctx, precondition, false)

	return err == nil && granted
}

// RequestGrant asks the user to grant the precondition, and calls onResolved
// asynchronously with the result. Concurrent requests for the same precondition
// share a single authorization request. The request is cancelled if it is not
// resolved within the grant timeout.
func (g *Gate) RequestGrant(ctx context.Context, precondition hotspot.Precondition, onResolved ResolvedFunc) {
	if onResolved == nil {
		onResolved = func(bool, error) {}
	}

	go func() {
		onResolved(g.Grant(ctx, precondition))
	}()
}

// Grant asks the user to grant the precondition, and waits for the result.
func (g *Gate) Grant(ctx context.Context, precondition hotspot.Precondition) (bool, error) {
	if g.autoSatisfied(precondition) {
		return true, nil
	}

	ch := g.group.DoChan(string(precondition), func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.timeout)
		defer cancel()

		return g.authority.Authorize(ctx, precondition, true)
	})

	var result singleflight.Result

	select {
	case result = <-ch:
	case <-ctx.Done():
		result.Err = ctx.Err()
	}

	if result.Err != nil {
		return false, fault.Wrap(result.Err,
			fctx.With(context.Background(),
				"error_at", "permission-grant",
				"precondition", precondition.String(),
			),
			ftag.With(ftag.PermissionDenied),
			fmsg.With("Cannot obtain the required permission"),
		)
	}

	granted, _ := result.Val.(bool)
	if !granted {
		return false, errorkinds.ErrPermissionDenied
	}

	return true, nil
}

// autoSatisfied returns whether the precondition is held without asking the authority.
// The settings-modification privilege is always held by the superuser, and on
// platforms older than the policy-gated version. Runtime consent is always explicit.
func (g *Gate) autoSatisfied(precondition hotspot.Precondition) bool {
	switch precondition {
	case hotspot.PreconditionNone:
		return true

	case hotspot.PreconditionModifySettings:
		if g.info.Privileged {
			return true
		}

		return g.info.Version != "" && !g.info.AtLeast(PolicyGatedVersion)
	}

	return false
}
