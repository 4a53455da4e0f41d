package views

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"github.com/darkhz/hotspotctl/api/hotspot"
)

// authorizer watches the permission events of the engine, and offers to
// request the missing permission when an operation is denied.
type authorizer struct {
	v *Views

	sub      *hotspot.Subscriber[hotspot.PermissionEvent]
	prompted atomic.Bool
	cancel   context.CancelFunc
}

// newAuthorizer returns a new authorizer.
func newAuthorizer(v *Views) *authorizer {
	return &authorizer{v: v}
}

// start subscribes to the permission events. This is called after all
// views have been initialized.
func (a *authorizer) start() {
	sub, ok := hotspot.PermissionEvents().Subscribe(a.v.app.Session().Engine().Events())
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	a.sub = sub
	a.cancel = cancel

	go a.watch(ctx)
}

// stop unsubscribes from the permission events.
func (a *authorizer) stop() {
	if a.sub == nil {
		return
	}

	a.cancel()
	a.sub.Unsubscribe()
}

// watch handles the permission events until the subscription is closed.
func (a *authorizer) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case <-a.sub.Done:
			return

		case ev, ok := <-a.sub.C:
			if !ok {
				return
			}

			if ev.Operation == "grant" {
				a.reportGrant(ev)
				continue
			}

			if !ev.Granted {
				go a.confirmGrant(ctx, ev)
			}
		}
	}
}

// confirmGrant asks the user whether the missing permission should be requested.
// Only one confirmation is displayed at a time.
func (a *authorizer) confirmGrant(ctx context.Context, ev hotspot.PermissionEvent) {
	if !a.prompted.CompareAndSwap(false, true) {
		return
	}
	defer a.prompted.Store(false)

	msg := fmt.Sprintf(
		"The '[::b]%s[-:-:-]' operation requires the [::bu]%s[-:-:-] permission.\n\nRequest it now?",
		ev.Operation, ev.Precondition,
	)

	modal := a.v.modals.newConfirmModal("permission:"+ev.Precondition.String(), "Permission Required", msg)
	if modal.getReply(ctx) != "y" {
		a.v.status.InfoMessage("Permission request cancelled", false)
		return
	}

	a.requestGrant()
}

// requestGrant requests the precondition of the active backend.
// The result is reported once the permission event is published.
func (a *authorizer) requestGrant() {
	if a.v.app.Session().Engine().Capabilities().Precondition == hotspot.PreconditionNone {
		a.v.status.InfoMessage("No permission is required by the active backend", false)
		return
	}

	a.v.status.InfoMessage("Requesting permission...", true)
	a.v.app.Session().Engine().RequestPermission(context.Background(), func(_ bool, err error) {
		if err != nil {
			a.v.status.ErrorMessage(err)
		}
	})
}

// reportGrant displays the result of a permission request.
func (a *authorizer) reportGrant(ev hotspot.PermissionEvent) {
	if ev.Granted {
		a.v.status.InfoMessage(fmt.Sprintf("Permission %s was granted", ev.Precondition), false)
		return
	}

	a.v.status.InfoMessage(fmt.Sprintf("Permission %s was not granted", ev.Precondition), false)
}
