// Package backenderr translates platform failures into error kinds
// at the backend adapter boundary.
package backenderr

import (
	"context"
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/darkhz/hotspotctl/api/errorkinds"
)

// passthrough holds the error kinds that a platform primitive may
// report directly, and which are kept as is.
var passthrough = []error{
	errorkinds.ErrPermissionDenied,
	errorkinds.ErrNotOwner,
	errorkinds.ErrUnsupportedOperation,
	errorkinds.ErrSubsystemUnavailable,
	errorkinds.ErrInvalidConfiguration,
	errorkinds.ErrReservationActive,
}

// Wrap wraps a platform error, so that it matches one of the error kinds.
// Errors that do not already carry a kind are classified as
// [errorkinds.ErrSubsystemUnavailable].
func Wrap(err error, errorAt, message string) error {
	if err == nil {
		return nil
	}

	if !hasKind(err) {
		err = fmt.Errorf("%w: %w", errorkinds.ErrSubsystemUnavailable, err)
	}

	return fault.Wrap(err,
		fctx.With(context.Background(), "error_at", errorAt),
		ftag.With(ftag.Internal),
		fmsg.With(message),
	)
}

func hasKind(err error) bool {
	for _, kind := range passthrough {
		if errors.Is(err, kind) {
			return true
		}
	}

	return false
}
