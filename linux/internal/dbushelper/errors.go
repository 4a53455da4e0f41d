//go:build linux

package dbushelper

import (
	"context"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/godbus/dbus/v5"
)

// WrapError wraps an error with call metadata.
func WrapError(err error, message string, metadata ...string) error {
	if err == nil {
		return nil
	}

	return fault.Wrap(err,
		fctx.With(context.Background(), metadata...),
		ftag.With(ftag.Internal),
		fmsg.With(message),
	)
}

// WrapSignalError wraps an error with DBus signal data.
func WrapSignalError(err error, signal *dbus.Signal, message string, metadata ...string) error {
	md := append([]string{"signal-name", signal.Name, "signal-path", string(signal.Path)}, metadata...)

	return WrapError(err, message, md...)
}
