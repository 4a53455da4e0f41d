package cmd

import (
	"context"
	"log/slog"

	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/ftag"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/eventbus"
	"github.com/darkhz/hotspotctl/api/hotspot"
)

// Rotation limits of the log file.
const (
	logMaxSize    = 5
	logMaxBackups = 3
	logMaxAge     = 28
)

// newLogger returns a JSON logger which writes to a rotating log file.
// If no path is provided, all records are discarded.
func newLogger(path string) (*slog.Logger, func() error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }
	}

	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAge,
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})), w.Close
}

// logError records an error along with its tag and context metadata.
func logError(logger *slog.Logger, msg string, err error) {
	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("kind", string(ftag.Get(err))),
	}

	for key, value := range fctx.Unwrap(err) {
		attrs = append(attrs, slog.String(key, value))
	}

	logger.Error(msg, attrs...)
}

// eventLog holds the subscriptions to the events of an engine.
type eventLog struct {
	bus *eventbus.Bus

	states      *hotspot.Subscriber[hotspot.StateTransitionEvent]
	permissions *hotspot.Subscriber[hotspot.PermissionEvent]
	errs        *hotspot.Subscriber[errorkinds.GenericError]
}

// subscribeEvents creates an event stream and subscribes to it. The event stream
// is passed to the engine before it is created, so that errors published while
// the engine bootstraps are recorded.
func subscribeEvents() *eventLog {
	l := &eventLog{bus: eventbus.New(eventbus.DefaultCapacity)}

	l.states, _ = hotspot.StateEvents().Subscribe(l.bus)
	l.permissions, _ = hotspot.PermissionEvents().Subscribe(l.bus)
	l.errs, _ = hotspot.ErrorEvents().Subscribe(l.bus)

	return l
}

// run records the state, permission and error events until the context is
// cancelled or the event stream is closed. If onError is not nil, it is called
// for each error event.
func (l *eventLog) run(ctx context.Context, logger *slog.Logger, onError func(err error)) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-l.states.C:
			if !ok {
				return
			}

			logger.Info("state transition",
				slog.String("from", ev.From.String()),
				slog.String("to", ev.To.String()),
			)

		case ev, ok := <-l.permissions.C:
			if !ok {
				return
			}

			logger.Info("permission",
				slog.String("precondition", ev.Precondition.String()),
				slog.Bool("granted", ev.Granted),
				slog.String("operation", ev.Operation),
			)

		case ev, ok := <-l.errs.C:
			if !ok {
				return
			}

			logError(logger, "engine error", ev)
			if onError != nil {
				onError(ev)
			}
		}
	}
}

// close closes the event stream, along with every subscription.
func (l *eventLog) close() {
	l.bus.Close()
}
