package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/engine"
	"github.com/darkhz/hotspotctl/session"
	"github.com/darkhz/hotspotctl/ui/app"
	"github.com/darkhz/hotspotctl/ui/config"
)

const (
	defaultWaitTimeout = 30 * time.Second
	releaseTimeout     = 10 * time.Second
)

// cliState holds the loaded configuration and the logger, which are shared
// by all the commands.
type cliState struct {
	k   *koanf.Koanf
	cfg *config.Config

	logger      *slog.Logger
	closeLogger func() error
}

// load loads the configuration, and sets up the logger.
func (c *cliState) load(cliCtx *cli.Context) error {
	if err := c.cfg.Load(c.k, cliCtx); err != nil {
		return err
	}

	c.logger, c.closeLogger = newLogger(c.cfg.Values.LogFile)

	return nil
}

// close flushes and closes the logger.
func (c *cliState) close() error {
	if c.closeLogger == nil {
		return nil
	}

	return c.closeLogger()
}

// logError records an error which ended a command.
func (c *cliState) logError(err error) {
	if c.logger == nil {
		return
	}

	logError(c.logger, "command failed", err)
}

// startSession validates the configuration, and starts a session. Errors published
// by the engine are logged, and printed if printErrors is set. The returned function
// stops the session.
func (c *cliState) startSession(cliCtx *cli.Context, printErrors bool) (*session.Session, func(), error) {
	if err := c.cfg.ValidateValues(); err != nil {
		return nil, nil, err
	}

	values := &c.cfg.Values
	events := subscribeEvents()

	s, err := session.Start(cliCtx.Context, values.ToConfiguration(), values.AccessPoint(), engine.WithEventBus(events.bus))
	if err != nil {
		events.close()
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	var onError func(err error)
	if printErrors {
		onError = printError
	}

	logged := make(chan struct{})
	go func() {
		defer close(logged)
		events.run(ctx, c.logger, onError)
	}()

	c.logger.Info("session started",
		slog.String("backend", s.BackendName()),
		slog.String("stack", s.Platform().Stack),
		slog.String("version", s.Platform().Version),
	)
	c.printUnsupported(s)

	return s, func() {
		if err := s.Stop(); err != nil {
			c.logError(err)
		}

		events.close()
		cancel()
		<-logged
	}, nil
}

// printUnsupported prints the operations which are not supported by the selected backend.
func (c *cliState) printUnsupported(s *session.Session) {
	if c.cfg.Values.NoWarning || s.Engine().Capabilities().CanSetConfiguration() {
		return
	}

	printWarn(fmt.Sprintf(
		"The %s backend cannot read or write the stored access point configuration.\nThe configuration is kept in the configuration file instead.",
		s.BackendName(),
	))
}

// status prints the access point state and the backend capabilities.
func (c *cliState) status(cliCtx *cli.Context) error {
	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	e := s.Engine()
	caps := e.Capabilities()
	state := e.CurrentState()

	toggle := "creator only"
	if caps.CanToggleByAnyCaller() {
		toggle = "any caller"
	}

	configuration := "configuration file"
	if caps.CanSetConfiguration() {
		configuration = "platform"
	}

	printFields(cliCtx.App.Writer, [][2]string{
		{"Hotspot", stateColor(state).Sprint(stateName(state))},
		{"Backend", s.BackendName()},
		{"Platform", s.Platform().Stack + " " + s.Platform().Version},
		{"Confirmation", caps.Confirmation.String()},
		{"Permission", caps.Precondition.String()},
		{"Toggle", toggle},
		{"Configuration", configuration},
	})

	return nil
}

// enable enables the access point.
func (c *cliState) enable(cliCtx *cli.Context) error {
	return c.changeState(cliCtx, hotspot.StateDisabled, hotspot.StateEnabled, "Enabling access point", (*engine.Engine).Enable)
}

// disable disables the access point.
func (c *cliState) disable(cliCtx *cli.Context) error {
	err := c.changeState(cliCtx, hotspot.StateEnabled, hotspot.StateDisabled, "Disabling access point", (*engine.Engine).Disable)
	if errors.Is(err, errorkinds.ErrNotOwner) {
		return fmt.Errorf("the access point was not started by this process, and can only be disabled by its creator: %w", err)
	}

	return err
}

// changeState performs the provided operation if the access point is in the
// from state, and optionally waits for the access point to reach the target state.
// Reservations are released by the platform once this process exits, so an access
// point which is reserved by enable is kept up until the command is interrupted.
func (c *cliState) changeState(
	cliCtx *cli.Context,
	from, target hotspot.State, description string,
	operation func(e *engine.Engine, ctx context.Context) error,
) error {
	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e := s.Engine()
	hold := target == hotspot.StateEnabled && e.Capabilities().RequiresCreatorToDisable()

	var waiter *stateWaiter
	if hold || cliCtx.Bool("wait") {
		waiter = newStateWaiter(e)
		defer waiter.close()
	}

	current := e.CurrentState()
	if err := withGrant(ctx, e, func() error { return operation(e, ctx) }); err != nil {
		return err
	}

	if current != from {
		if current == hotspot.StateFailed {
			printWarn("Hotspot has failed, the request was ignored")
			return nil
		}

		printInfo("Hotspot is " + stateName(current) + ", the request was ignored")

		return nil
	}

	if waiter == nil {
		printInfo(description + ": request sent")
		return nil
	}

	waitCtx, waitCancel := context.WithTimeout(ctx, cliCtx.Duration("timeout"))
	defer waitCancel()

	if err := waiter.wait(waitCtx, target, description); err != nil {
		return err
	}

	printInfo("Hotspot is " + stateName(target))

	if !hold {
		return nil
	}

	return waiter.hold(ctx)
}

// configShow prints the access point configuration.
func (c *cliState) configShow(cliCtx *cli.Context) error {
	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	var ap hotspot.AccessPointConfig

	source := "configuration file"
	if s.Engine().Capabilities().CanSetConfiguration() {
		source = "platform"

		ap, err = s.Engine().Configuration(cliCtx.Context)
		if err != nil {
			return err
		}
	} else if stored := c.cfg.Values.AccessPoint(); stored != nil {
		ap = *stored
	}

	passphrase := maskPassphrase(ap.Passphrase)
	if cliCtx.Bool("show-passphrase") && ap.Passphrase != "" {
		passphrase = ap.Passphrase
	}

	band := ap.Band
	if band == "" {
		band = "automatic"
	}

	security := string(ap.Security)
	if security == "" {
		security = string(hotspot.SecurityWPAPSK)
	}

	printFields(cliCtx.App.Writer, [][2]string{
		{"Name", ap.Name},
		{"Security", security},
		{"Passphrase", passphrase},
		{"Band", band},
		{"Source", source},
	})

	return nil
}

// configSet changes the access point configuration.
func (c *cliState) configSet(cliCtx *cli.Context) error {
	ap := hotspot.AccessPointConfig{
		Name:       cliCtx.String("ssid"),
		Passphrase: cliCtx.String("passphrase"),
		Security:   hotspot.SecurityWPAPSK,
		Band:       cliCtx.String("band"),
	}
	if cliCtx.Bool("open") {
		ap.Security = hotspot.SecurityOpen
		ap.Passphrase = ""
	}

	if err := ap.Validate(); err != nil {
		return err
	}

	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	if s.Engine().Capabilities().CanSetConfiguration() {
		if err := s.Engine().SetConfiguration(cliCtx.Context, ap); err != nil {
			return err
		}

		printInfo("Saved the access point configuration")

		return nil
	}

	if err := c.cfg.SaveAccessPoint(c.k, ap); err != nil {
		return err
	}

	printInfo("Saved the access point configuration to the configuration file")

	return nil
}

// watch prints the state transitions of the access point until interrupted.
func (c *cliState) watch(cliCtx *cli.Context) error {
	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	ctx, cancel := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	e := s.Engine()
	w := cliCtx.App.Writer

	state := e.CurrentState()
	fmt.Fprintf(w, "%s Hotspot is %s\n", timestamp(), stateColor(state).Sprint(stateName(state)))

	id := e.RegisterListener(hotspot.ListenerFunc(func(event hotspot.StateTransitionEvent) {
		fmt.Fprintf(w, "%s %s -> %s\n",
			timestamp(),
			stateColor(event.From).Sprint(stateName(event.From)),
			stateColor(event.To).Sprint(stateName(event.To)),
		)
	}))
	defer e.UnregisterListener(id)

	<-ctx.Done()

	return nil
}

// grant requests the permission that is required by the active backend.
func (c *cliState) grant(cliCtx *cli.Context) error {
	s, stop, err := c.startSession(cliCtx, true)
	if err != nil {
		return err
	}
	defer stop()

	precondition := s.Engine().Capabilities().Precondition
	if precondition == hotspot.PreconditionNone {
		printInfo("No permission is required by the " + s.BackendName() + " backend")
		return nil
	}

	granted, err := requestGrant(cliCtx.Context, s.Engine())
	if err != nil {
		return err
	}

	if !granted {
		return fmt.Errorf("the %s permission was not granted: %w", precondition, errorkinds.ErrPermissionDenied)
	}

	printInfo("The " + precondition.String() + " permission was granted")

	return nil
}

// ui starts the interactive interface.
func (c *cliState) ui(cliCtx *cli.Context) error {
	s, stop, err := c.startSession(cliCtx, false)
	if err != nil {
		return err
	}
	defer stop()

	return app.NewApplication().Start(s, c.cfg, func(ap hotspot.AccessPointConfig) error {
		return c.cfg.SaveAccessPoint(c.k, ap)
	})
}

// withGrant performs the operation, and if the operation is denied, requests the
// missing permission and retries the operation once.
func withGrant(ctx context.Context, e *engine.Engine, operation func() error) error {
	err := operation()
	if !errors.Is(err, errorkinds.ErrPermissionDenied) {
		return err
	}

	printWarn("The " + e.Capabilities().Precondition.String() + " permission is required, requesting authorization")

	granted, grantErr := requestGrant(ctx, e)
	if grantErr != nil {
		return errors.Join(err, grantErr)
	}
	if !granted {
		return err
	}

	return operation()
}

// requestGrant requests the precondition of the active backend, and waits for the result.
func requestGrant(ctx context.Context, e *engine.Engine) (bool, error) {
	type result struct {
		granted bool
		err     error
	}

	reply := make(chan result, 1)
	e.RequestPermission(ctx, func(granted bool, err error) {
		reply <- result{granted, err}
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()

	case r := <-reply:
		return r.granted, r.err
	}
}

// stateWaiter observes the state transitions of the engine.
type stateWaiter struct {
	e       *engine.Engine
	id      engine.ListenerID
	changes chan hotspot.State
}

// newStateWaiter registers a listener on the engine. Registering the listener
// activates the notification bridge, so that transitions reported by the
// platform are observed.
func newStateWaiter(e *engine.Engine) *stateWaiter {
	w := &stateWaiter{
		e:       e,
		changes: make(chan hotspot.State, 8),
	}

	w.id = e.RegisterListener(hotspot.ListenerFunc(func(event hotspot.StateTransitionEvent) {
		select {
		case w.changes <- event.To:
		default:
		}
	}))

	return w
}

// wait displays a spinner until the target state is reached, the access point
// fails, or the context is done.
func (w *stateWaiter) wait(ctx context.Context, target hotspot.State, description string) error {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	defer bar.Finish()

	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()

	for w.e.CurrentState() != target {
		select {
		case <-ctx.Done():
			return fmt.Errorf("stopped waiting for the access point: %w", ctx.Err())

		case state := <-w.changes:
			if state == hotspot.StateFailed {
				return fmt.Errorf("the access point has failed (%s)", strings.ToLower(description))
			}

		case <-t.C:
			bar.Add(1)
		}
	}

	return nil
}

// hold keeps the access point enabled until the context is done, and then
// disables it. An error is returned if the access point is stopped by the platform.
func (w *stateWaiter) hold(ctx context.Context) error {
	printInfo("Keeping the access point up, press Ctrl+C to disable it")

	for w.e.CurrentState() == hotspot.StateEnabled {
		select {
		case <-ctx.Done():
			return w.release()

		case <-w.changes:
		}
	}

	state := w.e.CurrentState()

	return fmt.Errorf("the access point was stopped by the platform (hotspot is %s)", strings.ToLower(stateName(state)))
}

// release disables the held access point.
func (w *stateWaiter) release() error {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()

	if err := w.e.Disable(ctx); err != nil {
		return err
	}

	printInfo("Hotspot is " + stateName(w.e.CurrentState()))

	return nil
}

// close unregisters the listener.
func (w *stateWaiter) close() {
	w.e.UnregisterListener(w.id)
}

// timestamp returns the current time for display.
func timestamp() string {
	return time.Now().Format(time.TimeOnly)
}
