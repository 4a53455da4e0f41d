package app

import (
	"context"
	"time"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"

	"github.com/darkhz/hotspotctl/session"
	"github.com/darkhz/hotspotctl/ui/app/views"
	"github.com/darkhz/hotspotctl/ui/config"
)

// Application holds an application with its views.
type Application struct {
	view *views.Views
}

// NewApplication returns a new application.
func NewApplication() *Application {
	return &Application{
		view: views.NewViews(),
	}
}

// Start starts the application, and blocks until it is closed.
// The save function stores access point configurations which cannot
// be written to the platform.
func (a *Application) Start(s *session.Session, cfg *config.Config, save views.ConfigSaver) error {
	binder := &appBinder{
		session:     s,
		draws:       make(chan struct{}, 1),
		Application: tview.NewApplication(),
	}

	appview, err := a.view.Initialize(binder, cfg, save)
	if err != nil {
		return err
	}
	defer a.view.Close()

	binder.SetInputCapture(appview.InputCapture)
	binder.SetMouseCapture(appview.MouseFunc)
	binder.SetBeforeDrawFunc(appview.BeforeDrawFunc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go binder.monitorQueuedDraws(ctx)

	return binder.SetRoot(appview.Layout, true).SetFocus(appview.InitialFocus).EnableMouse(true).Run()
}

// appBinder holds the hotspot session and the application.
type appBinder struct {
	session       *session.Session
	draws         chan struct{}
	shouldSuspend bool

	*tview.Application
}

// Session returns the current session.
func (a *appBinder) Session() *session.Session {
	return a.session
}

// InstantDraw instantly draws to the screen.
func (a *appBinder) InstantDraw(drawFunc func()) {
	a.QueueUpdateDraw(drawFunc)
}

// QueueDraw only queues the drawing.
func (a *appBinder) QueueDraw(drawFunc func()) {
	a.QueueUpdate(drawFunc)

	select {
	case a.draws <- struct{}{}:
	default:
	}
}

// Refresh refreshes the screen.
func (a *appBinder) Refresh() {
	a.Draw()
}

// GetFocused gets the currently focused primitive.
func (a *appBinder) GetFocused() tview.Primitive {
	return a.GetFocus()
}

// FocusPrimitive sets the focus on the provided primitive.
func (a *appBinder) FocusPrimitive(primitive tview.Primitive) {
	a.SetFocus(primitive)
}

// StartSuspend starts the application's suspend.
// [appbinder.Suspend] is called within the application's drawing handler
// once this function is called.
func (a *appBinder) StartSuspend() {
	a.shouldSuspend = true
}

// Suspend suspends the application.
func (a *appBinder) Suspend(t tcell.Screen) {
	if !a.shouldSuspend {
		return
	}

	a.shouldSuspend = false

	suspendApp(t)
}

// Close stops the application.
func (a *appBinder) Close() {
	a.Stop()
}

// monitorQueuedDraws monitors for any queued primitive draws and refreshes the screen.
func (a *appBinder) monitorQueuedDraws(ctx context.Context) {
	t := time.NewTicker(1 * time.Second)
	defer t.Stop()

	var queued bool

	for {
		select {
		case <-ctx.Done():
			return

		case <-t.C:
			if queued {
				go a.Refresh()
				queued = false
				t.Reset(1 * time.Second)
			}

		case <-a.draws:
			queued = true
			t.Reset(50 * time.Millisecond)
		}
	}
}
