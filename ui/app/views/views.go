package views

import (
	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"

	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/session"
	"github.com/darkhz/hotspotctl/ui/config"
	"github.com/darkhz/hotspotctl/ui/keybindings"
	"github.com/darkhz/hotspotctl/ui/theme"
)

// AppData holds all the necessary layout and event handling data for the root application to initialize.
// This is passed to the application once all the views are initialized using [Views.Initialize].
type AppData struct {
	Layout         *tview.Flex
	InitialFocus   tview.Primitive
	MouseFunc      func(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction)
	BeforeDrawFunc func(t tcell.Screen) bool
	InputCapture   func(event *tcell.EventKey) *tcell.EventKey
}

// AppBinder binds all the root application's functions to the views manager ([Views]).
type AppBinder interface {
	Session() *session.Session

	QueueDraw(drawFunc func())
	InstantDraw(drawFunc func())
	Refresh()
	FocusPrimitive(primitive tview.Primitive)

	Suspend(t tcell.Screen)
	StartSuspend()
	GetFocused() tview.Primitive
	Close()
}

// ConfigSaver stores an access point configuration which cannot be written to the platform.
type ConfigSaver func(cfg hotspot.AccessPointConfig) error

// viewInitializer represents an initializer for a view.
// All views must implement this interface.
type viewInitializer interface {
	Initialize() error
	SetRootView(v *Views)
}

// Views holds all the views as well as different managers for
// the view layouts and operations.
type Views struct {
	// pages holds and renders the hotspot view, along with
	// any modals that will be added.
	pages  *viewPages
	layout *tview.Flex

	help    *helpView
	status  *statusBarView
	modals  *modalViews
	hotspot *hotspotView

	op   *viewOperation
	kb   *keybindings.Keybindings
	cfg  *config.Config
	save ConfigSaver

	app  AppBinder
	auth *authorizer
}

// NewViews returns a new Views instance.
func NewViews() *Views {
	v := &Views{
		pages:   &viewPages{},
		help:    &helpView{},
		status:  &statusBarView{},
		modals:  &modalViews{},
		hotspot: &hotspotView{},
		kb:      &keybindings.Keybindings{},
	}

	v.auth = newAuthorizer(v)

	return v
}

// Initialize initializes all the views.
func (v *Views) Initialize(binder AppBinder, cfg *config.Config, save ConfigSaver) (*AppData, error) {
	v.app = binder
	v.cfg = cfg
	v.kb = v.cfg.Values.Kb
	v.save = save

	v.op = newViewOperation(v)

	v.pages = newViewPages()
	v.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.pages, 0, 10, true)

	initializers := []viewInitializer{
		v.status,
		v.help,
		v.modals,
		v.hotspot,
	}

	for _, i := range initializers {
		i.SetRootView(v)
		if err := i.Initialize(); err != nil {
			return nil, err
		}
	}

	v.auth.start()

	return &AppData{
		Layout:       v.layout,
		InitialFocus: v.arrangeViews(),
		MouseFunc: func(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
			return v.modals.modalMouseHandler(event, action)
		},
		BeforeDrawFunc: func(t tcell.Screen) bool {
			v.modals.resizeModal()
			v.app.Suspend(t)

			return false
		},
		InputCapture: func(event *tcell.EventKey) *tcell.EventKey {
			operation := v.kb.Key(event, v.pages.currentContext())

			if e, ok := v.kb.IsNavigation(operation, event); ok {
				focused := v.app.GetFocused()
				if focused != nil && focused.InputHandler() != nil {
					focused.InputHandler()(e, nil)
					return nil
				}
			}

			switch operation {
			case keybindings.KeyQuit:
				v.app.Close()
				return nil

			case keybindings.KeySuspend:
				v.app.StartSuspend()

			case keybindings.KeyCancel:
				v.op.cancelOperation(true)
			}

			return event
		},
	}, nil
}

// Close releases the resources of all the views.
func (v *Views) Close() {
	v.auth.stop()
	v.hotspot.release()
	v.status.Release()
}

// arrangeViews arranges all the views and their layouts.
func (v *Views) arrangeViews() tview.Primitive {
	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.hotspot.header, 1, 0, false).
		AddItem(horizontalLine(), 1, 0, false).
		AddItem(v.hotspot.form, 0, 10, true)
	flex.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	v.pages.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))
	v.pages.SetChangedFunc(func() {
		page, _ := v.pages.GetFrontPage()

		switch page {
		case hotspotPage.String():
			v.pages.currentPage(page)
			v.pages.currentContext(keybindings.ContextHotspot)

		default:
			v.pages.currentContext(keybindings.ContextApp)
		}

		v.help.showStatusHelp(page)
	})

	v.layout.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	v.pages.AddAndSwitchToPage(hotspotPage.String(), flex, true)
	v.status.InfoMessage("hotspotctl is ready.", false)

	return v.hotspot.form
}

// viewName represents the name of a particular view.
type viewName string

// String returns the string representation of the view's name.
func (v viewName) String() string {
	return string(v)
}

// horizontalLine returns a box with a thick horizontal line.
func horizontalLine() *tview.Box {
	return tview.NewBox().
		SetBackgroundColor(tcell.ColorDefault).
		SetDrawFunc(func(
			screen tcell.Screen,
			x, y, width, height int) (int, int, int, int) {
			centerY := y + height/2
			for cx := x; cx < x+width; cx++ {
				screen.SetContent(
					cx,
					centerY,
					tview.BoxDrawingsLightHorizontal,
					nil,
					tcell.StyleDefault.Foreground(theme.GetColor(theme.ThemeBorder)),
				)
			}

			return x + 1,
				centerY + 1,
				width - 2,
				height - (centerY + 1 - y)
		})
}
