package views

import (
	"context"
	"errors"
	"strings"

	"github.com/darkhz/tview"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/darkhz/hotspotctl/api/errorkinds"
	"github.com/darkhz/hotspotctl/api/hotspot"
	"github.com/darkhz/hotspotctl/engine"
	"github.com/darkhz/hotspotctl/ui/keybindings"
	"github.com/darkhz/hotspotctl/ui/theme"
)

const (
	fieldName       = "Network name"
	fieldPassphrase = "Passphrase"
	fieldOpen       = "Open network"
	fieldBand       = "Band"

	passphraseMask = '*'
)

// bandOptions holds the selectable bands, and their configuration values.
var bandOptions = []struct {
	title, value string
}{
	{"Automatic", ""},
	{"5 GHz", "a"},
	{"2.4 GHz", "bg"},
}

// hotspotView holds the access point form, and the header which displays
// the canonical access point state.
type hotspotView struct {
	header *tview.TextView
	form   *tview.Form

	name       *tview.InputField
	passphrase *tview.InputField
	open       *tview.Checkbox
	band       *tview.DropDown
	toggle     *tview.Button

	listener engine.ListenerID
	errors   *hotspot.Subscriber[errorkinds.GenericError]
	revealed bool

	*Views
}

// Initialize initializes the hotspot view.
func (h *hotspotView) Initialize() error {
	h.header = tview.NewTextView()
	h.header.SetDynamicColors(true)
	h.header.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))

	h.form = tview.NewForm()
	h.form.SetBorder(false)
	h.form.SetItemPadding(1)
	h.form.SetBackgroundColor(theme.GetColor(theme.ThemeBackground))
	h.form.SetLabelColor(theme.GetColor(theme.ThemeFormLabel))
	h.form.SetFieldTextColor(theme.GetColor(theme.ThemeText))
	h.form.SetFieldBackgroundColor(theme.GetColor(theme.ThemeFormField))
	h.form.SetButtonTextColor(theme.BackgroundColor(theme.ThemeButton))
	h.form.SetButtonBackgroundColor(theme.GetColor(theme.ThemeButton))

	h.form.AddInputField(fieldName, "", hotspot.MaxNameLength+2, nil, nil)
	h.form.AddPasswordField(fieldPassphrase, "", hotspot.MaxPassphraseLength+2, passphraseMask, nil)
	h.form.AddCheckbox(fieldOpen, false, func(checked bool) {
		h.passphrase.SetDisabled(checked)
	})
	h.form.AddDropDown(fieldBand, bandTitles(), 0, nil)
	h.form.AddButton("Enable", h.toggleState)
	h.form.AddButton("Save", h.saveConfiguration)

	h.name = h.form.GetFormItemByLabel(fieldName).(*tview.InputField)
	h.passphrase = h.form.GetFormItemByLabel(fieldPassphrase).(*tview.InputField)
	h.open = h.form.GetFormItemByLabel(fieldOpen).(*tview.Checkbox)
	h.band = h.form.GetFormItemByLabel(fieldBand).(*tview.DropDown)
	h.toggle = h.form.GetButton(0)

	h.form.SetInputCapture(h.inputCapture)

	h.loadConfiguration()
	h.updateState(h.engine().CurrentState())

	h.listener = h.engine().RegisterListener(hotspot.ListenerFunc(func(event hotspot.StateTransitionEvent) {
		h.app.QueueDraw(func() {
			h.updateState(event.To)
		})
	}))

	if sub, ok := hotspot.ErrorEvents().Subscribe(h.engine().Events()); ok {
		h.errors = sub
		go h.watchErrors()
	}

	return nil
}

// SetRootView sets the root view for the hotspot view.
func (h *hotspotView) SetRootView(v *Views) {
	h.Views = v
}

// release unregisters the state listener and the error subscription.
func (h *hotspotView) release() {
	if h.listener != "" {
		h.engine().UnregisterListener(h.listener)
	}

	if h.errors != nil {
		h.errors.Unsubscribe()
	}
}

// engine returns the engine of the current session.
func (h *hotspotView) engine() *engine.Engine {
	return h.app.Session().Engine()
}

// inputCapture handles the hotspot keybindings.
func (h *hotspotView) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch h.kb.Key(event, keybindings.ContextHotspot) {
	case keybindings.KeyHotspotToggle:
		h.toggleState()

	case keybindings.KeyHotspotSave:
		h.saveConfiguration()

	case keybindings.KeyHotspotGrant:
		h.auth.requestGrant()

	case keybindings.KeyHotspotRefresh:
		h.op.startOperation("Refreshed access point state", h.engine().Refresh)

	case keybindings.KeyHotspotReveal:
		h.revealPassphrase()

	case keybindings.KeyHotspotDetails:
		go h.showDetails()

	default:
		return event
	}

	return nil
}

// updateState updates the header and the toggle button according to the provided state.
func (h *hotspotView) updateState(state hotspot.State) {
	label := "Enable"

	switch state {
	case hotspot.StateEnabled:
		label = "Disable"

	case hotspot.StateEnabling:
		label = "Enabling..."

	case hotspot.StateDisabling:
		label = "Disabling..."
	}

	h.toggle.SetLabel(label)

	var info strings.Builder

	info.WriteString(theme.ColorWrap(theme.ThemeText, "Hotspot: "))
	info.WriteString(theme.ColorWrap(theme.StateContext(state), stateTitle(state)))
	info.WriteString(theme.ColorWrap(theme.ThemeText, " | Backend: ", "::-"))
	info.WriteString(theme.ColorWrap(theme.ThemeText, h.app.Session().BackendName(), "::-"))

	if iface := h.cfg.Values.Interface; iface != "" {
		info.WriteString(theme.ColorWrap(theme.ThemeText, " | Interface: "+iface, "::-"))
	}

	h.header.SetText(info.String())
}

// toggleState enables or disables the access point according to the canonical state.
func (h *hotspotView) toggleState() {
	e := h.engine()

	switch e.CurrentState() {
	case hotspot.StateEnabled:
		h.op.startOperation("Disabling access point", func(ctx context.Context) error {
			return h.ignorePermission(e.Disable(ctx))
		})

	case hotspot.StateFailed:
		h.status.InfoMessage(
			"The access point has failed, press "+h.kb.Name(h.kb.Data(keybindings.KeyHotspotRefresh).Kb)+" to read its state again",
			false,
		)

	case hotspot.StateDisabled:
		cfg, err := h.formConfiguration()
		if err != nil {
			h.status.ErrorMessage(err)
			return
		}

		h.op.startOperation("Enabling access point", func(ctx context.Context) error {
			if err := h.applyConfiguration(ctx, cfg); err != nil {
				return err
			}

			return h.ignorePermission(e.Enable(ctx))
		})

	default:
		h.status.InfoMessage("The access point is changing state", false)
	}
}

// showDetails displays the access point state and the capabilities of the backend.
func (h *hotspotView) showDetails() {
	e := h.engine()
	caps := e.Capabilities()
	platform := h.app.Session().Platform()

	toggle := "creator only"
	if caps.CanToggleByAnyCaller() {
		toggle = "any caller"
	}

	var details strings.Builder
	for _, field := range [][2]string{
		{"State", stateTitle(e.CurrentState())},
		{"Backend", h.app.Session().BackendName()},
		{"Platform", platform.Stack + " " + platform.Version},
		{"Confirmation", caps.Confirmation.String()},
		{"Permission", caps.Precondition.String()},
		{"Toggle", toggle},
	} {
		details.WriteString("[::b]" + field[0] + ":[-:-:-] " + field[1] + "\n")
	}

	h.modals.newDisplayModal("details", "Access Point Details", strings.TrimSuffix(details.String(), "\n")).
		display(context.Background())
}

// saveConfiguration stores the access point configuration from the form.
// Backends which do not support configuration access store it into
// the configuration file instead.
func (h *hotspotView) saveConfiguration() {
	cfg, err := h.formConfiguration()
	if err != nil {
		h.status.ErrorMessage(err)
		return
	}

	h.op.startOperation("Saved access point configuration", func(ctx context.Context) error {
		if err := h.applyConfiguration(ctx, cfg); err != nil {
			return err
		}

		if h.engine().Capabilities().CanSetConfiguration() || h.save == nil {
			return nil
		}

		return h.save(cfg)
	})
}

// applyConfiguration sets the configuration used by the next enable.
func (h *hotspotView) applyConfiguration(ctx context.Context, cfg hotspot.AccessPointConfig) error {
	if h.engine().Capabilities().CanSetConfiguration() {
		if err := h.engine().SetConfiguration(ctx, cfg); err != nil {
			return err
		}
	}

	return h.app.Session().UseConfiguration(cfg)
}

// loadConfiguration fills the form with the stored access point configuration.
func (h *hotspotView) loadConfiguration() {
	var cfg hotspot.AccessPointConfig

	if ap := h.cfg.Values.AccessPoint(); ap != nil {
		cfg = *ap
	} else if h.engine().Capabilities().CanSetConfiguration() {
		stored, err := h.engine().Configuration(context.Background())
		if err != nil {
			h.status.ErrorMessage(err)
			return
		}

		cfg = stored
	}

	h.name.SetText(cfg.Name)
	h.passphrase.SetText(cfg.Passphrase)
	h.open.SetChecked(cfg.IsOpen())
	h.passphrase.SetDisabled(cfg.IsOpen())

	for i, option := range bandOptions {
		if option.value == cfg.Band {
			h.band.SetCurrentOption(i)
			break
		}
	}
}

// formConfiguration returns the validated access point configuration from the form.
func (h *hotspotView) formConfiguration() (hotspot.AccessPointConfig, error) {
	cfg := hotspot.AccessPointConfig{
		Name:       strings.TrimSpace(h.name.GetText()),
		Passphrase: h.passphrase.GetText(),
		Security:   hotspot.SecurityWPAPSK,
	}

	if h.open.IsChecked() {
		cfg.Security = hotspot.SecurityOpen
		cfg.Passphrase = ""
	}

	if index, _ := h.band.GetCurrentOption(); index >= 0 && index < len(bandOptions) {
		cfg.Band = bandOptions[index].value
	}

	return cfg, cfg.Validate()
}

// revealPassphrase toggles the masking of the passphrase field.
func (h *hotspotView) revealPassphrase() {
	h.revealed = !h.revealed

	var mask rune
	if !h.revealed {
		mask = passphraseMask
	}

	h.passphrase.SetMaskCharacter(mask)
}

// watchErrors displays the errors published by the engine on the status bar.
func (h *hotspotView) watchErrors() {
	for {
		select {
		case <-h.errors.Done:
			return

		case ev, ok := <-h.errors.C:
			if !ok {
				return
			}

			h.status.ErrorMessage(ev)
		}
	}
}

// ignorePermission discards permission errors, since they are handled
// by the authorizer once the permission event is published.
func (h *hotspotView) ignorePermission(err error) error {
	if errors.Is(err, errorkinds.ErrPermissionDenied) {
		return nil
	}

	return err
}

// bandTitles returns the padded titles of the selectable bands.
func bandTitles() []string {
	var width int
	for _, option := range bandOptions {
		width = max(width, runewidth.StringWidth(option.title))
	}

	titles := make([]string, 0, len(bandOptions))
	for _, option := range bandOptions {
		titles = append(titles, runewidth.FillRight(option.title, width))
	}

	return titles
}

// stateTitle returns the displayed name of the provided state.
func stateTitle(state hotspot.State) string {
	return cases.Title(language.English).String(state.String())
}
