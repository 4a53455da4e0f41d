package views

import (
	"strings"

	"github.com/darkhz/tview"

	"github.com/darkhz/hotspotctl/ui/keybindings"
	"github.com/darkhz/hotspotctl/ui/theme"
)

// helpView holds the condensed help text, which is displayed below the status bar.
type helpView struct {
	page string
	area *tview.Flex

	*Views
}

// Initialize initializes the help view.
func (h *helpView) Initialize() error {
	h.area = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(horizontalLine(), 1, 0, false).
		AddItem(h.status.Help, 1, 0, false)

	h.layout.AddItem(h.area, 2, 0, false)

	return nil
}

// SetRootView sets the root view for the help view.
func (h *helpView) SetRootView(v *Views) {
	h.Views = v
}

// showStatusHelp shows a condensed help text for the currently focused page below the statusbar.
func (h *helpView) showStatusHelp(page string) {
	if h.page == page {
		return
	}

	h.page = page

	if page != hotspotPage.String() {
		h.status.Help.Clear()
		return
	}

	bindings := h.kb.Bindings(keybindings.ContextHotspot)
	for _, key := range []keybindings.Key{keybindings.KeySwitch, keybindings.KeyQuit} {
		data := h.kb.Data(key)
		bindings = append(bindings, [2]string{data.Title, h.kb.Name(data.Kb)})
	}

	items := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		title := theme.ColorWrap(theme.ThemeText, binding[0], "::bu")
		items = append(items, title+theme.ColorWrap(theme.ThemeText, ": "+binding[1]))
	}

	h.status.Help.SetText(strings.Join(items, ", "))
}
