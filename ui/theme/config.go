package theme

import (
	"fmt"
)

// Context describes the type of context to apply the color into.
type Context string

// The different context types for themes.
const (
	ThemeText             Context = "Text"
	ThemeBorder           Context = "Border"
	ThemeBackground       Context = "Background"
	ThemeStatusInfo       Context = "StatusInfo"
	ThemeStatusError      Context = "StatusError"
	ThemeFormLabel        Context = "FormLabel"
	ThemeFormField        Context = "FormField"
	ThemeButton           Context = "Button"
	ThemeStateEnabled     Context = "StateEnabled"
	ThemeStateDisabled    Context = "StateDisabled"
	ThemeStateTransition  Context = "StateTransition"
	ThemeStateFailed      Context = "StateFailed"
	ThemePermissionDenied Context = "PermissionDenied"
)

// ThemeConfig stores a list of color for the modifier elements.
var ThemeConfig = map[Context]string{
	ThemeText:        "white",
	ThemeBorder:      "white",
	ThemeBackground:  "default",
	ThemeStatusInfo:  "white",
	ThemeStatusError: "red",

	ThemeFormLabel: "white",
	ThemeFormField: "grey",
	ThemeButton:    "white",

	ThemeStateEnabled:    "green",
	ThemeStateDisabled:   "grey",
	ThemeStateTransition: "yellow",
	ThemeStateFailed:     "red",

	ThemePermissionDenied: "orange",
}

// ParseThemeConfig parses the theme configuration.
func ParseThemeConfig(themeConfig map[string]string) error {
	for context, color := range themeConfig {
		if _, ok := ThemeConfig[Context(context)]; !ok {
			return fmt.Errorf("theme configuration has an unknown element %s", context)
		}

		if !isValidElementColor(color) {
			return fmt.Errorf("theme configuration is incorrect for %s (%s)", context, color)
		}

		switch color {
		case "black":
			color = "#000000"

		case "transparent":
			color = "default"
		}

		ThemeConfig[Context(context)] = color
	}

	return nil
}
