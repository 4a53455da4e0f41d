package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/darkhz/hotspotctl/api/hotspot"
)

// printWarn prints a warning to the screen.
func printWarn(message string) {
	message = "[-] " + message

	color.New(color.FgYellow, color.Bold).Println(message)
}

// printError prints an error to the screen.
func printError(err error) {
	message := "[!] " + err.Error()

	color.New(color.FgRed, color.Bold).Println(message)
}

// printInfo prints an informational message to the screen.
func printInfo(message string) {
	color.New(color.FgGreen).Println("[+] " + message)
}

// stateName returns the title-cased name of the state.
func stateName(state hotspot.State) string {
	return cases.Title(language.English).String(state.String())
}

// stateColor returns the color used to display the state.
func stateColor(state hotspot.State) *color.Color {
	switch state {
	case hotspot.StateEnabled:
		return color.New(color.FgGreen, color.Bold)

	case hotspot.StateEnabling, hotspot.StateDisabling:
		return color.New(color.FgYellow, color.Bold)

	case hotspot.StateDisabled:
		return color.New(color.Bold)
	}

	return color.New(color.FgRed, color.Bold)
}

// printFields prints a list of aligned name-value pairs.
func printFields(w io.Writer, fields [][2]string) {
	var width int
	for _, field := range fields {
		width = max(width, len(field[0]))
	}

	for _, field := range fields {
		name := color.New(color.Bold).Sprint(field[0] + ":")
		fmt.Fprintf(w, "%s%s %s\n", name, strings.Repeat(" ", width-len(field[0])), field[1])
	}
}

// maskPassphrase hides all characters of the passphrase.
func maskPassphrase(passphrase string) string {
	if passphrase == "" {
		return "(none)"
	}

	return strings.Repeat("*", len([]rune(passphrase)))
}
