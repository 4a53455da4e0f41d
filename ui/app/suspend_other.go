//go:build windows

package app

import "github.com/gdamore/tcell/v2"

func suspendApp(tcell.Screen) {}
