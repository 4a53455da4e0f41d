package keybindings

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestValidateRebindsKey(t *testing.T) {
	kb := NewKeybindings()

	if err := kb.Validate(map[string]string{"HotspotToggle": "Ctrl+y"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := kb.Data(KeyHotspotToggle).Kb
	if got.Key != tcell.KeyCtrlY || got.Mod&tcell.ModCtrl == 0 {
		t.Fatalf("unexpected binding: %+v", got)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		kbMap map[string]string
	}{
		{"unknown key type", map[string]string{"AdapterTogglePower": "o"}},
		{"conflicting keys", map[string]string{"HotspotToggle": "Ctrl+s"}},
		{"more than one key", map[string]string{"HotspotGrant": "a+b"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := NewKeybindings().Validate(test.kbMap); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestBindingsByContext(t *testing.T) {
	bindings := NewKeybindings().Bindings(ContextHotspot)
	if len(bindings) != 6 {
		t.Fatalf("expected 6 hotspot bindings, got %d", len(bindings))
	}

	for _, binding := range bindings {
		if binding[0] == "" || binding[1] == "" {
			t.Fatalf("empty binding: %v", binding)
		}
	}
}
