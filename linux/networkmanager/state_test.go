package networkmanager

import (
	"testing"

	"github.com/darkhz/hotspotctl/api/hotspot"
)

func TestRawState(t *testing.T) {
	tests := []struct {
		state  uint32
		apMode bool
		want   int
	}{
		{0, true, hotspot.RawUnknown},
		{10, true, hotspot.RawUnknown},
		{20, true, rawDisabled},
		{30, true, rawDisabled},
		{40, true, rawEnabling},
		{70, true, rawEnabling},
		{90, true, rawEnabling},
		{100, true, rawEnabled},
		{110, true, rawDisabling},
		{120, true, rawFailed},
		{130, true, hotspot.RawUnknown},
		{50, false, rawDisabled},
		{100, false, rawDisabled},
		{120, false, rawDisabled},
	}

	for _, tt := range tests {
		if got := rawState(tt.state, tt.apMode); got != tt.want {
			t.Errorf("rawState(%d, %v) = %d, want %d", tt.state, tt.apMode, got, tt.want)
		}
	}
}

func TestRawStateNormalizes(t *testing.T) {
	if got := hotspot.Normalize(rawState(100, true)); got != hotspot.StateEnabled {
		t.Fatalf("got %s, want enabled", got)
	}

	if got := hotspot.Normalize(rawState(0, true)); got != hotspot.StateUnknown {
		t.Fatalf("got %s, want unknown", got)
	}
}
