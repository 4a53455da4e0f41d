package networkmanager

import "github.com/darkhz/hotspotctl/api/hotspot"

// The NetworkManager device states.
const (
	deviceStateUnknown      uint32 = 0
	deviceStateUnmanaged    uint32 = 10
	deviceStateUnavailable  uint32 = 20
	deviceStateDisconnected uint32 = 30
	deviceStatePrepare      uint32 = 40
	deviceStateActivated    uint32 = 100
	deviceStateDeactivating uint32 = 110
	deviceStateFailed       uint32 = 120
)

// The raw access point states.
const (
	rawDisabling = iota
	rawDisabled
	rawEnabling
	rawEnabled
	rawFailed
)

// rawState translates a wireless device state into a raw access point state.
// The device states between preparation and activation, deactivation and
// failure only describe the access point if the device was (or is being)
// configured in access point mode; otherwise the access point is disabled.
func rawState(state uint32, apMode bool) int {
	switch {
	case state == deviceStateUnknown || state == deviceStateUnmanaged:
		return hotspot.RawUnknown

	case state == deviceStateUnavailable || state == deviceStateDisconnected:
		return rawDisabled

	case !apMode:
		return rawDisabled

	case state >= deviceStatePrepare && state < deviceStateActivated:
		return rawEnabling

	case state == deviceStateActivated:
		return rawEnabled

	case state == deviceStateDeactivating:
		return rawDisabling

	case state == deviceStateFailed:
		return rawFailed
	}

	return hotspot.RawUnknown
}
