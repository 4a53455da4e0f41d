package platforminfo

import (
	"runtime"
	"strconv"
	"strings"
)

// PlatformInfo describes platform-specific information.
type PlatformInfo struct {
	OS         string `json:"os_info,omitempty"`
	Stack      string `json:"stack,omitempty"`
	Version    string `json:"version,omitempty"`
	Privileged bool   `json:"privileged,omitempty"`
}

// NewPlatformInfo returns a new PlatformInfo.
func NewPlatformInfo(stack, version string, privileged bool) PlatformInfo {
	return PlatformInfo{
		OS:         runtime.GOOS + " (" + runtime.GOARCH + ")",
		Stack:      stack,
		Version:    version,
		Privileged: privileged,
	}
}

// AtLeast returns whether the platform version is equal to or newer than
// the provided dotted version. An unparseable platform version is treated as
// older than any version.
func (p PlatformInfo) AtLeast(version string) bool {
	return CompareVersions(p.Version, version) >= 0
}

// CompareVersions compares two dotted numeric versions, and returns -1, 0 or 1.
// Missing components are treated as zero, and any non-numeric suffix of a
// component (for example "1-dev") is ignored.
func CompareVersions(a, b string) int {
	av, aok := parseVersion(a)
	bv, bok := parseVersion(b)

	switch {
	case !aok && !bok:
		return 0

	case !aok:
		return -1

	case !bok:
		return 1
	}

	for i := range max(len(av), len(bv)) {
		var x, y int

		if i < len(av) {
			x = av[i]
		}
		if i < len(bv) {
			y = bv[i]
		}

		switch {
		case x < y:
			return -1

		case x > y:
			return 1
		}
	}

	return 0
}

func parseVersion(version string) ([]int, bool) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, false
	}

	parts := strings.Split(version, ".")
	values := make([]int, 0, len(parts))

	for _, part := range parts {
		end := strings.IndexFunc(part, func(r rune) bool { return r < '0' || r > '9' })
		if end == 0 {
			return values, len(values) > 0
		}
		if end > 0 {
			part = part[:end]
		}

		v, err := strconv.Atoi(part)
		if err != nil {
			return values, len(values) > 0
		}

		values = append(values, v)
		if end > 0 {
			break
		}
	}

	return values, true
}
