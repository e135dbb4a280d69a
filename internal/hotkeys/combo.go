package hotkeys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/snapdesk/snapdesk/internal/fault"
)

var namedKeys = map[string]int{
	"backspace": VKBack,
	"tab":       VKTab,
	"enter":     VKReturn,
	"return":    VKReturn,
	"escape":    VKEscape,
	"esc":       VKEscape,
	"space":     VKSpace,
	"pageup":    VKPrior,
	"pagedown":  VKNext,
	"end":       VKEnd,
	"home":      VKHome,
	"left":      VKLeft,
	"up":        VKUp,
	"right":     VKRight,
	"down":      VKDown,
	"insert":    VKInsert,
	"delete":    VKDelete,
}

// ParseCombo parses a textual key combination like "ctrl+alt+l" or
// "win+shift+F4" into modifier flags and a virtual key code.
func ParseCombo(combo string) (Modifiers, int, error) {
	parts := strings.Split(combo, "+")
	if len(parts) == 0 {
		return 0, 0, fault.New(fault.InvalidParameter, "empty key combination")
	}

	var mods Modifiers
	for _, part := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "ctrl", "control":
			mods |= ModControl
		case "alt":
			mods |= ModAlt
		case "shift":
			mods |= ModShift
		case "win", "super", "meta":
			mods |= ModWin
		case "norepeat":
			mods |= ModNoRepeat
		default:
			return 0, 0, fault.New(fault.InvalidParameter, "unknown modifier %q", part)
		}
	}

	key, err := parseKey(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return 0, 0, err
	}
	return mods, key, nil
}

func parseKey(name string) (int, error) {
	if name == "" {
		return 0, fault.New(fault.InvalidParameter, "missing key in combination")
	}

	lower := strings.ToLower(name)
	if key, ok := namedKeys[lower]; ok {
		return key, nil
	}

	if len(name) == 1 {
		c := name[0]
		switch {
		case c >= 'a' && c <= 'z':
			return int(c - 'a' + 'A'), nil
		case c >= 'A' && c <= 'Z':
			return int(c), nil
		case c >= '0' && c <= '9':
			return int(c), nil
		}
	}

	if strings.HasPrefix(lower, "f") {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 24 {
			return VKF1 + n - 1, nil
		}
	}

	return 0, fault.New(fault.InvalidParameter, "unknown key %q", name)
}

// FormatCombo renders a combination in the textual form ParseCombo
// accepts, for listings and logs.
func FormatCombo(mods Modifiers, key int) string {
	name, err := KeysymFor(key)
	if err != nil {
		name = fmt.Sprintf("0x%02X", key)
	}
	prefix := FormatMods(mods)
	if prefix == "none" {
		return name
	}
	return prefix + "+" + name
}
