package hotkeys

import (
	"fmt"
	"strings"

	"github.com/snapdesk/snapdesk/internal/fault"
)

// Virtual key codes follow the conventional 0x01-0xFF space so persisted
// key combinations stay portable across backends.
const (
	VKBack   = 0x08
	VKTab    = 0x09
	VKReturn = 0x0D
	VKEscape = 0x1B
	VKSpace  = 0x20
	VKPrior  = 0x21
	VKNext   = 0x22
	VKEnd    = 0x23
	VKHome   = 0x24
	VKLeft   = 0x25
	VKUp     = 0x26
	VKRight  = 0x27
	VKDown   = 0x28
	VKInsert = 0x2D
	VKDelete = 0x2E
	VKF1     = 0x70
)

var namedKeysyms = map[int]string{
	VKBack:   "BackSpace",
	VKTab:    "Tab",
	VKReturn: "Return",
	VKEscape: "Escape",
	VKSpace:  "space",
	VKPrior:  "Prior",
	VKNext:   "Next",
	VKEnd:    "End",
	VKHome:   "Home",
	VKLeft:   "Left",
	VKUp:     "Up",
	VKRight:  "Right",
	VKDown:   "Down",
	VKInsert: "Insert",
	VKDelete: "Delete",
}

// KeysymFor maps a virtual key code to an X keysym name.
func KeysymFor(key int) (string, error) {
	switch {
	case key >= '0' && key <= '9':
		return string(rune(key)), nil
	case key >= 'A' && key <= 'Z':
		return strings.ToLower(string(rune(key))), nil
	case key >= VKF1 && key <= VKF1+23:
		return fmt.Sprintf("F%d", key-VKF1+1), nil
	}
	if name, ok := namedKeysyms[key]; ok {
		return name, nil
	}
	return "", fault.New(fault.InvalidParameter, "virtual key 0x%02X has no keysym mapping", key)
}

// Sequence renders a modifier set plus virtual key as an X key sequence
// ("Control-Mod1-l"). NoRepeat has no X equivalent and is dropped: a
// passive grab already delivers one press per physical keystroke.
func Sequence(mods Modifiers, key int) (string, error) {
	keysym, err := KeysymFor(key)
	if err != nil {
		return "", err
	}

	var parts []string
	if mods.Has(ModControl) {
		parts = append(parts, "Control")
	}
	if mods.Has(ModAlt) {
		parts = append(parts, "Mod1")
	}
	if mods.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if mods.Has(ModWin) {
		parts = append(parts, "Mod4")
	}
	parts = append(parts, keysym)
	return strings.Join(parts, "-"), nil
}

// FormatMods renders modifier flags for logs and listings.
func FormatMods(mods Modifiers) string {
	var parts []string
	if mods.Has(ModControl) {
		parts = append(parts, "Ctrl")
	}
	if mods.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if mods.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if mods.Has(ModWin) {
		parts = append(parts, "Win")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "+")
}
