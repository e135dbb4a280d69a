//go:build linux

package hotkeys

import (
	"strings"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"

	"github.com/snapdesk/snapdesk/internal/fault"
	"github.com/snapdesk/snapdesk/internal/x11"
)

// grabErrorMessages translates X protocol error names into the fixed
// human-readable messages surfaced to callers.
var grabErrorMessages = map[string]string{
	"BadAccess": "key combination is already registered by another client",
	"BadValue":  "invalid key combination",
	"BadWindow": "root window is gone",
}

// x11Limitations are the platform-specific restrictions reported by
// SystemInfo.
var x11Limitations = []string{
	"key combinations grabbed by the window manager cannot be overridden",
	"NoRepeat is implicit: passive grabs deliver one event per keystroke",
}

// X11Binder implements the hotkey capability over X passive key grabs on
// the root window. Registration state lives in an instance-owned
// Registry, never in package globals.
type X11Binder struct {
	conn     *x11.Connection
	registry *Registry

	mu      sync.Mutex
	grabs   map[int]grab
	handler func(id int)
	hooked  bool
}

type grab struct {
	mods     uint16
	keycodes []xproto.Keycode
}

var ignoreModsOnce sync.Once

// NewX11Binder creates a binder over an existing X connection.
func NewX11Binder(conn *x11.Connection, registry *Registry) *X11Binder {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(conn.XUtil)
	})

	return &X11Binder{
		conn:     conn,
		registry: registry,
		grabs:    make(map[int]grab),
	}
}

// SetHandler installs the callback invoked from the X event loop when a
// registered combination fires. Must be called before the event loop runs.
func (b *X11Binder) SetHandler(handler func(id int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handler = handler
}

// Register validates the id and key ranges, checks the registry for a
// conflict, then grabs the combination on the root window. Validation
// failures never reach the X server.
func (b *X11Binder) Register(id int, mods Modifiers, key int) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if b.registry.Contains(id) {
		return fault.New(fault.Conflict, "hotkey id %d is already registered", id)
	}

	seq, err := Sequence(mods, key)
	if err != nil {
		return err
	}

	xmods, keycodes, err := keybind.ParseString(b.conn.XUtil, seq)
	if err != nil {
		return fault.Wrap(fault.InvalidParameter, err, "cannot resolve key sequence %q", seq)
	}

	var grabbed []xproto.Keycode
	for _, kc := range keycodes {
		if err := keybind.GrabChecked(b.conn.XUtil, b.conn.Root, xmods, kc); err != nil {
			for _, g := range grabbed {
				keybind.Ungrab(b.conn.XUtil, b.conn.Root, xmods, g)
			}
			return translateGrabError(err)
		}
		grabbed = append(grabbed, kc)
	}

	if err := b.registry.Add(Registration{ID: id, Mods: mods, Key: key}); err != nil {
		for _, g := range grabbed {
			keybind.Ungrab(b.conn.XUtil, b.conn.Root, xmods, g)
		}
		return err
	}

	b.mu.Lock()
	b.grabs[id] = grab{mods: xmods, keycodes: grabbed}
	b.ensureHookLocked()
	b.mu.Unlock()

	return nil
}

// Unregister releases the grab for a registered id. Fails with NotFound
// before any X call when the id is not registered.
func (b *X11Binder) Unregister(id int) error {
	if _, err := b.registry.Remove(id); err != nil {
		return err
	}

	b.mu.Lock()
	g, ok := b.grabs[id]
	delete(b.grabs, id)
	b.mu.Unlock()

	if ok {
		for _, kc := range g.keycodes {
			keybind.Ungrab(b.conn.XUtil, b.conn.Root, g.mods, kc)
		}
	}
	return nil
}

// IsRegistered reports whether the id is currently bound.
func (b *X11Binder) IsRegistered(id int) bool {
	return b.registry.Contains(id)
}

// RegisteredIDs returns a snapshot of bound ids.
func (b *X11Binder) RegisteredIDs() []int {
	return b.registry.IDs()
}

// UnregisterAll releases each bound id independently and returns the
// number of successful releases. A failure on one id does not abort the
// rest.
func (b *X11Binder) UnregisterAll() int {
	released := 0
	for _, id := range b.registry.IDs() {
		if err := b.Unregister(id); err == nil {
			released++
		}
	}
	return released
}

// SystemInfo reports a point-in-time view of the subsystem.
func (b *X11Binder) SystemInfo() SystemInfo {
	return SystemInfo{
		RegisteredCount: b.registry.Count(),
		Maximum:         IDMax - IDMin + 1,
		Limitations:     x11Limitations,
	}
}

// ensureHookLocked installs the root key-press dispatcher once. Callers
// hold b.mu.
func (b *X11Binder) ensureHookLocked() {
	if b.hooked {
		return
	}
	b.hooked = true

	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		b.dispatch(ev)
	}).Connect(b.conn.XUtil, b.conn.Root)
}

func (b *X11Binder) dispatch(ev xevent.KeyPressEvent) {
	b.mu.Lock()
	handler := b.handler
	var matched []int
	for id, g := range b.grabs {
		if !keycodeMatches(g, ev) {
			continue
		}
		matched = append(matched, id)
	}
	b.mu.Unlock()

	if handler == nil {
		return
	}
	for _, id := range matched {
		handler(id)
	}
}

func keycodeMatches(g grab, ev xevent.KeyPressEvent) bool {
	const relevantMods = xproto.ModMaskShift | xproto.ModMaskControl |
		xproto.ModMask1 | xproto.ModMask4
	if uint16(ev.State)&relevantMods != g.mods {
		return false
	}
	for _, kc := range g.keycodes {
		if ev.Detail == kc {
			return true
		}
	}
	return false
}

// translateGrabError maps X protocol errors to the fixed message table.
func translateGrabError(err error) error {
	msg := err.Error()
	for name, translated := range grabErrorMessages {
		if strings.Contains(msg, name) {
			return fault.Wrap(fault.NativeCallFailed, err, "%s", translated)
		}
	}
	return fault.Wrap(fault.NativeCallFailed, err, "key grab failed")
}

// configureIgnoreMods makes grabs fire regardless of CapsLock, NumLock
// and ScrollLock state.
func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
