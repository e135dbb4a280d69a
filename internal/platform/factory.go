package platform

// Platform bundles the backend instances selected once at process start.
// Consumers receive these by injection and never type-check which
// implementation they hold.
type Platform struct {
	Windows WindowAPI
	Hotkeys HotkeyAPI
	Caps    Capabilities

	run   func()
	close func()
}

// New selects the concrete backend for the running OS, degrading to the
// stub backend when the window system is unavailable. The factory holds
// no state; call it once and inject the result.
func New() *Platform {
	return newPlatform()
}

// NewStub returns a stub-backed platform regardless of OS. Used on
// unsupported platforms and in tests.
func NewStub() *Platform {
	return &Platform{
		Windows: StubWindowAPI{},
		Hotkeys: StubHotkeyAPI{},
		Caps:    Capabilities{OS: "stub"},
	}
}

// Run blocks serving platform events; hotkey callbacks fire from this
// loop. Backends without an event loop return immediately.
func (p *Platform) Run() {
	if p.run != nil {
		p.run()
	}
}

// Close releases any backend resources (the X connection on Linux).
func (p *Platform) Close() {
	if p.close != nil {
		p.close()
	}
}
