//go:build !linux

package platform

// newPlatform degrades to the stub backend on platforms without a native
// implementation. The stub satisfies the full contract, so callers need
// no platform checks at call sites.
func newPlatform() *Platform {
	return NewStub()
}
