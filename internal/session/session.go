// Package session is the session-cookie-capture collaborator (§1, §6): the
// core only needs a map of cookies to attach to every outgoing request. How
// those cookies are obtained — a static `-s` flag value or a browser driver
// — is this package's concern alone.
package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// CookieProvider supplies the session cookies to attach to every request
// for the run's lifetime (§5: "immutable after startup").
type CookieProvider interface {
	Cookies() (map[string]string, error)
}

// NullProvider returns no cookies; used when `-s/--session` is not passed.
type NullProvider struct{}

// Cookies implements CookieProvider.
func (NullProvider) Cookies() (map[string]string, error) { return map[string]string{}, nil }

// StaticProvider returns a fixed cookie set, used for tests and for CLI
// invocations that already know the session cookie value.
type StaticProvider struct {
	cookies map[string]string
}

// NewStaticProvider wraps a known cookie map.
func NewStaticProvider(cookies map[string]string) StaticProvider {
	return StaticProvider{cookies: cookies}
}

// Cookies implements CookieProvider.
func (p StaticProvider) Cookies() (map[string]string, error) {
	return p.cookies, nil
}

// DriverProvider acquires cookies by invoking an external browser driver
// binary, mirroring the original project's `retrieve_cookies` deferred
// import of a Selenium driver (§9 DESIGN NOTES supplement). No
// browser-automation library exists anywhere in the corpus; this is a
// documented extension point, not a functional browser integration.
type DriverProvider struct {
	// DriverPath is the path to an external driver binary (CLI's
	// --driverFile), resolved to absolute if given relative.
	DriverPath string
	// Exec is the hook actually invoking the driver. Tests substitute a
	// fake; production callers wire a real chromedriver-backed binary here.
	Exec func(driverPath string) (map[string]string, error)
}

// NewDriverProvider resolves driverFile to an absolute path the same way
// the original project's misc.py did before invoking the driver.
func NewDriverProvider(driverFile string, exec func(string) (map[string]string, error)) (*DriverProvider, error) {
	abs, err := filepath.Abs(driverFile)
	if err != nil {
		return nil, fmt.Errorf("session: resolving driver path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("session: driver file unreadable: %w", err)
	}
	return &DriverProvider{DriverPath: abs, Exec: exec}, nil
}

// Cookies invokes the configured driver hook.
func (p *DriverProvider) Cookies() (map[string]string, error) {
	if p.Exec == nil {
		return nil, fmt.Errorf("session: no driver implementation wired for %s", p.DriverPath)
	}
	return p.Exec(p.DriverPath)
}
