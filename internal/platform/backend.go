// Package platform selects the native backend for the running system.
package platform

import (
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/native/sim"
)

// OS identifies the operating system family. Some window state rules differ
// per platform.
type OS int

const (
	Other OS = iota
	Linux
	Windows
	Darwin
)

func (o OS) String() string {
	switch o {
	case Linux:
		return "linux"
	case Windows:
		return "windows"
	case Darwin:
		return "darwin"
	default:
		return "other"
	}
}

// Current returns the OS the binary runs on.
func Current() OS {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a GOOS value to an OS.
func FromGOOS(goos string) OS {
	switch goos {
	case "linux":
		return Linux
	case "windows":
		return Windows
	case "darwin":
		return Darwin
	default:
		return Other
	}
}

// Backend names accepted by Open.
const (
	BackendSim = "sim"
	BackendX11 = "x11"
)

// Closer is implemented by backends holding a connection.
type Closer interface {
	Close()
}

// Open returns the backend registered under name. An empty name selects the
// native backend of the running system.
func Open(name string, logger *slog.Logger) (native.Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case BackendSim:
		return sim.New(), nil
	case "", BackendX11:
		return openNative(logger)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %q or %q)", name, BackendSim, BackendX11)
	}
}

// Close releases b if it holds a connection.
func Close(b native.Backend) {
	if c, ok := b.(Closer); ok {
		c.Close()
	}
}
