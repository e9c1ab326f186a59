//go:build !linux

package platform

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/1broseidon/winsync/internal/native"
)

func openNative(*slog.Logger) (native.Backend, error) {
	return nil, fmt.Errorf("no native backend for %s, use --backend %s", runtime.GOOS, BackendSim)
}
