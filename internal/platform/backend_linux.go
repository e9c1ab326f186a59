//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/x11"
)

func openNative(logger *slog.Logger) (native.Backend, error) {
	b, err := x11.Open(x11.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return b, nil
}
