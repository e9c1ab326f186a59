package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	backend
//	log_level
//	log_file
//	frame_interval_ms
//	window
//	window.<field>
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path file source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	if parts[0] == "window" {
		if len(parts) == 1 {
			return cfg.Window, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return lookupWindow(&cfg.Window, path, parts[1])
	}
	if len(parts) != 1 {
		return nil, fmt.Errorf("unknown path: %s", path)
	}
	switch parts[0] {
	case "backend":
		return cfg.Backend, nil
	case "log_level":
		return cfg.LogLevel, nil
	case "log_file":
		return cfg.LogFile, nil
	case "frame_interval_ms":
		return cfg.FrameIntervalMs, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}

func lookupWindow(w *WindowConfig, path, field string) (any, error) {
	switch field {
	case "title":
		return w.Title, nil
	case "width":
		return w.Width, nil
	case "height":
		return w.Height, nil
	case "min_width":
		return w.MinWidth, nil
	case "min_height":
		return w.MinHeight, nil
	case "max_width":
		return w.MaxWidth, nil
	case "max_height":
		return w.MaxHeight, nil
	case "position_x":
		return w.PositionX, nil
	case "position_y":
		return w.PositionY, nil
	case "display":
		return w.Display, nil
	case "mode":
		return w.Mode, nil
	case "state":
		return w.State, nil
	case "fullscreen_width":
		return w.FullscreenWidth, nil
	case "fullscreen_height":
		return w.FullscreenHeight, nil
	case "resizable":
		return w.Resizable, nil
	case "always_on_top":
		return w.AlwaysOnTop, nil
	case "opacity":
		return w.Opacity, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
