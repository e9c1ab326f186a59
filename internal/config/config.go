package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winsync/internal/native"
	"github.com/1broseidon/winsync/internal/window"
)

// WindowConfig seeds the managed window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	MinWidth  int `yaml:"min_width,omitempty"`
	MinHeight int `yaml:"min_height,omitempty"`
	MaxWidth  int `yaml:"max_width,omitempty"` // 0 = unlimited
	MaxHeight int `yaml:"max_height,omitempty"`

	// PositionX and PositionY place the window within the usable area of
	// its display: 0 is the left/top edge, 1 the right/bottom edge.
	PositionX float64 `yaml:"position_x"`
	PositionY float64 `yaml:"position_y"`
	Display   int     `yaml:"display"`

	Mode  string `yaml:"mode"`  // windowed, borderless, fullscreen
	State string `yaml:"state"` // normal, maximised, minimised, ...

	// FullscreenWidth and FullscreenHeight pick the exclusive fullscreen
	// mode; zero uses the display's size.
	FullscreenWidth  int `yaml:"fullscreen_width,omitempty"`
	FullscreenHeight int `yaml:"fullscreen_height,omitempty"`

	Resizable   bool    `yaml:"resizable"`
	AlwaysOnTop bool    `yaml:"always_on_top"`
	Opacity     float32 `yaml:"opacity"`
}

// Config is the effective winsync configuration.
type Config struct {
	// Backend selects the windowing backend: "x11", "sim", or empty for the
	// native backend of the running system.
	Backend         string       `yaml:"backend"`
	LogLevel        string       `yaml:"log_level"`
	LogFile         string       `yaml:"log_file,omitempty"`
	FrameIntervalMs int          `yaml:"frame_interval_ms"`
	Window          WindowConfig `yaml:"window"`
}

const (
	DefaultFrameIntervalMs = 16
	maxFrameIntervalMs     = 1000
)

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	s := window.DefaultSettings()
	return &Config{
		LogLevel:        "info",
		FrameIntervalMs: DefaultFrameIntervalMs,
		Window: WindowConfig{
			Title:       s.Title,
			Width:       s.WindowedSize.Width,
			Height:      s.WindowedSize.Height,
			PositionX:   s.WindowedPosition.X,
			PositionY:   s.WindowedPosition.Y,
			Display:     s.DisplayIndex,
			Mode:        s.Mode.String(),
			State:       s.State.String(),
			Resizable:   s.Resizable,
			AlwaysOnTop: s.AlwaysOnTop,
			Opacity:     s.Opacity,
		},
	}
}

// Settings converts the window block into facade settings. The config must
// have been validated.
func (c *Config) Settings() window.Settings {
	w := c.Window
	mode, _ := window.ParseMode(w.Mode)
	state, _ := window.ParseState(w.State)
	return window.Settings{
		Title:            w.Title,
		WindowedSize:     native.Size{Width: w.Width, Height: w.Height},
		WindowedPosition: window.RelativePosition{X: w.PositionX, Y: w.PositionY},
		DisplayIndex:     w.Display,
		Mode:             mode,
		State:            state,
		SizeFullscreen:   native.Size{Width: w.FullscreenWidth, Height: w.FullscreenHeight},
		MinSize:          native.Size{Width: w.MinWidth, Height: w.MinHeight},
		MaxSize:          native.Size{Width: w.MaxWidth, Height: w.MaxHeight},
		Resizable:        w.Resizable,
		AlwaysOnTop:      w.AlwaysOnTop,
		Opacity:          w.Opacity,
	}
}

// Save writes the configuration to the standard location.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save() error {
	path, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Backend)) {
	case "", "x11", "sim":
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: x11, sim (or empty for auto)")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.FrameIntervalMs <= 0 || c.FrameIntervalMs > maxFrameIntervalMs {
		return &ValidationError{Path: "frame_interval_ms", Err: fmt.Errorf("frame_interval_ms must be between 1 and %d", maxFrameIntervalMs)}
	}
	return c.Window.validate()
}

func (w *WindowConfig) validate() error {
	if w.Width <= 0 {
		return &ValidationError{Path: "window.width", Err: fmt.Errorf("width must be > 0")}
	}
	if w.Height <= 0 {
		return &ValidationError{Path: "window.height", Err: fmt.Errorf("height must be > 0")}
	}
	if w.MinWidth < 0 || w.MinHeight < 0 {
		return &ValidationError{Path: "window.min_width", Err: fmt.Errorf("minimum size must be >= 0")}
	}
	if w.MaxWidth < 0 || w.MaxHeight < 0 {
		return &ValidationError{Path: "window.max_width", Err: fmt.Errorf("maximum size must be >= 0")}
	}
	if w.MaxWidth > 0 && w.MaxWidth < w.MinWidth {
		return &ValidationError{Path: "window.max_width", Err: fmt.Errorf("max_width must be >= min_width")}
	}
	if w.MaxHeight > 0 && w.MaxHeight < w.MinHeight {
		return &ValidationError{Path: "window.max_height", Err: fmt.Errorf("max_height must be >= min_height")}
	}
	if w.PositionX < 0 || w.PositionX > 1 {
		return &ValidationError{Path: "window.position_x", Err: fmt.Errorf("position_x must be between 0 and 1")}
	}
	if w.PositionY < 0 || w.PositionY > 1 {
		return &ValidationError{Path: "window.position_y", Err: fmt.Errorf("position_y must be between 0 and 1")}
	}
	if w.Display < 0 {
		return &ValidationError{Path: "window.display", Err: fmt.Errorf("display must be >= 0")}
	}
	if _, err := window.ParseMode(w.Mode); err != nil {
		return &ValidationError{Path: "window.mode", Err: err}
	}
	if _, err := window.ParseState(w.State); err != nil {
		return &ValidationError{Path: "window.state", Err: err}
	}
	if w.FullscreenWidth < 0 || w.FullscreenHeight < 0 {
		return &ValidationError{Path: "window.fullscreen_width", Err: fmt.Errorf("fullscreen size must be >= 0")}
	}
	if w.Opacity < 0 || w.Opacity > 1 {
		return &ValidationError{Path: "window.opacity", Err: fmt.Errorf("opacity must be between 0 and 1")}
	}
	return nil
}
