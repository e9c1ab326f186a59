package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// BuildEffectiveConfig applies raw over DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.Backend != nil {
		cfg.Backend = strings.ToLower(strings.TrimSpace(*raw.Backend))
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.LogFile != nil {
		cfg.LogFile = *raw.LogFile
	}
	if raw.FrameIntervalMs != nil {
		cfg.FrameIntervalMs = *raw.FrameIntervalMs
	}
	if raw.Window != nil {
		applyWindow(&cfg.Window, *raw.Window)
	}
	return cfg, nil
}

func applyWindow(w *WindowConfig, raw RawWindow) {
	w.Title = deref(raw.Title, w.Title)
	w.Width = deref(raw.Width, w.Width)
	w.Height = deref(raw.Height, w.Height)
	w.MinWidth = deref(raw.MinWidth, w.MinWidth)
	w.MinHeight = deref(raw.MinHeight, w.MinHeight)
	w.MaxWidth = deref(raw.MaxWidth, w.MaxWidth)
	w.MaxHeight = deref(raw.MaxHeight, w.MaxHeight)
	w.PositionX = deref(raw.PositionX, w.PositionX)
	w.PositionY = deref(raw.PositionY, w.PositionY)
	w.Display = deref(raw.Display, w.Display)
	w.Mode = deref(raw.Mode, w.Mode)
	w.State = deref(raw.State, w.State)
	w.FullscreenWidth = deref(raw.FullscreenWidth, w.FullscreenWidth)
	w.FullscreenHeight = deref(raw.FullscreenHeight, w.FullscreenHeight)
	w.Resizable = deref(raw.Resizable, w.Resizable)
	w.AlwaysOnTop = deref(raw.AlwaysOnTop, w.AlwaysOnTop)
	w.Opacity = deref(raw.Opacity, w.Opacity)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
