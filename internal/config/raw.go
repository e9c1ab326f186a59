package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

// RawWindow is the window block as written in a file; nil fields were not
// set.
type RawWindow struct {
	Title            *string  `yaml:"title"`
	Width            *int     `yaml:"width"`
	Height           *int     `yaml:"height"`
	MinWidth         *int     `yaml:"min_width"`
	MinHeight        *int     `yaml:"min_height"`
	MaxWidth         *int     `yaml:"max_width"`
	MaxHeight        *int     `yaml:"max_height"`
	PositionX        *float64 `yaml:"position_x"`
	PositionY        *float64 `yaml:"position_y"`
	Display          *int     `yaml:"display"`
	Mode             *string  `yaml:"mode"`
	State            *string  `yaml:"state"`
	FullscreenWidth  *int     `yaml:"fullscreen_width"`
	FullscreenHeight *int     `yaml:"fullscreen_height"`
	Resizable        *bool    `yaml:"resizable"`
	AlwaysOnTop      *bool    `yaml:"always_on_top"`
	Opacity          *float32 `yaml:"opacity"`
}

// RawConfig is one config file before defaults are applied.
type RawConfig struct {
	Include         IncludeList `yaml:"include"`
	Backend         *string     `yaml:"backend"`
	LogLevel        *string     `yaml:"log_level"`
	LogFile         *string     `yaml:"log_file"`
	FrameIntervalMs *int        `yaml:"frame_interval_ms"`
	Window          *RawWindow  `yaml:"window"`
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil
	setIf(&out.Backend, overlay.Backend)
	setIf(&out.LogLevel, overlay.LogLevel)
	setIf(&out.LogFile, overlay.LogFile)
	setIf(&out.FrameIntervalMs, overlay.FrameIntervalMs)
	if overlay.Window != nil {
		base := RawWindow{}
		if out.Window != nil {
			base = *out.Window
		}
		merged := mergeRawWindow(base, *overlay.Window)
		out.Window = &merged
	}
	return out
}

func mergeRawWindow(base RawWindow, overlay RawWindow) RawWindow {
	out := base
	setIf(&out.Title, overlay.Title)
	setIf(&out.Width, overlay.Width)
	setIf(&out.Height, overlay.Height)
	setIf(&out.MinWidth, overlay.MinWidth)
	setIf(&out.MinHeight, overlay.MinHeight)
	setIf(&out.MaxWidth, overlay.MaxWidth)
	setIf(&out.MaxHeight, overlay.MaxHeight)
	setIf(&out.PositionX, overlay.PositionX)
	setIf(&out.PositionY, overlay.PositionY)
	setIf(&out.Display, overlay.Display)
	setIf(&out.Mode, overlay.Mode)
	setIf(&out.State, overlay.State)
	setIf(&out.FullscreenWidth, overlay.FullscreenWidth)
	setIf(&out.FullscreenHeight, overlay.FullscreenHeight)
	setIf(&out.Resizable, overlay.Resizable)
	setIf(&out.AlwaysOnTop, overlay.AlwaysOnTop)
	setIf(&out.Opacity, overlay.Opacity)
	return out
}

func setIf[T any](dst **T, v *T) {
	if v != nil {
		*dst = v
	}
}
