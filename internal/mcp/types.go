package mcp

// GetWindowStateInput is the input for the get_window_state tool.
type GetWindowStateInput struct{}

// WindowStateOutput describes the managed window. Every set_* tool returns
// it after the change has been applied.
type WindowStateOutput struct {
	Title          string  `json:"title"`
	Lifecycle      string  `json:"lifecycle"`
	Mode           string  `json:"mode"`
	State          string  `json:"state"`
	X              int     `json:"x"`
	Y              int     `json:"y"`
	Width          int     `json:"width"`
	Height         int     `json:"height"`
	ClientWidth    int     `json:"client_width"`
	ClientHeight   int     `json:"client_height"`
	Scale          float64 `json:"scale"`
	Display        string  `json:"display"`
	DisplayIndex   int     `json:"display_index"`
	DisplayMode    string  `json:"display_mode,omitempty"`
	IsActive       bool    `json:"is_active"`
	CursorInWindow bool    `json:"cursor_in_window"`
	Visible        bool    `json:"visible"`
	Resizable      bool    `json:"resizable"`
	Bordered       bool    `json:"bordered"`
	AlwaysOnTop    bool    `json:"always_on_top"`
	Opacity        float64 `json:"opacity"`
	Backend        string  `json:"backend"`
	Frames         int64   `json:"frames"`
}

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayOutput describes a single display.
type DisplayOutput struct {
	Index   int      `json:"index"`
	Name    string   `json:"name"`
	X       int      `json:"x"`
	Y       int      `json:"y"`
	Width   int      `json:"width"`
	Height  int      `json:"height"`
	Current bool     `json:"current"`
	Modes   []string `json:"modes"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayOutput `json:"displays"`
}

// SetWindowModeInput is the input for the set_window_mode tool.
type SetWindowModeInput struct {
	Mode string `json:"mode" jsonschema:"Window mode: windowed, borderless or fullscreen"`
}

// SetWindowStateInput is the input for the set_window_state tool.
type SetWindowStateInput struct {
	State string `json:"state" jsonschema:"Window state: normal, maximised, minimised, fullscreen or fullscreen_borderless"`
}

// SetWindowSizeInput is the input for the set_window_size tool.
type SetWindowSizeInput struct {
	Width      int  `json:"width" jsonschema:"Width in screen units"`
	Height     int  `json:"height" jsonschema:"Height in screen units"`
	Fullscreen bool `json:"fullscreen,omitempty" jsonschema:"When true, set the exclusive fullscreen resolution instead of the windowed size. 0x0 selects the display's native resolution."`
}

// SetWindowPositionInput is the input for the set_window_position tool.
type SetWindowPositionInput struct {
	X float64 `json:"x" jsonschema:"Horizontal position within the display's usable area, 0 (left) to 1 (right)"`
	Y float64 `json:"y" jsonschema:"Vertical position within the display's usable area, 0 (top) to 1 (bottom)"`
}

// SetWindowTitleInput is the input for the set_window_title tool.
type SetWindowTitleInput struct {
	Title string `json:"title" jsonschema:"New window title"`
}
