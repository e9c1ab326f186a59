package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/window"
)

// WindowTab shows the live window next to its configured settings and edits
// the window block of the config.
type WindowTab struct {
	cfg    *config.Config
	client daemonClient
	status *ipc.StatusData

	width  int
	height int

	statusText string

	// Edit mode
	editing bool
	form    *huh.Form

	// Form-bound values (strings for huh, converted on submit)
	fTitle       string
	fWidth       string
	fHeight      string
	fPositionX   string
	fPositionY   string
	fDisplay     string
	fMode        string
	fState       string
	fOpacity     string
	fResizable   bool
	fAlwaysOnTop bool
}

// NewWindowTab creates a WindowTab from the loaded config.
func NewWindowTab(cfg *config.Config, client daemonClient) WindowTab {
	return WindowTab{cfg: cfg, client: client}
}

// SetStatus updates the live window state; nil means no daemon.
func (w *WindowTab) SetStatus(st *ipc.StatusData) {
	w.status = st
}

// Init implements tea.Model.
func (w WindowTab) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (w WindowTab) Update(msg tea.Msg) (WindowTab, tea.Cmd) {
	switch msg := msg.(type) {
	case statusMsg:
		if msg.err != nil {
			w.statusText = "error: " + msg.err.Error()
		} else {
			w.statusText = msg.text
		}
		return w, clearStatusAfter(3 * time.Second)
	case clearStatusMsg:
		w.statusText = ""
		return w, nil
	}
	if w.editing {
		return w.updateEditing(msg)
	}
	return w.updateDisplay(msg)
}

func (w WindowTab) updateDisplay(msg tea.Msg) (WindowTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "e":
			w.startEditing()
			return w, w.form.Init()
		case "m":
			next := nextMode(w.liveMode())
			return w.action("mode: "+next.String(), func(c daemonClient) error {
				_, err := c.SetWindowMode(next.String())
				return err
			})
		case "x":
			target := window.Maximised
			if w.status != nil && w.status.Window.State == window.Maximised {
				target = window.Normal
			}
			return w.setState(target)
		case "f":
			target := window.StateFullscreen
			if w.status != nil && w.status.Window.State == window.StateFullscreen {
				target = window.Normal
			}
			return w.setState(target)
		case "z":
			return w.setState(window.Minimised)
		case "n":
			return w.setState(window.Normal)
		}
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}
	return w, nil
}

func (w WindowTab) setState(s window.State) (WindowTab, tea.Cmd) {
	return w.action("state: "+s.String(), func(c daemonClient) error {
		_, err := c.SetWindowState(s.String())
		return err
	})
}

// action runs fn against the daemon off the update loop.
func (w WindowTab) action(desc string, fn func(daemonClient) error) (WindowTab, tea.Cmd) {
	if w.status == nil || w.client == nil {
		w.statusText = "daemon not connected"
		return w, clearStatusAfter(3 * time.Second)
	}
	client := w.client
	return w, func() tea.Msg {
		if err := fn(client); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: desc}
	}
}

func (w WindowTab) liveMode() window.Mode {
	if w.status == nil {
		return window.Windowed
	}
	return w.status.Window.Mode
}

func nextMode(m window.Mode) window.Mode {
	switch m {
	case window.Windowed:
		return window.Borderless
	case window.Borderless:
		return window.Fullscreen
	default:
		return window.Windowed
	}
}

func (w WindowTab) updateEditing(msg tea.Msg) (WindowTab, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "esc" {
			w.editing = false
			w.form = nil
			return w, nil
		}
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		w.applyForm()
		w.editing = false
		w.form = nil
		if w.status != nil && w.cfg != nil {
			return w.action("applied config to window", pushWindowConfig(w.cfg.Window))
		}
		return w, nil
	}

	return w, cmd
}

func (w *WindowTab) startEditing() {
	cfg := w.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	wc := cfg.Window

	w.fTitle = wc.Title
	w.fWidth = strconv.Itoa(wc.Width)
	w.fHeight = strconv.Itoa(wc.Height)
	w.fPositionX = formatFloat(wc.PositionX)
	w.fPositionY = formatFloat(wc.PositionY)
	w.fDisplay = strconv.Itoa(wc.Display)
	w.fMode = wc.Mode
	w.fState = wc.State
	w.fOpacity = formatFloat(float64(wc.Opacity))
	w.fResizable = wc.Resizable
	w.fAlwaysOnTop = wc.AlwaysOnTop

	modeOpts := []huh.Option[string]{
		huh.NewOption("windowed", window.Windowed.String()),
		huh.NewOption("borderless", window.Borderless.String()),
		huh.NewOption("fullscreen", window.Fullscreen.String()),
	}
	stateOpts := []huh.Option[string]{
		huh.NewOption("normal", window.Normal.String()),
		huh.NewOption("maximised", window.Maximised.String()),
		huh.NewOption("minimised", window.Minimised.String()),
		huh.NewOption("fullscreen", window.StateFullscreen.String()),
		huh.NewOption("fullscreen (borderless)", window.FullscreenBorderless.String()),
	}

	fw := w.width - 4
	if fw < 40 {
		fw = 40
	}

	w.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&w.fTitle),
			huh.NewInput().
				Key("width").
				Title("Width").
				Description("Windowed width in pixels").
				Validate(validatePositiveInt).
				Value(&w.fWidth),
			huh.NewInput().
				Key("height").
				Title("Height").
				Description("Windowed height in pixels").
				Validate(validatePositiveInt).
				Value(&w.fHeight),
			huh.NewInput().
				Key("position_x").
				Title("Position X").
				Description("0 = left edge, 1 = right edge").
				Validate(validateUnit).
				Value(&w.fPositionX),
			huh.NewInput().
				Key("position_y").
				Title("Position Y").
				Description("0 = top edge, 1 = bottom edge").
				Validate(validateUnit).
				Value(&w.fPositionY),
			huh.NewInput().
				Key("display").
				Title("Display").
				Description("Display index").
				Validate(validateIndex).
				Value(&w.fDisplay),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Key("mode").
				Title("Mode").
				Options(modeOpts...).
				Value(&w.fMode),
			huh.NewSelect[string]().
				Key("state").
				Title("State").
				Options(stateOpts...).
				Value(&w.fState),
			huh.NewConfirm().
				Key("resizable").
				Title("Resizable").
				Value(&w.fResizable),
			huh.NewConfirm().
				Key("always_on_top").
				Title("Always on top").
				Value(&w.fAlwaysOnTop),
			huh.NewInput().
				Key("opacity").
				Title("Opacity").
				Description("0 to 1").
				Validate(validateUnit).
				Value(&w.fOpacity),
		),
	).WithWidth(fw).WithShowHelp(true).WithShowErrors(true)

	w.editing = true
}

func (w *WindowTab) applyForm() {
	if w.cfg == nil {
		return
	}
	wc := &w.cfg.Window

	wc.Title = w.fTitle
	if v, err := strconv.Atoi(w.fWidth); err == nil && v > 0 {
		wc.Width = v
	}
	if v, err := strconv.Atoi(w.fHeight); err == nil && v > 0 {
		wc.Height = v
	}
	if v, err := parseUnit(w.fPositionX); err == nil {
		wc.PositionX = v
	}
	if v, err := parseUnit(w.fPositionY); err == nil {
		wc.PositionY = v
	}
	if v, err := strconv.Atoi(w.fDisplay); err == nil && v >= 0 {
		wc.Display = v
	}
	if w.fMode != "" {
		wc.Mode = w.fMode
	}
	if w.fState != "" {
		wc.State = w.fState
	}
	if v, err := parseUnit(w.fOpacity); err == nil {
		wc.Opacity = float32(v)
	}
	wc.Resizable = w.fResizable
	wc.AlwaysOnTop = w.fAlwaysOnTop
}

// pushWindowConfig sends the edited window block to the running daemon.
func pushWindowConfig(wc config.WindowConfig) func(daemonClient) error {
	return func(c daemonClient) error {
		steps := []func() error{
			func() error { _, err := c.SetWindowTitle(wc.Title); return err },
			func() error { _, err := c.SetDisplay(wc.Display); return err },
			func() error { _, err := c.SetWindowSize(wc.Width, wc.Height); return err },
			func() error { _, err := c.SetWindowPosition(wc.PositionX, wc.PositionY); return err },
			func() error { _, err := c.SetWindowMode(wc.Mode); return err },
			func() error { _, err := c.SetWindowState(wc.State); return err },
		}
		var errs []error
		for _, step := range steps {
			if err := step(); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}

func validatePositiveInt(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return fmt.Errorf("must be a positive integer")
	}
	return nil
}

func validateIndex(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return fmt.Errorf("must be 0 or greater")
	}
	return nil
}

func validateUnit(s string) error {
	_, err := parseUnit(s)
	return err
}

func parseUnit(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 || v > 1 {
		return 0, fmt.Errorf("must be between 0 and 1")
	}
	return v, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// View implements tea.Model.
func (w WindowTab) View() string {
	if w.editing && w.form != nil {
		return w.viewEditing()
	}
	return w.viewDisplay()
}

func (w WindowTab) viewDisplay() string {
	labelStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")).
		Width(18).
		Align(lipgloss.Right).
		PaddingRight(2)

	valueStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Bold(true)

	headStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value)
	}

	var live []string
	live = append(live, headStyle.Render("Live window"))
	if w.status == nil {
		live = append(live, dimStyle.Render("  daemon not running"))
	} else {
		s := w.status.Window
		live = append(live,
			row("Title", s.Title),
			row("Lifecycle", s.Lifecycle.String()),
			row("Mode / State", s.Mode.String()+" / "+s.State.String()),
			row("Position", fmt.Sprintf("%d,%d", s.Position.X, s.Position.Y)),
			row("Size", fmt.Sprintf("%d×%d (client %d×%d)", s.Size.Width, s.Size.Height, s.ClientSize.Width, s.ClientSize.Height)),
			row("Display", fmt.Sprintf("%d %s %s", s.Display.Index, s.Display.Name, s.DisplayMode)),
			row("Scale", formatFloat(float64(s.Scale))),
			row("Flags", windowFlags(s)),
			row("Frames", fmt.Sprintf("%d (%d failed)", w.status.Frames, w.status.FrameFailures)),
		)
	}

	var cfgLines []string
	cfgLines = append(cfgLines, headStyle.Render("Configured"))
	if w.cfg == nil {
		cfgLines = append(cfgLines, dimStyle.Render("  no config loaded"))
	} else {
		wc := w.cfg.Window
		cfgLines = append(cfgLines,
			row("Title", wc.Title),
			row("Size", fmt.Sprintf("%d×%d", wc.Width, wc.Height)),
			row("Limits", fmt.Sprintf("min %d×%d max %s", wc.MinWidth, wc.MinHeight, maxSizeLabel(wc.MaxWidth, wc.MaxHeight))),
			row("Position", formatFloat(wc.PositionX)+", "+formatFloat(wc.PositionY)),
			row("Display", strconv.Itoa(wc.Display)),
			row("Mode / State", wc.Mode+" / "+wc.State),
			row("Fullscreen", maxSizeLabel(wc.FullscreenWidth, wc.FullscreenHeight)),
			row("Opacity", formatFloat(float64(wc.Opacity))),
		)
	}

	help := dimStyle.Render("  e: edit  m: cycle mode  x: maximise  f: fullscreen  z: minimise  n: normal")
	if w.statusText != "" {
		help = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("  "+w.statusText) + "\n" + help
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(live, "\n"),
		"    ",
		strings.Join(cfgLines, "\n"),
	) + "\n\n" + help

	return lipgloss.NewStyle().
		Width(w.width).
		Height(w.height).
		Padding(1, 2).
		Render(content)
}

func windowFlags(s window.Snapshot) string {
	var flags []string
	if s.IsActive {
		flags = append(flags, "focused")
	}
	if s.Visible {
		flags = append(flags, "visible")
	}
	if s.Bordered {
		flags = append(flags, "bordered")
	}
	if s.Resizable {
		flags = append(flags, "resizable")
	}
	if s.AlwaysOnTop {
		flags = append(flags, "on-top")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}

func maxSizeLabel(width, height int) string {
	if width == 0 && height == 0 {
		return "(auto)"
	}
	return fmt.Sprintf("%d×%d", width, height)
}

func (w WindowTab) viewEditing() string {
	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color("62")).
		Bold(true).
		Render("Editing Window Settings") +
		lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("  (esc to cancel)")

	content := header + "\n\n" + w.form.View()

	return lipgloss.NewStyle().
		Width(w.width).
		Height(w.height).
		Padding(1, 2).
		Render(content)
}
