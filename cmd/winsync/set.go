package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/window"
)

// windowSetter is the part of the IPC client the set commands use.
type windowSetter interface {
	SetWindowMode(mode string) (*ipc.StatusData, error)
	SetWindowState(state string) (*ipc.StatusData, error)
	SetWindowSize(width, height int) (*ipc.StatusData, error)
	SetFullscreenSize(width, height int) (*ipc.StatusData, error)
	SetWindowPosition(x, y float64) (*ipc.StatusData, error)
	SetWindowTitle(title string) (*ipc.StatusData, error)
	SetDisplay(index int) (*ipc.StatusData, error)
}

type setFunc func(windowSetter) (*ipc.StatusData, error)

func printSetUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  winsync set mode <windowed|borderless|fullscreen>")
	fmt.Fprintln(w, "  winsync set state <normal|maximised|minimised|fullscreen|fullscreen_borderless>")
	fmt.Fprintln(w, "  winsync set size <width> <height>")
	fmt.Fprintln(w, "  winsync set fullscreen-size <width> <height>   (0 0 = display resolution)")
	fmt.Fprintln(w, "  winsync set position <x> <y>                   (0..1 within the display)")
	fmt.Fprintln(w, "  winsync set title <text...>")
	fmt.Fprintln(w, "  winsync set display <index>")
}

func runSet(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printSetUsage(os.Stderr)
		if len(args) == 0 {
			return 2
		}
		return 0
	}

	fn, err := parseSet(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "")
		printSetUsage(os.Stderr)
		return 2
	}

	status, err := fn(ipc.NewClient())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	s := status.Window
	fmt.Printf("%s/%s %dx%d at %d,%d on display %d\n",
		s.Mode, s.State, s.Size.Width, s.Size.Height, s.Position.X, s.Position.Y, s.Display.Index)
	return 0
}

// parseSet validates a set subcommand and returns the call it makes.
func parseSet(args []string) (setFunc, error) {
	what, rest := args[0], args[1:]
	switch what {
	case "mode":
		if len(rest) != 1 {
			return nil, fmt.Errorf("set mode takes one argument")
		}
		m, err := window.ParseMode(rest[0])
		if err != nil {
			return nil, err
		}
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetWindowMode(m.String()) }, nil

	case "state":
		if len(rest) != 1 {
			return nil, fmt.Errorf("set state takes one argument")
		}
		s, err := window.ParseState(rest[0])
		if err != nil {
			return nil, err
		}
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetWindowState(s.String()) }, nil

	case "size", "fullscreen-size":
		if len(rest) != 2 {
			return nil, fmt.Errorf("set %s takes <width> <height>", what)
		}
		w, err1 := strconv.Atoi(rest[0])
		h, err2 := strconv.Atoi(rest[1])
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid size %q %q", rest[0], rest[1])
		}
		if what == "size" {
			if w <= 0 || h <= 0 {
				return nil, fmt.Errorf("size must be > 0")
			}
			return func(c windowSetter) (*ipc.StatusData, error) { return c.SetWindowSize(w, h) }, nil
		}
		if w < 0 || h < 0 {
			return nil, fmt.Errorf("fullscreen size must be >= 0")
		}
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetFullscreenSize(w, h) }, nil

	case "position":
		if len(rest) != 2 {
			return nil, fmt.Errorf("set position takes <x> <y>")
		}
		x, err1 := strconv.ParseFloat(rest[0], 64)
		y, err2 := strconv.ParseFloat(rest[1], 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid position %q %q", rest[0], rest[1])
		}
		if x < 0 || x > 1 || y < 0 || y > 1 {
			return nil, fmt.Errorf("position must be between 0 and 1")
		}
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetWindowPosition(x, y) }, nil

	case "title":
		if len(rest) == 0 {
			return nil, fmt.Errorf("set title requires text")
		}
		title := strings.Join(rest, " ")
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetWindowTitle(title) }, nil

	case "display":
		if len(rest) != 1 {
			return nil, fmt.Errorf("set display takes one argument")
		}
		idx, err := strconv.Atoi(rest[0])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid display index %q", rest[0])
		}
		return func(c windowSetter) (*ipc.StatusData, error) { return c.SetDisplay(idx) }, nil

	default:
		return nil, fmt.Errorf("unknown set target: %s", what)
	}
}
