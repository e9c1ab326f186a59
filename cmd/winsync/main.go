package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "set":
		os.Exit(runSet(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "edit":
		os.Exit(runEdit(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: winsync <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Open the managed window and run its frame loop (foreground)")
	fmt.Fprintln(w, "  status              Show the window state reported by the daemon")
	fmt.Fprintln(w, "  displays            List connected displays")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  set mode            Set windowed, borderless or fullscreen mode")
	fmt.Fprintln(w, "  set state           Set normal, maximised, minimised, fullscreen state")
	fmt.Fprintln(w, "  set size            Set the windowed size")
	fmt.Fprintln(w, "  set fullscreen-size Set the exclusive fullscreen resolution")
	fmt.Fprintln(w, "  set position        Set the relative position on the display")
	fmt.Fprintln(w, "  set title           Set the window title")
	fmt.Fprintln(w, "  set display         Move the window to another display")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config diff         Show changes from the defaults")
	fmt.Fprintln(w, "  config init         Write a new config file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open interactive TUI")
	fmt.Fprintln(w, "  edit title          Edit the window title in a text editor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'winsync <command> --help' for command-specific options.")
}

// parseFlags parses args and reports the exit code to use when parsing
// stopped the command.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func printJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the full snapshot as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, status)
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	s := status.Window
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "backend:        %s\n", status.Backend)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "frames:         %d (%d failed)\n", status.Frames, status.FrameFailures)
	fmt.Fprintf(w, "lifecycle:      %s\n", s.Lifecycle)
	fmt.Fprintf(w, "title:          %s\n", s.Title)
	fmt.Fprintf(w, "mode:           %s\n", s.Mode)
	fmt.Fprintf(w, "state:          %s\n", s.State)
	fmt.Fprintf(w, "position:       %d,%d\n", s.Position.X, s.Position.Y)
	fmt.Fprintf(w, "size:           %dx%d\n", s.Size.Width, s.Size.Height)
	fmt.Fprintf(w, "client_size:    %dx%d\n", s.ClientSize.Width, s.ClientSize.Height)
	fmt.Fprintf(w, "display:        %d %s %s\n", s.Display.Index, s.Display.Name, s.DisplayMode)
	fmt.Fprintf(w, "focused:        %v\n", s.IsActive)
}

func runDisplays(args []string) int {
	fs := flag.NewFlagSet("displays", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync displays [--json]")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return printJSON(os.Stdout, data)
	}
	printDisplays(os.Stdout, data.Displays)
	return 0
}

func printDisplays(w io.Writer, displays []ipc.DisplayInfo) {
	for _, d := range displays {
		marker := " "
		if d.Current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %d  %-12s %dx%d+%d+%d", marker, d.Index, d.Name, d.Width, d.Height, d.X, d.Y)
		if len(d.Modes) > 0 {
			fmt.Fprintf(w, "  %s", d.Modes[0])
			if len(d.Modes) > 1 {
				fmt.Fprintf(w, " (+%d modes)", len(d.Modes)-1)
			}
		}
		fmt.Fprintln(w)
	}
}

func runReload(args []string) int {
	fs := flag.NewFlagSet("reload", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync reload")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Ask the daemon to reload its config file and apply the window block.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if _, err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/winsync/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1/2   Switch between the Window and Displays tabs")
		fmt.Fprintln(os.Stderr, "  e          Edit window settings")
		fmt.Fprintln(os.Stderr, "  m x f z n  Cycle mode, maximise, fullscreen, minimise, normal (daemon)")
		fmt.Fprintln(os.Stderr, "  enter      Move the window to the selected display (daemon)")
		fmt.Fprintln(os.Stderr, "  ctrl+s     Save config (reloads the daemon when running)")
		fmt.Fprintln(os.Stderr, "  ctrl+o     Edit config in $EDITOR")
		fmt.Fprintln(os.Stderr, "  q, ctrl+c  Quit")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
