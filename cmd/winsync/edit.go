package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/tui"
)

func runEdit(args []string) int {
	if len(args) == 0 || args[0] != "title" {
		fmt.Fprintln(os.Stderr, "Usage: winsync edit title [--path PATH] [--config]")
		return 2
	}

	fs := flag.NewFlagSet("edit title", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathUsage)
	toConfig := fs.Bool("config", false, "Save to the config file even when the daemon is running")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync edit title [--path PATH] [--config]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Edit the window title. The new title goes to the running daemon, or")
		fmt.Fprintln(os.Stderr, "to the config file when no daemon is running.")
	}
	if code, ok := parseFlags(fs, args[1:]); !ok {
		return code
	}

	client := ipc.NewClient()
	live := !*toConfig && client.Ping() == nil

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	current := res.Config.Window.Title
	if live {
		if status, err := client.GetStatus(); err == nil {
			current = status.Window.Title
		}
	}

	text, saved, err := tui.RunEditor("Window title", current)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if !saved {
		fmt.Println("cancelled")
		return 0
	}
	title := singleLine(text)

	if live {
		if _, err := client.SetWindowTitle(title); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("title set to %q\n", title)
		return 0
	}

	target := *path
	if target == "" {
		if target, err = config.DefaultConfigPath(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	res.Config.Window.Title = title
	if err := res.Config.SaveTo(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("title saved to %s\n", target)
	return 0
}

// singleLine joins the lines of an edited title with spaces.
func singleLine(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "\n", " ")), " ")
}
