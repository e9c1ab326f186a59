package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/window"
)

const configPathUsage = "Config file path (default: ~/.config/winsync/config.yaml)"

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  winsync config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winsync config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  winsync config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  winsync config diff [--path PATH]")
		fmt.Fprintln(os.Stderr, "  winsync config init [--path PATH] [--defaults] [--force]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathUsage)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: ok (%d files)\n", len(res.Files))
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathUsage)
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		_ = fs.Bool("effective", false, "Print effective config (default)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathUsage)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := explain(os.Stdout, res, fs.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "diff":
		fs := flag.NewFlagSet("diff", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", configPathUsage)
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		lines := config.Diff(config.DefaultConfig(), res.Config, 1)
		if len(lines) == 0 {
			fmt.Println("no changes from defaults")
			return 0
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return 0

	case "init":
		return runConfigInit(args[1:])

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func explain(w io.Writer, res *config.LoadResult, queryPath string) error {
	value, src, err := config.Explain(res, queryPath)
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "path: %s\n", queryPath)
	fmt.Fprintf(w, "source: %s\n", formatSource(src))
	fmt.Fprintf(w, "value:\n%s", string(out))
	return nil
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}

func runConfigInit(args []string) int {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathUsage)
	defaults := fs.Bool("defaults", false, "Write the defaults without prompting")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	target := *path
	if target == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		target = p
	}
	if _, err := os.Stat(target); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "%s already exists (use --force to overwrite)\n", target)
		return 1
	}

	cfg := config.DefaultConfig()
	if !*defaults {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "config init is interactive; use --defaults when stdin is not a terminal")
			return 2
		}
		if err := promptConfig(cfg); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return 1
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if err := cfg.SaveTo(target); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wrote %s\n", target)
	return 0
}

// promptConfig asks for the common settings and stores them in cfg.
func promptConfig(cfg *config.Config) error {
	backend := cfg.Backend
	title := cfg.Window.Title
	width := strconv.Itoa(cfg.Window.Width)
	height := strconv.Itoa(cfg.Window.Height)
	mode := cfg.Window.Mode
	display := strconv.Itoa(cfg.Window.Display)

	positive := func(s string) error {
		if v, err := strconv.Atoi(s); err != nil || v <= 0 {
			return fmt.Errorf("must be a positive integer")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Backend").
				Options(
					huh.NewOption("auto", ""),
					huh.NewOption("x11", "x11"),
					huh.NewOption("sim (no display server)", "sim"),
				).
				Value(&backend),
			huh.NewInput().Title("Window title").Value(&title),
			huh.NewInput().Title("Width").Validate(positive).Value(&width),
			huh.NewInput().Title("Height").Validate(positive).Value(&height),
			huh.NewSelect[string]().
				Title("Mode").
				Options(
					huh.NewOption("windowed", window.Windowed.String()),
					huh.NewOption("borderless", window.Borderless.String()),
					huh.NewOption("fullscreen", window.Fullscreen.String()),
				).
				Value(&mode),
			huh.NewInput().
				Title("Display index").
				Validate(func(s string) error {
					if v, err := strconv.Atoi(s); err != nil || v < 0 {
						return fmt.Errorf("must be 0 or greater")
					}
					return nil
				}).
				Value(&display),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Backend = backend
	cfg.Window.Title = title
	cfg.Window.Width, _ = strconv.Atoi(width)
	cfg.Window.Height, _ = strconv.Atoi(height)
	cfg.Window.Mode = mode
	cfg.Window.Display, _ = strconv.Atoi(display)
	return nil
}
