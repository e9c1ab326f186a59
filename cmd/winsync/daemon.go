package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/winsync/internal/config"
	"github.com/1broseidon/winsync/internal/daemon"
	"github.com/1broseidon/winsync/internal/ipc"
	"github.com/1broseidon/winsync/internal/logging"
	"github.com/1broseidon/winsync/internal/platform"
	"github.com/1broseidon/winsync/internal/window"
)

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", configPathUsage)
	backendName := fs.String("backend", "", "Override the config backend (x11, sim)")
	keepOpen := fs.Bool("keep-open", false, "Keep running when the window is asked to close")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: winsync daemon [--path PATH] [--backend NAME] [--keep-open]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open the managed window and keep it in sync with the config and IPC")
		fmt.Fprintln(os.Stderr, "requests. SIGHUP reloads the config; SIGINT/SIGTERM stop the daemon.")
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config
	if *backendName != "" {
		cfg.Backend = *backendName
	}

	var level slog.LevelVar
	logger, closeLog, err := logging.New(logging.Config{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
		LevelVar: &level,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("configuration loaded", "files", len(res.Files), "backend", cfg.Backend,
		"title", cfg.Window.Title, "mode", cfg.Window.Mode, "state", cfg.Window.State)

	backend, err := platform.Open(cfg.Backend, logger)
	if err != nil {
		logger.Error("failed to open backend", "error", err)
		return 1
	}
	defer platform.Close(backend)

	win, err := window.New(window.Config{
		Backend:  backend,
		OS:       platform.Current(),
		Settings: cfg.Settings(),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to create window", "error", err)
		return 1
	}

	runner := daemon.NewRunner(daemon.RunnerConfig{
		Interval:    time.Duration(cfg.FrameIntervalMs) * time.Millisecond,
		Logger:      logger,
		ExitOnClose: !*keepOpen,
	}, win)
	stateLog := daemon.NewStateLogger(win, logger)
	defer stateLog.Close()

	backendLabel := cfg.Backend
	if backendLabel == "" {
		backendLabel = platform.BackendX11
	}
	server, err := ipc.NewServer(ipc.ServerConfig{
		Backend:    backendLabel,
		Config:     cfg,
		ConfigPath: *path,
		Logger:     logger,
		OnReload: func(newCfg *config.Config) {
			level.Set(logging.ParseLogLevel(newCfg.LogLevel))
		},
	}, runner)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer server.Stop()
	logger.Info("IPC server listening", "socket", server.SocketPath())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig != syscall.SIGHUP {
					logger.Info("shutting down winsync daemon", "signal", sig.String())
					cancel()
					return
				}
				logger.Info("received SIGHUP, reloading config")
				reloadFromSignal(ctx, *path, server, runner, &level, logger)
			}
		}
	}()

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("frame loop failed", "error", err)
		return 1
	}
	return 0
}

// reloadFromSignal applies the config file to the running window, as the
// RELOAD command does.
func reloadFromSignal(ctx context.Context, path string, server *ipc.Server, runner *daemon.Runner, level *slog.LevelVar, logger *slog.Logger) {
	res, err := loadConfig(path)
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}
	cfg := res.Config
	settings := cfg.Settings()
	err = runner.Do(ctx, func(w *window.Facade) error {
		w.ApplySettings(settings)
		return nil
	})
	if err != nil {
		logger.Error("config reload failed", "error", err)
		return
	}
	server.UpdateConfig(cfg)
	level.Set(logging.ParseLogLevel(cfg.LogLevel))
	logger.Info("config reloaded", "title", cfg.Window.Title)
}
