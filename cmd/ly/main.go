package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/linkify/internal/config"
	"github.com/nikbrunner/linkify/internal/proxy"
	"github.com/nikbrunner/linkify/internal/storage"
	"github.com/nikbrunner/linkify/internal/tui"
)

var configPath string

func main() {
	var closed bool

	root := &cobra.Command{
		Use:   "ly",
		Short: "ly - search and open links from a Linkify server",
		Long: `ly is a keyboard-driven selector for a self-hosted Linkify link service.

Running ly without a subcommand opens the overlay. Type to search links,
start with @ to search saved queries, end a saved query name with . to
run it.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(!closed)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ~/.config/linkify/config.yaml)")
	root.Flags().BoolVar(&closed, "closed", false, `start with the overlay closed (toggle with ctrl+\)`)

	root.AddCommand(configCmd())
	root.AddCommand(openCmd())
	root.AddCommand(saveCmd())
	root.AddCommand(rmCmd())
	root.AddCommand(tagsCmd())
	root.AddCommand(importCmd())
	root.AddCommand(exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session is everything a command needs to talk to the server.
type session struct {
	settings config.Settings
	proxy    *proxy.Proxy
	bridge   proxy.Bridge
	logger   *slog.Logger
	closers  []func() error
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// settingsPath resolves --config or the default location.
func settingsPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// openSession loads settings, starts file logging, opens the read-mark
// outbox and flushes it. limit caps link lookups; 0 keeps the overlay cap.
func openSession(limit int) (*session, error) {
	path, err := settingsPath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	settings, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	s := &session{settings: settings}

	// The terminal belongs to the UI, so logs go to a file.
	if err := os.MkdirAll(filepath.Dir(settings.LogFile), 0700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logFile, err := tea.LogToFile(settings.LogFile, "ly")
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	s.closers = append(s.closers, logFile.Close)
	s.logger = slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(s.logger)

	params := proxy.Params{
		Settings: settings,
		Logger:   s.logger,
		Limit:    limit,
	}
	outbox, err := storage.NewSQLiteOutbox(settings.Outbox)
	if err != nil {
		s.logger.Warn("read-mark outbox unavailable", "path", settings.Outbox, "error", err)
	} else {
		params.Outbox = outbox
		s.closers = append(s.closers, outbox.Close)
	}

	s.proxy = proxy.New(params)
	s.bridge = proxy.NewBridge(s.proxy)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.proxy.FlushPending(ctx); err != nil {
		s.logger.Warn("flush read-marks", "error", err)
	}

	return s, nil
}

// requireConfigured fails commands that cannot work without a server.
func (s *session) requireConfigured() error {
	if s.proxy.Configured() {
		return nil
	}
	return fmt.Errorf("%w: run `ly config --server URL --token TOKEN`", config.ErrIncomplete)
}

// runTUI runs the overlay.
func runTUI(startOpen bool) error {
	s, err := openSession(0)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(tui.AppParams{
		Backend:   s.bridge,
		Navigate:  proxy.OpenURL,
		Debounce:  s.settings.Debounce(),
		Logger:    s.logger,
		StartOpen: startOpen,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
