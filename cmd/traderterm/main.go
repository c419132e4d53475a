package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"traderterm/internal/config"
	"traderterm/internal/journal"
	"traderterm/internal/oms"
	"traderterm/internal/ticket"
	"traderterm/internal/ui"
	"traderterm/internal/util"
)

func main() {
	cfgPath := flag.String("config", "", "path to config YAML (defaults apply if empty)")
	logPath := flag.String("log", "", "log file (stderr if empty)")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
			os.Exit(1)
		}
	}

	// The TUI owns the terminal, so logs go to a file or stderr.
	logOut := os.Stderr
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger := util.NewLogger(logOut, cfg.Logging.Level, cfg.Logging.Format)

	var recorder ticket.Recorder
	if cfg.Journal.SQLitePath != "" {
		j, err := journal.Open(cfg.Journal.SQLitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open journal: %v\n", err)
			os.Exit(1)
		}
		defer j.Close()
		recorder = j
	}

	client := oms.NewClient(cfg.Server.BaseURL)
	app := ui.NewApp(cfg, client, recorder, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Probe the order service before taking over the terminal; the UI
	// itself never retries.
	if err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		_, err := client.ListOrders(ctx)
		return err
	}); err != nil {
		logger.Warn("order service unreachable, starting anyway", "server", cfg.Server.BaseURL, "error", err)
	}

	app.StartSync(ctx)

	logger.Info("traderterm starting", "server", cfg.Server.BaseURL, "poll", cfg.Poll.Interval())

	p := tea.NewProgram(ui.NewModel(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
