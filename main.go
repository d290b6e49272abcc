package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"quarkgrid/internal/config"
	"quarkgrid/internal/metrics"
	"quarkgrid/internal/pagination"
	"quarkgrid/internal/ui"
)

func main() {
	// Parse command line arguments
	var configPath, startView string
	flag.StringVar(&configPath, "config", "", "Path to the config file (default ./"+config.DefaultFileName+")")
	flag.StringVar(&configPath, "c", "", "Path to the config file (shorthand)")
	flag.StringVar(&startView, "view", "", "View to start on: elements or particles")
	flag.Parse()

	// Load configuration
	configSvc := config.NewConfigService(configPath)
	cfg, err := configSvc.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if startView != "" {
		cfg.UISettings.StartView = startView
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -view: %v\n", err)
			os.Exit(2)
		}
	}

	// Set up logging; the terminal belongs to the TUI so nothing goes to stderr
	var logOut io.Writer = io.Discard
	if cfg.LogFile != "" {
		logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		} else {
			defer logFile.Close()
			logOut = logFile
		}
	}
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	// Create context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg, logger); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	// Initialize services
	opts := []pagination.Option{
		pagination.WithLogger(logger),
		pagination.WithHistoryLimit(cfg.HistoryLimit),
		pagination.WithMetrics(m),
	}
	linear := pagination.NewLinearService(opts...)
	grid := pagination.NewGridService(opts...)

	// Create UI model
	uiModel, err := ui.NewModel(linear, grid, cfg, logger)
	if err != nil {
		logger.Error("could not build UI", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer uiModel.Close()

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen(), tea.WithContext(ctx))
	uiModel.SetProgram(p)

	// Run the UI
	logger.Info("starting UI", "view", cfg.UISettings.StartView, "history_limit", cfg.HistoryLimit)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("program failed", "error", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	logger.Info("UI exited normally")
}
