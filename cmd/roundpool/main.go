package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/osse101/roundpool/internal/config"
	"github.com/osse101/roundpool/internal/logger"
)

func main() {
	registry := NewRegistry()
	registry.Register(&MigrateCommand{})
	registry.Register(&SimulateCommand{out: os.Stdout})
	registry.Register(&ReportCommand{out: os.Stdout})

	if len(os.Args) < 2 {
		registry.PrintHelp(os.Stderr)
		os.Exit(1)
	}
	cmd, ok := registry.Get(os.Args[1])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		registry.PrintHelp(os.Stderr)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	initLogger(cfg)
	for _, w := range cfg.Warnings() {
		logger.FromContext(context.Background()).Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.EnsureRequestID(ctx)

	if err := cmd.Run(ctx, cfg, os.Args[2:]); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.Name(), err)
		os.Exit(1)
	}
}

// initLogger starts from the environment's defaults and applies explicit
// LOG_LEVEL and LOG_FORMAT settings on top
func initLogger(cfg *config.Config) {
	lc := logger.ForEnvironment(cfg.Environment).Override(cfg.LogLevel, cfg.LogFormat)
	lc.ServiceName = appName
	logger.InitLogger(lc)
}
