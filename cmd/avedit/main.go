package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"avedit/internal/pipeline"
	"avedit/logger"
)

func main() {
	opts := logger.DefaultOptions()
	console := logger.NewConsole(opts)

	cfg, level, err := parseArgs(console)
	if err != nil {
		os.Stderr.WriteString("Configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	opts.Level = level
	opts.AddSource = level == slog.LevelDebug
	console = logger.NewConsole(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipe, err := pipeline.New(cfg, console)
	if err != nil {
		console.Error("Startup error: %v", err)
		os.Exit(1)
	}

	timer := console.StartTimer("avedit")
	if _, err := pipe.Run(ctx); err != nil {
		console.Error("Processing error: %v", err)
		os.Exit(1)
	}
	timer.End()

	console.Success("All processing completed successfully")
}
