package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"avedit/internal/launcher"
)

const version = "1.0.0"

func main() {
	cmd := launcher.NewCommand()

	flag.StringVar(&cmd.InputDir, "input", launcher.DefaultInput, "Directory of raw source videos")
	flag.StringVar(&cmd.OutputDir, "output", launcher.DefaultOutput, "Directory for rendered exports")
	flag.StringVar(&cmd.MusicDir, "music", launcher.DefaultMusic, "Directory of background music tracks")
	flag.StringVar(&cmd.MetadataPath, "metadata", launcher.DefaultMetadata, "Metadata sidecar file")
	flag.StringVar(&cmd.Style, "style", launcher.DefaultStyle, "Editing style preset")
	flag.StringVar(&cmd.Editor, "editor", launcher.DefaultEditor, "Editor binary to invoke")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("avedit-run v%s\n", version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := cmd.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "avedit-run: %v\n", err)
		os.Exit(1)
	}
	os.Exit(code)
}
