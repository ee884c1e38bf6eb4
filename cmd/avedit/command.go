package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"avedit/internal/config"
	"avedit/logger"
)

var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func parseArgs(console *logger.Console) (*config.AppConfig, slog.Level, error) {
	// A .env can pin AVEDIT_FFMPEG, AVEDIT_FFPROBE and AVEDIT_WHISPER.
	_ = godotenv.Load()

	var (
		input        = flag.String("input", "", "Directory of raw source videos (required)")
		output       = flag.String("output", "", "Directory for rendered exports (required)")
		music        = flag.String("music", "", "Directory of background music tracks")
		metadata     = flag.String("metadata", "", "Metadata sidecar file (yaml, json or toml)")
		style        = flag.String("style", "", "Editing style preset (cinematic, vlog, reel, youtube)")
		resolutions  = flag.String("resolutions", "1080p,720p", "Comma-separated export resolutions")
		preview      = flag.Bool("preview", false, "Also export a 15 second preview clip")
		whisperModel = flag.String("whisper-model", "small", "Whisper model for transcription")
		maxWorkers   = flag.Int("max-workers", 1, "Number of videos to edit concurrently")

		minSceneLen     = flag.Float64("min-scene-len", 2.0, "Minimum highlight scene length in seconds")
		motionThreshold = flag.Float64("motion-threshold", 12.0, "Motion score threshold for highlights")
		topK            = flag.Int("top-k", 5, "Maximum highlight segments to keep per video")
		musicGainDB     = flag.Float64("music-gain-db", -18.0, "Background music gain in dB")

		title             = flag.String("title", "", "Title card text")
		subtitle          = flag.String("subtitle", "", "Title card subtitle text")
		watermark         = flag.String("watermark", "", "Watermark image path")
		watermarkPosition = flag.String("watermark-position", "", "Watermark corner (top-left, top-right, bottom-left, bottom-right)")

		logLevel = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		logJSON  = flag.Bool("log-json", true, "Write a per-video JSON result log")
		dryRun   = flag.Bool("dry-run", false, "Analyze and plan the edit without writing outputs")

		catalogPath = flag.String("catalog", "", "SQLite catalog file to record runs in")
		uploadURI   = flag.String("upload", "", "Upload outputs to an s3://bucket/prefix destination")
		poster      = flag.Bool("poster", false, "Export an AVIF poster frame per video")

		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		versionInfo := fmt.Sprintf(
			"Version: %s\nBuild date: %s\nGit commit: %s",
			Version, BuildDate, GitCommit,
		)
		console.Box("avedit version information", versionInfo)
		os.Exit(0)
	}

	if *input == "" || *output == "" {
		return nil, 0, fmt.Errorf("both -input and -output are required")
	}

	cfg, err := config.Load(config.Options{
		InputDir:     *input,
		OutputDir:    *output,
		MusicDir:     *music,
		MetadataPath: *metadata,
		Style:        *style,
		Resolutions:  splitList(*resolutions),
		Preview:      *preview,
		WhisperModel: *whisperModel,
		MaxWorkers:   *maxWorkers,
	})
	if err != nil {
		return nil, 0, err
	}

	// Tuning flags beat the sidecar only when given explicitly, so a
	// metadata file keeps its values under default CLI invocations.
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["min-scene-len"] {
		cfg.HighlightMinSceneLen = *minSceneLen
	}
	if set["motion-threshold"] {
		cfg.HighlightMotionThreshold = *motionThreshold
	}
	if set["top-k"] {
		cfg.HighlightTopK = *topK
	}
	if set["music-gain-db"] {
		cfg.MusicGainDB = *musicGainDB
	}
	if set["title"] {
		cfg.Overlay.Title = *title
	}
	if set["subtitle"] {
		cfg.Overlay.Subtitle = *subtitle
	}
	if set["watermark"] {
		cfg.Overlay.Watermark = *watermark
	}
	if set["watermark-position"] {
		cfg.Overlay.WatermarkPosition = *watermarkPosition
	}

	cfg.LogJSON = *logJSON
	cfg.DryRun = *dryRun
	cfg.CatalogPath = *catalogPath
	cfg.UploadURI = *uploadURI
	cfg.Poster = *poster

	if err := cfg.Validate(); err != nil {
		return nil, 0, err
	}
	return cfg, logger.ParseLevel(*logLevel), nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
