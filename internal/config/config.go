package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"avedit/internal/fsutil"
)

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
	".avi": true,
	".m4v": true,
}

type CaptionConfig struct {
	Font        string  `yaml:"font" json:"font" toml:"font"`
	FontSize    int     `yaml:"fontsize" json:"fontsize" toml:"fontsize"`
	Position    string  `yaml:"position" json:"position" toml:"position"`
	StrokeWidth int     `yaml:"stroke_width" json:"stroke_width" toml:"stroke_width"`
	StrokeColor string  `yaml:"stroke_color" json:"stroke_color" toml:"stroke_color"`
	Color       string  `yaml:"color" json:"color" toml:"color"`
}

type TransitionConfig struct {
	Default  string  `yaml:"default" json:"default" toml:"default"`
	Duration float64 `yaml:"duration" json:"duration" toml:"duration"`
}

type StyleConfig struct {
	Name          string
	Stabilize     bool
	ColorCorrect  bool
	DenoiseVideo  bool
	ExposureBoost float64
	ContrastGain  float64
}

type OverlayConfig struct {
	Title             string  `yaml:"title" json:"title" toml:"title"`
	Subtitle          string  `yaml:"subtitle" json:"subtitle" toml:"subtitle"`
	Watermark         string  `yaml:"watermark" json:"watermark" toml:"watermark"`
	WatermarkPosition string  `yaml:"watermark_position" json:"watermark_position" toml:"watermark_position"`
	TitleDuration     float64 `yaml:"title_duration" json:"title_duration" toml:"title_duration"`
}

type ExportConfig struct {
	Resolutions []string
	Preview     bool
}

type Trim struct {
	Start float64 `yaml:"start" json:"start" toml:"start"`
	End   float64 `yaml:"end" json:"end" toml:"end"`
}

type VideoItem struct {
	File  string `yaml:"file" json:"file" toml:"file"`
	Trims []Trim `yaml:"trims" json:"trims" toml:"trims"`
}

// ToolPaths holds the external binaries the pipeline shells out to.
// Resolved from the environment so a .env can point at pinned builds.
type ToolPaths struct {
	FFmpeg  string
	FFprobe string
	Whisper string
}

type AppConfig struct {
	InputDir     string
	OutputDir    string
	MusicDir     string
	MetadataPath string

	Videos []VideoItem

	Captions    CaptionConfig
	Transitions TransitionConfig
	Style       StyleConfig
	Overlay     OverlayConfig
	Export      ExportConfig

	WhisperModel string
	MaxWorkers   int
	LogJSON      bool

	HighlightMinSceneLen     float64
	HighlightMotionThreshold float64
	HighlightTopK            int
	MusicGainDB              float64
	DryRun                   bool

	Poster      bool
	CatalogPath string
	UploadURI   string

	Tools ToolPaths
}

func defaultCaptions() CaptionConfig {
	return CaptionConfig{
		Font:        "Arial",
		FontSize:    36,
		Position:    "bottom",
		StrokeWidth: 2,
		StrokeColor: "black",
		Color:       "white",
	}
}

func defaultTransitions() TransitionConfig {
	return TransitionConfig{Default: "crossfade", Duration: 0.5}
}

func defaultOverlay() OverlayConfig {
	return OverlayConfig{WatermarkPosition: "bottom-right", TitleDuration: 2.0}
}

func defaultStyle() StyleConfig {
	return StyleConfig{
		Stabilize:     true,
		ColorCorrect:  true,
		ExposureBoost: 0.01,
		ContrastGain:  1.05,
	}
}

// Options carries the CLI-level inputs into Load.
type Options struct {
	InputDir     string
	OutputDir    string
	MusicDir     string
	MetadataPath string
	Style        string
	Resolutions  []string
	Preview      bool
	WhisperModel string
	MaxWorkers   int
}

// Load builds the effective configuration from CLI options and the
// optional metadata sidecar: metadata fills videos and section overrides,
// CLI wins for the style name.
func Load(opts Options) (*AppConfig, error) {
	meta, err := loadMetadataFile(opts.MetadataPath)
	if err != nil {
		return nil, err
	}

	videos := meta.Videos
	if len(videos) == 0 {
		videos, err = discoverVideos(opts.InputDir)
		if err != nil {
			return nil, err
		}
	}

	styleName := opts.Style
	if styleName == "" {
		styleName = meta.styleString()
	}
	style := defaultStyle()
	applyStylePreset(&style, styleName)
	style.Name = styleName
	meta.applyStyleTable(&style)

	resolutions := opts.Resolutions
	if len(resolutions) == 0 {
		resolutions = []string{"1080p", "720p"}
	}

	cfg := &AppConfig{
		InputDir:     opts.InputDir,
		OutputDir:    opts.OutputDir,
		MusicDir:     opts.MusicDir,
		MetadataPath: opts.MetadataPath,
		Videos:       videos,
		Captions:     meta.Captions,
		Transitions:  meta.Transitions,
		Style:        style,
		Overlay:      meta.Overlay,
		Export:       ExportConfig{Resolutions: resolutions, Preview: opts.Preview},
		WhisperModel: opts.WhisperModel,
		MaxWorkers:   opts.MaxWorkers,
		LogJSON:      true,

		Tools: toolPathsFromEnv(),
	}

	meta.applyTuning(cfg)

	if err := fsutil.EnsureDir(cfg.OutputDir); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input directory is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.MaxWorkers < 1 {
		return fmt.Errorf("max workers must be at least 1")
	}
	if c.HighlightTopK < 1 {
		return fmt.Errorf("top-k must be at least 1")
	}
	if len(c.Export.Resolutions) == 0 {
		return fmt.Errorf("at least one output resolution is required")
	}
	return nil
}

func discoverVideos(inputDir string) ([]VideoItem, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var items []VideoItem
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if videoExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			items = append(items, VideoItem{File: filepath.Join(inputDir, e.Name())})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].File < items[j].File })
	return items, nil
}

func applyStylePreset(style *StyleConfig, name string) {
	switch strings.ToLower(name) {
	case "cinematic":
		style.ExposureBoost, style.ContrastGain = 0.02, 1.08
	case "vlog":
		style.ExposureBoost, style.ContrastGain = 0.015, 1.04
	case "reel", "instagram", "short":
		style.ExposureBoost, style.ContrastGain = 0.025, 1.10
	case "youtube":
		style.ExposureBoost, style.ContrastGain = 0.01, 1.05
	}
}

func toolPathsFromEnv() ToolPaths {
	return ToolPaths{
		FFmpeg:  envOr("AVEDIT_FFMPEG", "ffmpeg"),
		FFprobe: envOr("AVEDIT_FFPROBE", "ffprobe"),
		Whisper: envOr("AVEDIT_WHISPER", "whisper"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
