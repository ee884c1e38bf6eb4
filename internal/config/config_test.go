package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/internal/config"
)

func makeInputDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func baseOptions(t *testing.T, input string) config.Options {
	t.Helper()
	return config.Options{
		InputDir:     input,
		OutputDir:    filepath.Join(t.TempDir(), "out"),
		WhisperModel: "small",
		MaxWorkers:   1,
	}
}

func TestLoadDefaults(t *testing.T) {
	input := makeInputDir(t, "b.mp4", "a.mov", "notes.txt")

	cfg, err := config.Load(baseOptions(t, input))
	require.NoError(t, err)

	require.Len(t, cfg.Videos, 2)
	assert.Equal(t, filepath.Join(input, "a.mov"), cfg.Videos[0].File)
	assert.Equal(t, filepath.Join(input, "b.mp4"), cfg.Videos[1].File)

	assert.Equal(t, "Arial", cfg.Captions.Font)
	assert.Equal(t, 36, cfg.Captions.FontSize)
	assert.Equal(t, "crossfade", cfg.Transitions.Default)
	assert.Equal(t, []string{"1080p", "720p"}, cfg.Export.Resolutions)
	assert.Equal(t, 2.0, cfg.HighlightMinSceneLen)
	assert.Equal(t, 12.0, cfg.HighlightMotionThreshold)
	assert.Equal(t, 5, cfg.HighlightTopK)
	assert.Equal(t, -18.0, cfg.MusicGainDB)
	assert.True(t, cfg.LogJSON)
	assert.DirExists(t, cfg.OutputDir)
}

func TestLoadMissingMetadataFileUsesDefaults(t *testing.T) {
	input := makeInputDir(t, "a.mp4")

	opts := baseOptions(t, input)
	opts.MetadataPath = filepath.Join(t.TempDir(), "nope.yaml")

	cfg, err := config.Load(opts)
	require.NoError(t, err)
	assert.Len(t, cfg.Videos, 1)
	assert.Equal(t, "white", cfg.Captions.Color)
}

func TestLoadYAMLSidecar(t *testing.T) {
	input := makeInputDir(t)
	meta := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(meta, []byte(`
videos:
  - file: clip_a.mp4
    trims:
      - start: 1.5
        end: 9.0
  - file: clip_b.mp4
style: vlog
captions:
  fontsize: 48
transitions:
  duration: 1.0
highlight:
  top_k: 3
audio:
  music_gain_db: -12
`), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta

	cfg, err := config.Load(opts)
	require.NoError(t, err)

	require.Len(t, cfg.Videos, 2)
	assert.Equal(t, "clip_a.mp4", cfg.Videos[0].File)
	require.Len(t, cfg.Videos[0].Trims, 1)
	assert.Equal(t, 1.5, cfg.Videos[0].Trims[0].Start)

	// partial sections merge onto defaults
	assert.Equal(t, 48, cfg.Captions.FontSize)
	assert.Equal(t, "Arial", cfg.Captions.Font)
	assert.Equal(t, 1.0, cfg.Transitions.Duration)
	assert.Equal(t, "crossfade", cfg.Transitions.Default)

	assert.Equal(t, "vlog", cfg.Style.Name)
	assert.Equal(t, 0.015, cfg.Style.ExposureBoost)
	assert.Equal(t, 1.04, cfg.Style.ContrastGain)

	assert.Equal(t, 3, cfg.HighlightTopK)
	assert.Equal(t, 2.0, cfg.HighlightMinSceneLen)
	assert.Equal(t, -12.0, cfg.MusicGainDB)
}

func TestLoadStyleTable(t *testing.T) {
	input := makeInputDir(t, "a.mp4")
	meta := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(meta, []byte(`
style:
  stabilize: false
  denoise_video: true
  contrast_gain: 1.2
`), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta

	cfg, err := config.Load(opts)
	require.NoError(t, err)

	assert.False(t, cfg.Style.Stabilize)
	assert.True(t, cfg.Style.DenoiseVideo)
	assert.Equal(t, 1.2, cfg.Style.ContrastGain)
	assert.Equal(t, 0.01, cfg.Style.ExposureBoost)
}

func TestLoadCLIStyleWinsOverSidecar(t *testing.T) {
	input := makeInputDir(t, "a.mp4")
	meta := filepath.Join(t.TempDir(), "metadata.yaml")
	require.NoError(t, os.WriteFile(meta, []byte("style: vlog\n"), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta
	opts.Style = "cinematic"

	cfg, err := config.Load(opts)
	require.NoError(t, err)
	assert.Equal(t, "cinematic", cfg.Style.Name)
	assert.Equal(t, 0.02, cfg.Style.ExposureBoost)
	assert.Equal(t, 1.08, cfg.Style.ContrastGain)
}

func TestLoadJSONSidecar(t *testing.T) {
	input := makeInputDir(t)
	meta := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, os.WriteFile(meta, []byte(`{
  "videos": [{"file": "clip.mp4"}],
  "captions": {"color": "yellow"}
}`), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta

	cfg, err := config.Load(opts)
	require.NoError(t, err)
	require.Len(t, cfg.Videos, 1)
	assert.Equal(t, "yellow", cfg.Captions.Color)
	assert.Equal(t, "black", cfg.Captions.StrokeColor)
}

func TestLoadTOMLSidecar(t *testing.T) {
	input := makeInputDir(t)
	meta := filepath.Join(t.TempDir(), "metadata.toml")
	require.NoError(t, os.WriteFile(meta, []byte(`
[[videos]]
file = "clip.mp4"

[overlay]
title = "Summer Trip"
`), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta

	cfg, err := config.Load(opts)
	require.NoError(t, err)
	require.Len(t, cfg.Videos, 1)
	assert.Equal(t, "Summer Trip", cfg.Overlay.Title)
	assert.Equal(t, "bottom-right", cfg.Overlay.WatermarkPosition)
}

func TestLoadUnsupportedMetadataFormat(t *testing.T) {
	input := makeInputDir(t)
	meta := filepath.Join(t.TempDir(), "metadata.ini")
	require.NoError(t, os.WriteFile(meta, []byte("x"), 0o644))

	opts := baseOptions(t, input)
	opts.MetadataPath = meta

	_, err := config.Load(opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrUnsupportedMetadata)
}

func TestToolPathsFromEnvironment(t *testing.T) {
	t.Setenv("AVEDIT_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("AVEDIT_FFPROBE", "/opt/ffmpeg/bin/ffprobe")
	t.Setenv("AVEDIT_WHISPER", "")

	cfg, err := config.Load(baseOptions(t, makeInputDir(t, "a.mp4")))
	require.NoError(t, err)

	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.Tools.FFmpeg)
	assert.Equal(t, "/opt/ffmpeg/bin/ffprobe", cfg.Tools.FFprobe)
	assert.Equal(t, "whisper", cfg.Tools.Whisper)
}

func TestValidate(t *testing.T) {
	input := makeInputDir(t, "a.mp4")
	cfg, err := config.Load(baseOptions(t, input))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	cfg.MaxWorkers = 0
	assert.Error(t, cfg.Validate())
	cfg.MaxWorkers = 2

	cfg.HighlightTopK = 0
	assert.Error(t, cfg.Validate())
	cfg.HighlightTopK = 5

	cfg.Export.Resolutions = nil
	assert.Error(t, cfg.Validate())
}
