package audio_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/internal/audio"
)

func makeMusicDir(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	return dir
}

func TestChooseBackgroundTrackPicksShortest(t *testing.T) {
	dir := makeMusicDir(t, "long.mp3", "short.wav", "mid.flac", "cover.jpg")

	durations := map[string]float64{
		"long.mp3":  240,
		"short.wav": 95,
		"mid.flac":  180,
	}
	probe := func(path string) float64 { return durations[filepath.Base(path)] }

	got := audio.ChooseBackgroundTrack(dir, probe)
	assert.Equal(t, filepath.Join(dir, "short.wav"), got)
}

func TestChooseBackgroundTrackNoCandidates(t *testing.T) {
	dir := makeMusicDir(t, "cover.jpg", "readme.txt")
	assert.Empty(t, audio.ChooseBackgroundTrack(dir, func(string) float64 { return 1 }))
}

func TestChooseBackgroundTrackMissingDir(t *testing.T) {
	assert.Empty(t, audio.ChooseBackgroundTrack(filepath.Join(t.TempDir(), "nope"), nil))
	assert.Empty(t, audio.ChooseBackgroundTrack("", nil))
}

func TestVolumeArg(t *testing.T) {
	assert.Equal(t, "-18dB", audio.VolumeArg(-18))
	assert.Equal(t, "-12.5dB", audio.VolumeArg(-12.5))
	assert.Equal(t, "0dB", audio.VolumeArg(0))
}
