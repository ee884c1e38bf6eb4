package launcher_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/internal/launcher"
)

func TestArgsDefaults(t *testing.T) {
	cmd := launcher.NewCommand()
	assert.Equal(t, []string{
		"--input", "./raw_videos",
		"--output", "./exports",
		"--music", "./music",
		"--metadata", "./metadata.yaml",
		"--style", "cinematic",
		"--resolutions", "1080p,720p",
		"--preview",
		"--max-workers", "2",
	}, cmd.Args())
}

func TestArgsVerbatimValues(t *testing.T) {
	cmd := launcher.NewCommand()
	cmd.InputDir = "/tmp/in dir"
	cmd.OutputDir = "relative/out"
	cmd.MusicDir = ""
	cmd.MetadataPath = "meta.toml"
	cmd.Style = "no-such-style"

	args := cmd.Args()
	assert.Equal(t, "/tmp/in dir", args[1])
	assert.Equal(t, "relative/out", args[3])
	assert.Equal(t, "", args[5])
	assert.Equal(t, "meta.toml", args[7])
	assert.Equal(t, "no-such-style", args[9])
}

func TestArgsFixedTail(t *testing.T) {
	cmd := launcher.NewCommand()
	cmd.Style = "vlog"
	cmd.OutputDir = "/elsewhere"

	args := cmd.Args()
	assert.Equal(t,
		[]string{"--resolutions", "1080p,720p", "--preview", "--max-workers", "2"},
		args[len(args)-5:])
}

func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "editor.sh")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunPropagatesExitStatus(t *testing.T) {
	cmd := launcher.NewCommand()
	cmd.Editor = writeStub(t, "#!/bin/sh\nexit 3\n")

	code, err := cmd.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRunSuccess(t *testing.T) {
	cmd := launcher.NewCommand()
	cmd.Editor = writeStub(t, "#!/bin/sh\nexit 0\n")

	code, err := cmd.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRunPassesArgumentVector(t *testing.T) {
	captured := filepath.Join(t.TempDir(), "argv.txt")
	cmd := launcher.NewCommand()
	cmd.InputDir = "/data/in"
	cmd.Style = "reel"
	cmd.Editor = writeStub(t, "#!/bin/sh\necho \"$@\" > "+captured+"\n")

	code, err := cmd.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, code)

	data, err := os.ReadFile(captured)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(cmd.Args(), " "), strings.TrimSpace(string(data)))
}

func TestRunMissingEditor(t *testing.T) {
	cmd := launcher.NewCommand()
	cmd.Editor = filepath.Join(t.TempDir(), "does-not-exist")

	code, err := cmd.Run(context.Background())
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}
