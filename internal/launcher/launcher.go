package launcher

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

const (
	DefaultEditor   = "ai_video_editor"
	DefaultInput    = "./raw_videos"
	DefaultOutput   = "./exports"
	DefaultMusic    = "./music"
	DefaultMetadata = "./metadata.yaml"
	DefaultStyle    = "cinematic"
)

// Command describes one invocation of the editor binary. The five
// user-facing parameters are passed through verbatim; the remaining
// flags are fixed for every run.
type Command struct {
	Editor string

	InputDir     string
	OutputDir    string
	MusicDir     string
	MetadataPath string
	Style        string
}

// NewCommand returns a Command with every parameter at its default.
func NewCommand() Command {
	return Command{
		Editor:       DefaultEditor,
		InputDir:     DefaultInput,
		OutputDir:    DefaultOutput,
		MusicDir:     DefaultMusic,
		MetadataPath: DefaultMetadata,
		Style:        DefaultStyle,
	}
}

// Args builds the editor's argument vector. Parameter values are not
// validated or rewritten here; the editor owns that.
func (c Command) Args() []string {
	return []string{
		"--input", c.InputDir,
		"--output", c.OutputDir,
		"--music", c.MusicDir,
		"--metadata", c.MetadataPath,
		"--style", c.Style,
		"--resolutions", "1080p,720p",
		"--preview",
		"--max-workers", "2",
	}
}

// Run executes the editor with inherited stdio and returns its exit
// status. A status of -1 with a non-nil error means the editor could
// not be started at all.
func (c Command) Run(ctx context.Context) (int, error) {
	editor := c.Editor
	if editor == "" {
		editor = DefaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, c.Args()...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
