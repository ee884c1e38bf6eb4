package ffrun

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"avedit/logger"
)

// Runner executes compiled ffmpeg-go streams through a configurable binary,
// with context cancellation and captured diagnostics.
type Runner struct {
	Bin     string
	Console *logger.Console
}

func New(bin string, console *logger.Console) *Runner {
	return &Runner{Bin: bin, Console: console}
}

func (r *Runner) Run(ctx context.Context, stream *ffmpeg.Stream) error {
	compiled := stream.OverWriteOutput().Compile()
	args := compiled.Args[1:]

	bin := r.Bin
	if bin == "" {
		bin = "ffmpeg"
	}
	if r.Console != nil {
		r.Console.Debug("%s %s", bin, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.String(), 500))
	}
	return nil
}

// tail keeps the last n bytes of ffmpeg stderr, which is where the actual
// failure reason lives.
func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "…" + s[len(s)-n:]
}
