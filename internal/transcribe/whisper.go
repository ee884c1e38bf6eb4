package transcribe

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"avedit/logger"
)

// Transcriber shells out to the whisper CLI and reads back the SRT it
// writes. Transcription is best-effort: callers treat an error as "no
// captions", never as a pipeline failure.
type Transcriber struct {
	Bin     string
	Model   string
	Console *logger.Console
}

func New(bin, model string, console *logger.Console) *Transcriber {
	if bin == "" {
		bin = "whisper"
	}
	if model == "" {
		model = "small"
	}
	return &Transcriber{Bin: bin, Model: model, Console: console}
}

func (t *Transcriber) Transcribe(ctx context.Context, path string) ([]Entry, error) {
	outDir, err := os.MkdirTemp("", "avedit-whisper-")
	if err != nil {
		return nil, fmt.Errorf("creating whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := []string{
		path,
		"--model", t.Model,
		"--task", "transcribe",
		"--output_dir", outDir,
		"--output_format", "srt",
	}
	if t.Console != nil {
		t.Console.Debug("%s %s", t.Bin, strings.Join(args, " "))
	}

	cmd := exec.CommandContext(ctx, t.Bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("whisper: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	srtPath := filepath.Join(outDir, stem+".srt")
	data, err := os.ReadFile(srtPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading whisper output: %w", err)
	}
	return ParseSRT(string(data)), nil
}
