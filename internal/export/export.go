package export

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"avedit/internal/ffrun"
	"avedit/logger"
)

var resolutionMap = map[string][2]int{
	"1080p": {1920, 1080},
	"720p":  {1280, 720},
	"480p":  {854, 480},
}

// ParseResolution resolves a label like "720p" or a literal "1280x720".
func ParseResolution(label string) (int, int, bool) {
	l := strings.ToLower(strings.TrimSpace(label))
	if size, ok := resolutionMap[l]; ok {
		return size[0], size[1], true
	}
	if ws, hs, ok := strings.Cut(l, "x"); ok {
		w, errW := strconv.Atoi(ws)
		h, errH := strconv.Atoi(hs)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w, h, true
		}
	}
	return 0, 0, false
}

// ResolutionPath names a per-resolution export next to the master.
func ResolutionPath(master, label string) string {
	ext := filepath.Ext(master)
	return strings.TrimSuffix(master, ext) + "_" + label + ext
}

// PreviewPath names the short preview clip next to the master.
func PreviewPath(master string) string {
	ext := filepath.Ext(master)
	return strings.TrimSuffix(master, ext) + "_preview" + ext
}

// PosterPath names the AVIF poster next to the master.
func PosterPath(master string) string {
	return strings.TrimSuffix(master, filepath.Ext(master)) + "_poster.avif"
}

type Exporter struct {
	Runner  *ffrun.Runner
	Console *logger.Console
}

func New(runner *ffrun.Runner, console *logger.Console) *Exporter {
	return &Exporter{Runner: runner, Console: console}
}

// Resolutions writes one scaled export per requested label. Unknown
// labels are skipped with a warning.
func (e *Exporter) Resolutions(ctx context.Context, master string, labels []string) ([]string, error) {
	var outputs []string
	for _, label := range labels {
		w, h, ok := ParseResolution(label)
		if !ok {
			if e.Console != nil {
				e.Console.Warn("Skipping unknown resolution %q", label)
			}
			continue
		}

		out := ResolutionPath(master, label)
		stream := ffmpeg.Input(master).
			Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", w, h)}).
			Output(out, ffmpeg.KwArgs{
				"c:v":    "libx264",
				"preset": "medium",
				"crf":    20,
				"c:a":    "aac",
			})
		if err := e.Runner.Run(ctx, stream); err != nil {
			return outputs, fmt.Errorf("exporting %s: %w", label, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Preview exports the first 15 seconds of the master.
func (e *Exporter) Preview(ctx context.Context, master string, duration float64) (string, error) {
	length := 15.0
	if duration > 0 && duration < length {
		length = duration
	}

	out := PreviewPath(master)
	stream := ffmpeg.Input(master, ffmpeg.KwArgs{"t": length}).
		Output(out, ffmpeg.KwArgs{
			"c:v":    "libx264",
			"preset": "veryfast",
			"crf":    23,
			"c:a":    "aac",
		})
	if err := e.Runner.Run(ctx, stream); err != nil {
		return "", fmt.Errorf("exporting preview: %w", err)
	}
	return out, nil
}
