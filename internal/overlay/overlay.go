package overlay

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	_ "golang.org/x/image/webp"

	"avedit/internal/config"
	"avedit/internal/ffrun"
)

const (
	watermarkMargin     = 20
	watermarkWidthRatio = 0.15
	watermarkOpacity    = 0.7
)

// Position returns overlay filter x/y expressions for a named corner.
// Unknown names fall back to bottom-right.
func Position(name string) (string, string) {
	m := fmt.Sprintf("%d", watermarkMargin)
	switch name {
	case "bottom-left":
		return m, "main_h-overlay_h-" + m
	case "top-right":
		return "main_w-overlay_w-" + m, m
	case "top-left":
		return m, m
	default: // bottom-right
		return "main_w-overlay_w-" + m, "main_h-overlay_h-" + m
	}
}

// InspectImage decodes just the header of the watermark image so bad
// files are rejected before ffmpeg sees them. Decoders registered above
// cover png, jpeg and webp.
func InspectImage(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening watermark: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding watermark %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

// ApplyWatermark composites the watermark image over the video stream,
// scaled to 15% of the frame width at 70% opacity.
func ApplyWatermark(video *ffmpeg.Stream, imagePath string, frameWidth int, cfg config.OverlayConfig) *ffmpeg.Stream {
	width := int(float64(frameWidth) * watermarkWidthRatio)
	if width < 1 {
		width = 1
	}

	mark := ffmpeg.Input(imagePath).
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:-1", width)}).
		Filter("format", ffmpeg.Args{"rgba"}).
		Filter("colorchannelmixer", nil, ffmpeg.KwArgs{"aa": watermarkOpacity})

	x, y := Position(cfg.WatermarkPosition)
	return ffmpeg.Filter([]*ffmpeg.Stream{video, mark}, "overlay", ffmpeg.Args{x + ":" + y})
}

// TitleCard renders the intro card as its own clip: a black frame at the
// video's geometry with the title (and optional subtitle) drawn centred.
func TitleCard(ctx context.Context, runner *ffrun.Runner, outPath string, width, height int, fps float64, cfg config.OverlayConfig) error {
	if fps <= 0 {
		fps = 30
	}
	source := fmt.Sprintf("color=c=black:s=%dx%d:r=%g:d=%g", width, height, fps, cfg.TitleDuration)

	stream := ffmpeg.Input(source, ffmpeg.KwArgs{"f": "lavfi"}).
		Filter("drawtext", nil, ffmpeg.KwArgs{
			"text":      EscapeDrawtext(cfg.Title),
			"fontsize":  64,
			"fontcolor": "white",
			"x":         "(w-text_w)/2",
			"y":         "(h-text_h)/2-40",
		})
	if cfg.Subtitle != "" {
		stream = stream.Filter("drawtext", nil, ffmpeg.KwArgs{
			"text":      EscapeDrawtext(cfg.Subtitle),
			"fontsize":  36,
			"fontcolor": "white",
			"x":         "(w-text_w)/2",
			"y":         "(h-text_h)/2+40",
		})
	}

	out := stream.Output(outPath, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "veryfast",
		"pix_fmt": "yuv420p",
		"an":      "",
	})
	if err := runner.Run(ctx, out); err != nil {
		return fmt.Errorf("rendering title card: %w", err)
	}
	return nil
}

// EscapeDrawtext protects drawtext metacharacters in user-supplied text.
func EscapeDrawtext(s string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(s)
}
