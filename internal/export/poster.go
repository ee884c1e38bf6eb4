package export

import (
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/gen2brain/avif"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Poster grabs a frame a quarter of the way in and encodes it as an AVIF
// poster image for the export set.
func (e *Exporter) Poster(ctx context.Context, master string, duration float64) (string, error) {
	at := duration * 0.25
	if at < 0 {
		at = 0
	}

	dir, err := os.MkdirTemp("", "avedit-poster-")
	if err != nil {
		return "", fmt.Errorf("creating poster dir: %w", err)
	}
	defer os.RemoveAll(dir)

	framePath := filepath.Join(dir, "frame.png")
	grab := ffmpeg.Input(master, ffmpeg.KwArgs{"ss": at}).
		Output(framePath, ffmpeg.KwArgs{"frames:v": 1})
	if err := e.Runner.Run(ctx, grab); err != nil {
		return "", fmt.Errorf("grabbing poster frame: %w", err)
	}

	f, err := os.Open(framePath)
	if err != nil {
		return "", fmt.Errorf("opening poster frame: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decoding poster frame: %w", err)
	}

	out := PosterPath(master)
	dst, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("creating poster: %w", err)
	}
	defer dst.Close()

	opts := avif.Options{
		Quality:           70,
		QualityAlpha:      70,
		Speed:             6,
		ChromaSubsampling: image.YCbCrSubsampleRatio420,
	}
	if err := avif.Encode(dst, img, opts); err != nil {
		return "", fmt.Errorf("encoding poster: %w", err)
	}
	return out, nil
}
