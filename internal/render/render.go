package render

import (
	"context"
	"fmt"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"avedit/internal/captions"
	"avedit/internal/config"
	"avedit/internal/ffrun"
	"avedit/internal/overlay"
)

// SegmentFile is an already-cut piece of the source on disk.
type SegmentFile struct {
	Path     string
	Duration float64
}

type Renderer struct {
	Runner *ffrun.Runner
}

func New(runner *ffrun.Runner) *Renderer {
	return &Renderer{Runner: runner}
}

// CutSegment re-encodes [start,end) of src as a uniform video-only clip so
// later stitching never fights codec or timestamp mismatches.
func (r *Renderer) CutSegment(ctx context.Context, src, out string, start, end float64) error {
	stream := ffmpeg.Input(src, ffmpeg.KwArgs{"ss": start, "t": end - start}).
		Output(out, ffmpeg.KwArgs{
			"c:v":     "libx264",
			"preset":  "veryfast",
			"crf":     20,
			"pix_fmt": "yuv420p",
			"an":      "",
		})
	if err := r.Runner.Run(ctx, stream); err != nil {
		return fmt.Errorf("cutting segment %.2f-%.2f: %w", start, end, err)
	}
	return nil
}

// Stitch joins cut segments. Crossfade kinds run an xfade chain with
// cumulative offsets; anything else concatenates plainly, which is also
// the single-segment fast path.
func (r *Renderer) Stitch(ctx context.Context, segments []SegmentFile, out, kind string, fade float64) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments to stitch")
	}

	if len(segments) == 1 {
		stream := ffmpeg.Input(segments[0].Path).Output(out, ffmpeg.KwArgs{"c": "copy"})
		if err := r.Runner.Run(ctx, stream); err != nil {
			return fmt.Errorf("stitching single segment: %w", err)
		}
		return nil
	}

	var stream *ffmpeg.Stream
	switch kind {
	case "crossfade", "fade":
		stream = crossfadeChain(segments, fade)
	default:
		stream = concatChain(segments)
	}

	output := stream.Output(out, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "veryfast",
		"crf":     20,
		"pix_fmt": "yuv420p",
		"an":      "",
	})
	if err := r.Runner.Run(ctx, output); err != nil {
		return fmt.Errorf("stitching %d segments: %w", len(segments), err)
	}
	return nil
}

func crossfadeChain(segments []SegmentFile, fade float64) *ffmpeg.Stream {
	if fade <= 0 {
		fade = 0.5
	}

	current := ffmpeg.Input(segments[0].Path)
	total := segments[0].Duration
	for _, seg := range segments[1:] {
		offset := total - fade
		if offset < 0 {
			offset = 0
		}
		next := ffmpeg.Input(seg.Path)
		current = ffmpeg.Filter([]*ffmpeg.Stream{current, next}, "xfade", nil, ffmpeg.KwArgs{
			"transition": "fade",
			"duration":   fade,
			"offset":     offset,
		})
		total += seg.Duration - fade
	}
	return current
}

func concatChain(segments []SegmentFile) *ffmpeg.Stream {
	streams := make([]*ffmpeg.Stream, len(segments))
	for i, seg := range segments {
		streams[i] = ffmpeg.Input(seg.Path)
	}
	return ffmpeg.Filter(streams, "concat", nil, ffmpeg.KwArgs{"n": len(segments), "v": 1, "a": 0})
}

// Prepend places the title card clip before the stitched body.
func (r *Renderer) Prepend(ctx context.Context, head, body, out string) error {
	streams := []*ffmpeg.Stream{ffmpeg.Input(head), ffmpeg.Input(body)}
	stream := ffmpeg.Filter(streams, "concat", nil, ffmpeg.KwArgs{"n": 2, "v": 1, "a": 0}).
		Output(out, ffmpeg.KwArgs{
			"c:v":     "libx264",
			"preset":  "veryfast",
			"crf":     20,
			"pix_fmt": "yuv420p",
			"an":      "",
		})
	if err := r.Runner.Run(ctx, stream); err != nil {
		return fmt.Errorf("prepending title card: %w", err)
	}
	return nil
}

// FinishOptions drives the single enhancement pass over the stitched clip.
type FinishOptions struct {
	Style        config.StyleConfig
	SubtitlePath string
	Captions     config.CaptionConfig
	Watermark    string
	FrameWidth   int
	Overlay      config.OverlayConfig
}

// Finish applies colour correction, stabilisation, burned captions and the
// watermark in one encode.
func (r *Renderer) Finish(ctx context.Context, src, out string, opts FinishOptions) error {
	v := ffmpeg.Input(src)

	if opts.Style.ColorCorrect {
		v = v.Filter("eq", nil, ffmpeg.KwArgs{
			"contrast":   opts.Style.ContrastGain,
			"brightness": opts.Style.ExposureBoost,
		})
	}
	if opts.Style.DenoiseVideo {
		v = v.Filter("hqdn3d", nil)
	}
	if opts.Style.Stabilize {
		v = v.Filter("deshake", nil)
	}
	if opts.SubtitlePath != "" {
		v = v.Filter("subtitles", ffmpeg.Args{captions.FilterArg(opts.SubtitlePath, opts.Captions)})
	}
	if opts.Watermark != "" {
		v = overlay.ApplyWatermark(v, opts.Watermark, opts.FrameWidth, opts.Overlay)
	}

	stream := v.Output(out, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "medium",
		"crf":     18,
		"pix_fmt": "yuv420p",
		"an":      "",
	})
	if err := r.Runner.Run(ctx, stream); err != nil {
		return fmt.Errorf("finishing pass: %w", err)
	}
	return nil
}

// Mux marries the finished video with the processed audio track.
func (r *Renderer) Mux(ctx context.Context, video, audioPath, out string) error {
	v := ffmpeg.Input(video)
	a := ffmpeg.Input(audioPath)
	stream := ffmpeg.Output([]*ffmpeg.Stream{v.Video(), a.Audio()}, out, ffmpeg.KwArgs{
		"c:v":      "copy",
		"c:a":      "aac",
		"b:a":      "192k",
		"shortest": "",
	})
	if err := r.Runner.Run(ctx, stream); err != nil {
		return fmt.Errorf("muxing audio: %w", err)
	}
	return nil
}
