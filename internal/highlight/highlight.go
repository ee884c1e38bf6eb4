package highlight

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"avedit/internal/ffrun"
)

// Segment is a scored candidate highlight inside a source video.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score"`
}

type Options struct {
	MinSceneLen     float64
	MotionThreshold float64
	SceneThreshold  float64
	SampleFPS       float64
}

func (o Options) withDefaults() Options {
	if o.SceneThreshold <= 0 {
		o.SceneThreshold = 0.4
	}
	if o.SampleFPS <= 0 {
		o.SampleFPS = 5
	}
	if o.MinSceneLen <= 0 {
		o.MinSceneLen = 2.0
	}
	return o
}

// Detect finds scene segments and scores them by motion. The analysis runs
// entirely inside ffmpeg: scene-change selection and signalstats luma
// difference are printed to report files which we parse afterwards.
func Detect(ctx context.Context, runner *ffrun.Runner, path string, duration float64, opts Options) ([]Segment, error) {
	opts = opts.withDefaults()

	dir, err := os.MkdirTemp("", "avedit-analysis-")
	if err != nil {
		return nil, fmt.Errorf("creating analysis dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cutsPath := filepath.Join(dir, "cuts.txt")
	motionPath := filepath.Join(dir, "motion.txt")

	cutsPass := ffmpeg.Input(path).
		Filter("select", ffmpeg.Args{fmt.Sprintf("gt(scene\\,%g)", opts.SceneThreshold)}).
		Filter("metadata", ffmpeg.Args{"print"}, ffmpeg.KwArgs{"file": cutsPath}).
		Output("pipe:", ffmpeg.KwArgs{"f": "null"})
	if err := runner.Run(ctx, cutsPass); err != nil {
		return nil, fmt.Errorf("scene analysis: %w", err)
	}

	motionPass := ffmpeg.Input(path).
		Filter("fps", ffmpeg.Args{fmt.Sprintf("%g", opts.SampleFPS)}).
		Filter("signalstats", nil).
		Filter("metadata", ffmpeg.Args{"print"}, ffmpeg.KwArgs{"key": "lavfi.signalstats.YDIF", "file": motionPath}).
		Output("pipe:", ffmpeg.KwArgs{"f": "null"})
	if err := runner.Run(ctx, motionPass); err != nil {
		return nil, fmt.Errorf("motion analysis: %w", err)
	}

	cuts, err := readReportTimes(cutsPath)
	if err != nil {
		return nil, err
	}
	motion, err := readReportValues(motionPath, "lavfi.signalstats.YDIF")
	if err != nil {
		return nil, err
	}

	return BuildSegments(cuts, motion, duration, opts), nil
}

// BuildSegments turns cut timestamps and sampled motion scores into scored
// segments: short scenes are dropped, low-motion scenes are filtered by a
// scaled threshold, and the rest are sorted best-first.
func BuildSegments(cuts []float64, motion []TimedValue, duration float64, opts Options) []Segment {
	opts = opts.withDefaults()

	boundaries := make([]float64, 0, len(cuts)+2)
	boundaries = append(boundaries, 0)
	for _, c := range cuts {
		if c > 0 && c < duration {
			boundaries = append(boundaries, c)
		}
	}
	boundaries = append(boundaries, duration)
	sort.Float64s(boundaries)

	var segments []Segment
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		if end-start < opts.MinSceneLen {
			continue
		}
		score := meanInWindow(motion, start, end)
		if score < opts.MotionThreshold*0.1 {
			continue
		}
		segments = append(segments, Segment{Start: start, End: end, Score: score})
	}

	sort.SliceStable(segments, func(i, j int) bool { return segments[i].Score > segments[j].Score })
	return segments
}

func meanInWindow(values []TimedValue, start, end float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if v.Time >= start && v.Time < end {
			sum += v.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// TimedValue is one metadata report entry: a frame timestamp and the
// metric printed for it.
type TimedValue struct {
	Time  float64
	Value float64
}

func readReportTimes(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading analysis report: %w", err)
	}
	defer f.Close()

	values, err := ParseReport(f, "")
	if err != nil {
		return nil, err
	}
	times := make([]float64, len(values))
	for i, v := range values {
		times[i] = v.Time
	}
	return times, nil
}

func readReportValues(path, key string) ([]TimedValue, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading analysis report: %w", err)
	}
	defer f.Close()
	return ParseReport(f, key)
}

// ParseReport scans ffmpeg metadata=print output. Lines look like
//
//	frame:12   pts:12012   pts_time:5.755750
//	lavfi.signalstats.YDIF=2.039
//
// When key is empty every frame line yields an entry with value 0, which is
// how scene-cut timestamps are collected.
func ParseReport(r io.Reader, key string) ([]TimedValue, error) {
	var out []TimedValue
	var current float64
	haveFrame := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "frame:") {
			t, ok := parseFrameTime(line)
			if !ok {
				continue
			}
			current = t
			haveFrame = true
			if key == "" {
				out = append(out, TimedValue{Time: t})
			}
			continue
		}
		if key == "" || !haveFrame {
			continue
		}
		if name, value, ok := strings.Cut(line, "="); ok && name == key {
			v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				continue
			}
			out = append(out, TimedValue{Time: current, Value: v})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning analysis report: %w", err)
	}
	return out, nil
}

func parseFrameTime(line string) (float64, bool) {
	for _, field := range strings.Fields(line) {
		if rest, ok := strings.CutPrefix(field, "pts_time:"); ok {
			t, err := strconv.ParseFloat(rest, 64)
			if err != nil {
				return 0, false
			}
			return t, true
		}
	}
	return 0, false
}
