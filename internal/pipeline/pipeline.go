package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"avedit/internal/audio"
	"avedit/internal/captions"
	"avedit/internal/catalog"
	"avedit/internal/config"
	"avedit/internal/export"
	"avedit/internal/ffrun"
	"avedit/internal/fsutil"
	"avedit/internal/highlight"
	"avedit/internal/media"
	"avedit/internal/overlay"
	"avedit/internal/render"
	"avedit/internal/transcribe"
	"avedit/internal/upload"
	"avedit/logger"
)

const segmentPad = 0.25

// Result is the per-video outcome, serialized next to the outputs when
// JSON logging is on.
type Result struct {
	File       string              `json:"file"`
	Probe      media.Info          `json:"probe"`
	Highlights []highlight.Segment `json:"highlights"`
	Outputs    []string            `json:"outputs"`
	DryRun     bool                `json:"dry_run"`
	Error      string              `json:"error,omitempty"`
}

// Pipeline runs the edit flow over a batch of videos with a worker pool.
// The process-spawning stages are function fields so tests can stub them.
type Pipeline struct {
	cfg      *config.AppConfig
	console  *logger.Console
	runner   *ffrun.Runner
	renderer *render.Renderer
	exporter *export.Exporter

	probe      func(ctx context.Context, path string) media.Info
	detect     func(ctx context.Context, path string, duration float64) ([]highlight.Segment, error)
	transcribe func(ctx context.Context, path string) ([]transcribe.Entry, error)

	store *catalog.Store
}

func New(cfg *config.AppConfig, console *logger.Console) (*Pipeline, error) {
	runner := ffrun.New(cfg.Tools.FFmpeg, console)
	prober := media.NewProber(cfg.Tools.FFprobe)
	p := &Pipeline{
		cfg:      cfg,
		console:  console,
		runner:   runner,
		renderer: render.New(runner),
		exporter: export.New(runner, console),
		probe:    prober.Probe,
	}

	p.detect = func(ctx context.Context, path string, duration float64) ([]highlight.Segment, error) {
		return highlight.Detect(ctx, runner, path, duration, highlight.Options{
			MinSceneLen:     cfg.HighlightMinSceneLen,
			MotionThreshold: cfg.HighlightMotionThreshold,
		})
	}

	tr := transcribe.New(cfg.Tools.Whisper, cfg.WhisperModel, console)
	p.transcribe = tr.Transcribe

	if cfg.CatalogPath != "" {
		store, err := catalog.Open(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		p.store = store
	}
	return p, nil
}

// Run edits every configured video and returns the per-video results.
// A non-nil error means at least one video failed; successful results
// are still returned alongside it.
func (p *Pipeline) Run(ctx context.Context) ([]Result, error) {
	videos := p.cfg.Videos
	if len(videos) == 0 {
		p.console.Warn("No videos to process in %s", p.cfg.InputDir)
		return nil, nil
	}

	var dest upload.Destination
	var uploader *upload.Client
	if p.cfg.UploadURI != "" {
		var err error
		dest, err = upload.ParseDestination(p.cfg.UploadURI)
		if err != nil {
			return nil, err
		}
		uploader, err = upload.NewClient(ctx)
		if err != nil {
			return nil, err
		}
	}

	started := time.Now()
	stats := &batchStats{TotalVideos: len(videos)}
	p.console.Info("Processing %d video(s) with %d worker(s)", len(videos), p.cfg.MaxWorkers)
	bar := p.console.NewProgressBar(int64(len(videos)), "Editing")

	workers := p.cfg.MaxWorkers
	if workers > len(videos) {
		workers = len(videos)
	}

	jobs := make(chan config.VideoItem, len(videos))
	results := make([]Result, 0, len(videos))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				res := p.processVideo(ctx, item)
				if res.Error != "" {
					stats.recordFailure()
				} else {
					stats.recordSuccess(len(res.Outputs), outputBytes(res.Outputs))
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				bar.Increment(1)
			}
		}()
	}

	for _, item := range videos {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	bar.Complete()

	sort.Slice(results, func(i, j int) bool { return results[i].File < results[j].File })
	stats.summarize(p.console, time.Since(started))

	if p.store != nil {
		if err := p.store.Record(p.runRecord(started, results)); err != nil {
			p.console.Warn("Catalog write failed: %v", err)
		}
	}
	if uploader != nil && !p.cfg.DryRun {
		p.uploadOutputs(ctx, uploader, dest, results)
	}

	if stats.Failed > 0 {
		return results, fmt.Errorf("%d of %d videos failed", stats.Failed, len(videos))
	}
	return results, nil
}

func (p *Pipeline) processVideo(ctx context.Context, item config.VideoItem) Result {
	path := p.resolvePath(item.File)
	res := Result{File: path, DryRun: p.cfg.DryRun}

	if _, err := os.Stat(path); err != nil {
		p.console.Warn("Skipping %s: file not found", item.File)
		res.Error = "file not found"
		return res
	}

	info := p.probe(ctx, path)
	res.Probe = info
	if info.Duration <= 0 {
		res.Error = "probe failed"
		p.console.Error("Could not probe %s", path)
		return res
	}
	p.console.Log("%s", info.String())

	segments := p.selectSegments(ctx, path, item, info.Duration)
	res.Highlights = segments

	masterName := fsutil.TimestampedName(fsutil.SafeStem(path)) + ".mp4"
	masterPath := filepath.Join(p.cfg.OutputDir, masterName)

	if p.cfg.DryRun {
		res.Outputs = p.plannedOutputs(masterPath)
		p.console.Info("[dry-run] %s -> %d segment(s), %d output(s)",
			filepath.Base(path), len(segments), len(res.Outputs))
		p.writeResultLog(path, &res)
		return res
	}

	outputs, err := p.edit(ctx, path, info, segments, masterPath)
	if err != nil {
		res.Error = err.Error()
		p.console.Error("Failed %s: %v", filepath.Base(path), err)
		p.writeResultLog(path, &res)
		return res
	}
	res.Outputs = outputs

	p.writeResultLog(path, &res)
	p.console.Success("Finished %s (%d outputs)", filepath.Base(path), len(outputs))
	return res
}

// selectSegments runs highlight detection, falls back to metadata trims and
// finally the whole clip, then keeps the top scored segments padded and in
// timeline order.
func (p *Pipeline) selectSegments(ctx context.Context, path string, item config.VideoItem, duration float64) []highlight.Segment {
	segments, err := p.detect(ctx, path, duration)
	if err != nil {
		p.console.Warn("Highlight detection failed for %s: %v", filepath.Base(path), err)
		segments = nil
	}

	if len(segments) == 0 && len(item.Trims) > 0 {
		for _, t := range item.Trims {
			start, end := clamp(t.Start, 0, duration), clamp(t.End, 0, duration)
			if end > start {
				segments = append(segments, highlight.Segment{Start: start, End: end, Score: 1})
			}
		}
	}
	if len(segments) == 0 {
		segments = []highlight.Segment{{Start: 0, End: duration, Score: 1}}
	}

	k := p.cfg.HighlightTopK
	if k <= 0 || k > len(segments) {
		k = len(segments)
	}
	picked := make([]highlight.Segment, k)
	copy(picked, segments[:k])
	for i := range picked {
		picked[i].Start = clamp(picked[i].Start-segmentPad, 0, duration)
		picked[i].End = clamp(picked[i].End+segmentPad, 0, duration)
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].Start < picked[j].Start })
	return picked
}

// edit performs the full render chain for one video and returns every file
// written to the output directory.
func (p *Pipeline) edit(ctx context.Context, path string, info media.Info, segments []highlight.Segment, masterPath string) ([]string, error) {
	work, err := os.MkdirTemp("", "avedit-"+fsutil.HashPath(path)+"-")
	if err != nil {
		return nil, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(work)

	var parts []render.SegmentFile
	var editedDuration float64
	for i, seg := range segments {
		out := filepath.Join(work, fmt.Sprintf("seg_%03d.mp4", i))
		if err := p.renderer.CutSegment(ctx, path, out, seg.Start, seg.End); err != nil {
			return nil, fmt.Errorf("cutting segment %d: %w", i, err)
		}
		parts = append(parts, render.SegmentFile{Path: out, Duration: seg.End - seg.Start})
		editedDuration += seg.End - seg.Start
	}

	body := filepath.Join(work, "stitched.mp4")
	if err := p.renderer.Stitch(ctx, parts, body, p.cfg.Transitions.Default, p.cfg.Transitions.Duration); err != nil {
		return nil, fmt.Errorf("stitching segments: %w", err)
	}

	if p.cfg.Overlay.Title != "" {
		title := filepath.Join(work, "title.mp4")
		if err := overlay.TitleCard(ctx, p.runner, title, info.Width, info.Height, info.FPS, p.cfg.Overlay); err != nil {
			return nil, fmt.Errorf("rendering title card: %w", err)
		}
		titled := filepath.Join(work, "titled.mp4")
		if err := p.renderer.Prepend(ctx, title, body, titled); err != nil {
			return nil, fmt.Errorf("prepending title card: %w", err)
		}
		body = titled
		editedDuration += p.cfg.Overlay.TitleDuration
	}

	var srtPath string
	entries, err := p.transcribe(ctx, path)
	if err != nil {
		p.console.Warn("Transcription failed for %s: %v", filepath.Base(path), err)
	} else if len(entries) > 0 {
		srtPath, err = captions.WriteSRT(work, entries)
		if err != nil {
			return nil, fmt.Errorf("writing captions: %w", err)
		}
	}

	watermark := p.cfg.Overlay.Watermark
	if watermark != "" {
		if _, _, err := overlay.InspectImage(watermark); err != nil {
			p.console.Warn("Ignoring watermark %s: %v", watermark, err)
			watermark = ""
		}
	}

	finished := filepath.Join(work, "finished.mp4")
	err = p.renderer.Finish(ctx, body, finished, render.FinishOptions{
		Style:        p.cfg.Style,
		SubtitlePath: srtPath,
		Captions:     p.cfg.Captions,
		Watermark:    watermark,
		FrameWidth:   info.Width,
		Overlay:      p.cfg.Overlay,
	})
	if err != nil {
		return nil, fmt.Errorf("finishing video: %w", err)
	}

	if info.HasAudio() {
		mix := filepath.Join(work, "mix.wav")
		music := audio.ChooseBackgroundTrack(p.cfg.MusicDir, func(track string) float64 {
			return p.probe(ctx, track).Duration
		})
		err = audio.Mix(ctx, p.runner, path, audio.MixOptions{
			MusicPath:     music,
			MusicGainDB:   p.cfg.MusicGainDB,
			VoiceDuration: editedDuration,
		}, mix)
		if err != nil {
			return nil, fmt.Errorf("mixing audio: %w", err)
		}
		if err := p.renderer.Mux(ctx, finished, mix, masterPath); err != nil {
			return nil, fmt.Errorf("muxing master: %w", err)
		}
	} else {
		if err := fsutil.CopyFile(finished, masterPath); err != nil {
			return nil, fmt.Errorf("writing master: %w", err)
		}
	}

	outputs := []string{masterPath}
	scaled, err := p.exporter.Resolutions(ctx, masterPath, p.cfg.Export.Resolutions)
	if err != nil {
		return outputs, fmt.Errorf("exporting resolutions: %w", err)
	}
	outputs = append(outputs, scaled...)

	if p.cfg.Export.Preview {
		preview, err := p.exporter.Preview(ctx, masterPath, editedDuration)
		if err != nil {
			p.console.Warn("Preview export failed: %v", err)
		} else {
			outputs = append(outputs, preview)
		}
	}
	if p.cfg.Poster {
		poster, err := p.exporter.Poster(ctx, masterPath, editedDuration)
		if err != nil {
			p.console.Warn("Poster export failed: %v", err)
		} else {
			outputs = append(outputs, poster)
		}
	}
	return outputs, nil
}

func (p *Pipeline) plannedOutputs(masterPath string) []string {
	outputs := []string{masterPath}
	for _, label := range p.cfg.Export.Resolutions {
		if _, _, ok := export.ParseResolution(label); ok {
			outputs = append(outputs, export.ResolutionPath(masterPath, label))
		}
	}
	if p.cfg.Export.Preview {
		outputs = append(outputs, export.PreviewPath(masterPath))
	}
	if p.cfg.Poster {
		outputs = append(outputs, export.PosterPath(masterPath))
	}
	return outputs
}

func (p *Pipeline) writeResultLog(path string, res *Result) {
	if !p.cfg.LogJSON {
		return
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return
	}
	logPath := filepath.Join(p.cfg.OutputDir, fsutil.SafeStem(path)+"_log.json")
	if err := os.WriteFile(logPath, data, 0o644); err != nil {
		p.console.Warn("Could not write %s: %v", logPath, err)
	}
}

func (p *Pipeline) resolvePath(file string) string {
	if _, err := os.Stat(file); err == nil || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(p.cfg.InputDir, file)
}

func (p *Pipeline) runRecord(started time.Time, results []Result) *catalog.Run {
	run := &catalog.Run{
		StartedAt:  started,
		FinishedAt: time.Now(),
		InputDir:   p.cfg.InputDir,
		OutputDir:  p.cfg.OutputDir,
		Style:      p.cfg.Style.Name,
		DryRun:     p.cfg.DryRun,
	}
	for _, res := range results {
		rec := catalog.VideoRecord{
			File:           res.File,
			DurationSec:    res.Probe.Duration,
			Width:          res.Probe.Width,
			Height:         res.Probe.Height,
			HighlightCount: len(res.Highlights),
			Error:          res.Error,
		}
		for _, out := range res.Outputs {
			rec.Exports = append(rec.Exports, catalog.ExportRecord{Path: out})
		}
		run.Videos = append(run.Videos, rec)
	}
	return run
}

func (p *Pipeline) uploadOutputs(ctx context.Context, client *upload.Client, dest upload.Destination, results []Result) {
	uploaded := 0
	for _, res := range results {
		if res.Error != "" {
			continue
		}
		for _, out := range res.Outputs {
			if err := client.UploadFile(ctx, dest, out); err != nil {
				p.console.Warn("Upload failed for %s: %v", filepath.Base(out), err)
				continue
			}
			uploaded++
		}
	}
	p.console.Info("Uploaded %d file(s) to %s", uploaded, p.cfg.UploadURI)
}

func outputBytes(outputs []string) int64 {
	var total int64
	for _, out := range outputs {
		if fi, err := os.Stat(out); err == nil {
			total += fi.Size()
		}
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
