package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"avedit/internal/ffrun"
	"avedit/internal/media"
)

var musicExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".m4a":  true,
}

// DurationProber reports a track's duration in seconds; injectable so
// track selection is testable without media files.
type DurationProber func(path string) float64

func probeDuration(path string) float64 {
	return media.NewProber("").Probe(context.Background(), path).Duration
}

// ChooseBackgroundTrack picks the shortest supported track in musicDir,
// which keeps export times sane. Empty string when there is nothing usable.
func ChooseBackgroundTrack(musicDir string, probe DurationProber) string {
	if musicDir == "" {
		return ""
	}
	if probe == nil {
		probe = probeDuration
	}

	entries, err := os.ReadDir(musicDir)
	if err != nil {
		return ""
	}

	type track struct {
		path     string
		duration float64
	}
	var tracks []track
	for _, e := range entries {
		if e.IsDir() || !musicExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		p := filepath.Join(musicDir, e.Name())
		tracks = append(tracks, track{path: p, duration: probe(p)})
	}
	if len(tracks) == 0 {
		return ""
	}

	sort.SliceStable(tracks, func(i, j int) bool { return tracks[i].duration < tracks[j].duration })
	return tracks[0].path
}

// MixOptions controls the voice/music mixdown.
type MixOptions struct {
	MusicPath     string
	MusicGainDB   float64
	VoiceDuration float64
}

// Mix extracts the source's voice track, denoises and loudness-normalises
// it, and overlays the background track looped or trimmed to the voice
// length. The result is a PCM wav ready to mux into the master export.
func Mix(ctx context.Context, runner *ffrun.Runner, src string, opts MixOptions, outPath string) error {
	voice := ffmpeg.Input(src).Audio().
		Filter("afftdn", nil).
		Filter("loudnorm", nil, ffmpeg.KwArgs{"I": -14, "TP": -1.5, "LRA": 11})

	var mixed *ffmpeg.Stream
	if opts.MusicPath != "" {
		music := ffmpeg.Input(opts.MusicPath).Audio().
			Filter("loudnorm", nil, ffmpeg.KwArgs{"I": -16, "TP": -1.5, "LRA": 11}).
			Filter("volume", ffmpeg.Args{VolumeArg(opts.MusicGainDB)}).
			Filter("aloop", nil, ffmpeg.KwArgs{"loop": -1, "size": 2147483647}).
			Filter("atrim", nil, ffmpeg.KwArgs{"start": 0, "end": opts.VoiceDuration})
		mixed = ffmpeg.Filter([]*ffmpeg.Stream{voice, music}, "amix", nil,
			ffmpeg.KwArgs{"inputs": 2, "duration": "first", "dropout_transition": 2})
	} else {
		mixed = voice
	}

	out := mixed.Output(outPath, ffmpeg.KwArgs{"acodec": "pcm_s16le", "ar": 48000, "ac": 2})
	if err := runner.Run(ctx, out); err != nil {
		return fmt.Errorf("audio mixdown: %w", err)
	}
	return nil
}

// VolumeArg formats a dB gain for the volume filter.
func VolumeArg(gainDB float64) string {
	return fmt.Sprintf("%gdB", gainDB)
}
