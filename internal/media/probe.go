package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Info is the subset of ffprobe output the pipeline decides on.
type Info struct {
	Path          string  `json:"path"`
	Duration      float64 `json:"duration"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	FPS           float64 `json:"fps"`
	AudioChannels int     `json:"audio_channels"`
	SampleRate    int     `json:"sample_rate"`
	BitRate       int64   `json:"bit_rate"`
}

func (i Info) HasAudio() bool { return i.AudioChannels > 0 }

func (i Info) String() string {
	return fmt.Sprintf("%.2fs %dx%d @%.2ffps audio=%dch", i.Duration, i.Width, i.Height, i.FPS, i.AudioChannels)
}

type probeStream struct {
	CodecType    string `json:"codec_type"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
	Channels     int    `json:"channels"`
	SampleRate   string `json:"sample_rate"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

// Prober runs a configurable ffprobe binary, so the AVEDIT_FFPROBE
// override reaches the actual exec the same way ffrun handles ffmpeg.
type Prober struct {
	Bin string
}

func NewProber(bin string) *Prober {
	if bin == "" {
		bin = "ffprobe"
	}
	return &Prober{Bin: bin}
}

// Probe inspects path. Failures degrade to an empty Info so a broken file
// never aborts the batch; the caller decides how loud to be.
func (p *Prober) Probe(ctx context.Context, path string) Info {
	cmd := exec.CommandContext(ctx, p.Bin,
		"-v", "error", "-show_format", "-show_streams", "-of", "json", path)
	raw, err := cmd.Output()
	if err != nil {
		return Info{Path: path}
	}
	info, err := ParseProbe(path, string(raw))
	if err != nil {
		return Info{Path: path}
	}
	return info
}

// ParseProbe decodes raw ffprobe JSON into Info. Split from Probe so the
// parsing is testable without a media file.
func ParseProbe(path, raw string) (Info, error) {
	var out probeOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Info{Path: path}, fmt.Errorf("decoding ffprobe output: %w", err)
	}

	info := Info{Path: path}
	if d, err := strconv.ParseFloat(out.Format.Duration, 64); err == nil {
		info.Duration = d
	}
	if b, err := strconv.ParseInt(out.Format.BitRate, 10, 64); err == nil {
		info.BitRate = b
	}

	for _, s := range out.Streams {
		switch s.CodecType {
		case "video":
			if info.Width != 0 {
				continue
			}
			info.Width = s.Width
			info.Height = s.Height
			rate := s.RFrameRate
			if rate == "" || rate == "0/0" {
				rate = s.AvgFrameRate
			}
			info.FPS = parseFrameRate(rate)
		case "audio":
			if info.AudioChannels != 0 {
				continue
			}
			info.AudioChannels = s.Channels
			if sr, err := strconv.Atoi(s.SampleRate); err == nil {
				info.SampleRate = sr
			}
		}
	}
	return info, nil
}

// parseFrameRate handles ffprobe rational rates such as "30000/1001".
func parseFrameRate(rate string) float64 {
	if rate == "" {
		return 0
	}
	if num, den, ok := strings.Cut(rate, "/"); ok {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN != nil || errD != nil || d == 0 {
			return 0
		}
		return n / d
	}
	f, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return 0
	}
	return f
}
