package media_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/internal/media"
)

const probeJSON = `{
  "streams": [
    {
      "codec_type": "video",
      "width": 1920,
      "height": 1080,
      "r_frame_rate": "30000/1001"
    },
    {
      "codec_type": "audio",
      "channels": 2,
      "sample_rate": "48000"
    }
  ],
  "format": {
    "duration": "42.5",
    "bit_rate": "8000000"
  }
}`

func TestParseProbe(t *testing.T) {
	info, err := media.ParseProbe("/in/clip.mp4", probeJSON)
	require.NoError(t, err)

	assert.Equal(t, "/in/clip.mp4", info.Path)
	assert.Equal(t, 42.5, info.Duration)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.Equal(t, 2, info.AudioChannels)
	assert.Equal(t, 48000, info.SampleRate)
	assert.Equal(t, int64(8000000), info.BitRate)
	assert.True(t, info.HasAudio())
}

func TestParseProbeVideoOnly(t *testing.T) {
	raw := `{"streams":[{"codec_type":"video","width":640,"height":360,"r_frame_rate":"0/0","avg_frame_rate":"25/1"}],"format":{"duration":"3.0"}}`
	info, err := media.ParseProbe("clip.mp4", raw)
	require.NoError(t, err)

	assert.Equal(t, 25.0, info.FPS)
	assert.False(t, info.HasAudio())
}

func TestParseProbeBadJSON(t *testing.T) {
	_, err := media.ParseProbe("clip.mp4", "{nope")
	assert.Error(t, err)
}

func TestProberUsesConfiguredBinary(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffprobe.sh")
	script := "#!/bin/sh\necho '{\"format\":{\"duration\":\"42.0\"}}'\n"
	require.NoError(t, os.WriteFile(stub, []byte(script), 0o755))

	info := media.NewProber(stub).Probe(context.Background(), "clip.mp4")
	assert.Equal(t, 42.0, info.Duration)
}

func TestProberFailureDegradesToEmptyInfo(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-such-ffprobe")
	info := media.NewProber(missing).Probe(context.Background(), "clip.mp4")
	assert.Equal(t, "clip.mp4", info.Path)
	assert.Equal(t, 0.0, info.Duration)
}

func TestInfoString(t *testing.T) {
	info := media.Info{Duration: 12.5, Width: 1280, Height: 720, FPS: 30, AudioChannels: 2}
	assert.Equal(t, "12.50s 1280x720 @30.00fps audio=2ch", info.String())
}
