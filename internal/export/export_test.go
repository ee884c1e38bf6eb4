package export_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"avedit/internal/export"
)

func TestParseResolutionLabels(t *testing.T) {
	cases := []struct {
		label string
		w, h  int
		ok    bool
	}{
		{"1080p", 1920, 1080, true},
		{"720p", 1280, 720, true},
		{"480p", 854, 480, true},
		{" 720P ", 1280, 720, true},
		{"640x360", 640, 360, true},
		{"4k", 0, 0, false},
		{"0x100", 0, 0, false},
		{"axb", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, c := range cases {
		w, h, ok := export.ParseResolution(c.label)
		assert.Equal(t, c.ok, ok, c.label)
		assert.Equal(t, c.w, w, c.label)
		assert.Equal(t, c.h, h, c.label)
	}
}

func TestOutputNaming(t *testing.T) {
	master := "/out/trip_1714000000.mp4"
	assert.Equal(t, "/out/trip_1714000000_1080p.mp4", export.ResolutionPath(master, "1080p"))
	assert.Equal(t, "/out/trip_1714000000_preview.mp4", export.PreviewPath(master))
	assert.Equal(t, "/out/trip_1714000000_poster.avif", export.PosterPath(master))
}
