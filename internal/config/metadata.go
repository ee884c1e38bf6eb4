package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedMetadata is returned for sidecar files whose extension is
// none of .yaml/.yml/.json/.toml.
var ErrUnsupportedMetadata = errors.New("unsupported metadata format")

type highlightTuning struct {
	MinSceneLen     float64 `yaml:"min_scene_len" json:"min_scene_len" toml:"min_scene_len"`
	MotionThreshold float64 `yaml:"motion_threshold" json:"motion_threshold" toml:"motion_threshold"`
	TopK            int     `yaml:"top_k" json:"top_k" toml:"top_k"`
}

type audioTuning struct {
	MusicGainDB float64 `yaml:"music_gain_db" json:"music_gain_db" toml:"music_gain_db"`
}

// sidecar is the decoded metadata file. Section fields are prefilled with
// defaults before decoding so that partial sections merge instead of reset.
type sidecar struct {
	Videos      []VideoItem      `yaml:"videos" json:"videos" toml:"videos"`
	Style       interface{}      `yaml:"style" json:"style" toml:"style"`
	Captions    CaptionConfig    `yaml:"captions" json:"captions" toml:"captions"`
	Transitions TransitionConfig `yaml:"transitions" json:"transitions" toml:"transitions"`
	Overlay     OverlayConfig    `yaml:"overlay" json:"overlay" toml:"overlay"`
	Highlight   highlightTuning  `yaml:"highlight" json:"highlight" toml:"highlight"`
	Audio       audioTuning      `yaml:"audio" json:"audio" toml:"audio"`
}

func newSidecar() *sidecar {
	return &sidecar{
		Captions:    defaultCaptions(),
		Transitions: defaultTransitions(),
		Overlay:     defaultOverlay(),
		Highlight:   highlightTuning{MinSceneLen: 2.0, MotionThreshold: 12.0, TopK: 5},
		Audio:       audioTuning{MusicGainDB: -18.0},
	}
}

// loadMetadataFile reads the sidecar at path. A missing file yields the
// defaults; only a malformed one is an error.
func loadMetadataFile(path string) (*sidecar, error) {
	meta := newSidecar()
	if path == "" {
		return meta, nil
	}
	if _, err := os.Stat(path); err != nil {
		return meta, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, meta)
	case ".json":
		err = json.Unmarshal(data, meta)
	case ".toml":
		err = toml.Unmarshal(data, meta)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMetadata, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return meta, nil
}

// styleString returns the metadata style when it is a plain preset name.
func (m *sidecar) styleString() string {
	if s, ok := m.Style.(string); ok {
		return s
	}
	return ""
}

// applyStyleTable overlays style parameters when the metadata style is a
// table of explicit values rather than a preset name.
func (m *sidecar) applyStyleTable(style *StyleConfig) {
	table, ok := asTable(m.Style)
	if !ok {
		return
	}
	if v, ok := lookupBool(table, "stabilize"); ok {
		style.Stabilize = v
	}
	if v, ok := lookupBool(table, "color_correct"); ok {
		style.ColorCorrect = v
	}
	if v, ok := lookupBool(table, "denoise_video"); ok {
		style.DenoiseVideo = v
	}
	if v, ok := lookupFloat(table, "exposure_boost"); ok {
		style.ExposureBoost = v
	}
	if v, ok := lookupFloat(table, "contrast_gain"); ok {
		style.ContrastGain = v
	}
}

func (m *sidecar) applyTuning(cfg *AppConfig) {
	cfg.HighlightMinSceneLen = m.Highlight.MinSceneLen
	cfg.HighlightMotionThreshold = m.Highlight.MotionThreshold
	cfg.HighlightTopK = m.Highlight.TopK
	cfg.MusicGainDB = m.Audio.MusicGainDB
}

func asTable(v interface{}) (map[string]interface{}, bool) {
	switch t := v.(type) {
	case map[string]interface{}:
		return t, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func lookupBool(table map[string]interface{}, key string) (bool, bool) {
	v, ok := table[key].(bool)
	return v, ok
}

func lookupFloat(table map[string]interface{}, key string) (float64, bool) {
	switch v := table[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
