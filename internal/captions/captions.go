package captions

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"avedit/internal/config"
	"avedit/internal/transcribe"
)

// WriteSRT persists caption entries next to the working files and returns
// the subtitle path for the burn pass.
func WriteSRT(dir string, entries []transcribe.Entry) (string, error) {
	path := filepath.Join(dir, "captions.srt")
	if err := os.WriteFile(path, []byte(transcribe.FormatSRT(entries)), 0o644); err != nil {
		return "", fmt.Errorf("writing captions: %w", err)
	}
	return path, nil
}

// FilterArg builds the ffmpeg subtitles filter argument that burns the SRT
// with the configured styling.
func FilterArg(srtPath string, cfg config.CaptionConfig) string {
	return fmt.Sprintf("%s:force_style='%s'", escapeFilterPath(srtPath), ForceStyle(cfg))
}

// ForceStyle renders CaptionConfig as an ASS force_style override list.
func ForceStyle(cfg config.CaptionConfig) string {
	alignment := 2 // bottom center
	if cfg.Position == "top" {
		alignment = 8
	}
	return fmt.Sprintf(
		"FontName=%s,FontSize=%d,PrimaryColour=%s,OutlineColour=%s,BorderStyle=1,Outline=%d,Alignment=%d,MarginV=40",
		cfg.Font,
		cfg.FontSize,
		assColor(cfg.Color),
		assColor(cfg.StrokeColor),
		cfg.StrokeWidth,
		alignment,
	)
}

var namedColors = map[string]string{
	"white":   "FFFFFF",
	"black":   "000000",
	"red":     "FF0000",
	"green":   "00FF00",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"cyan":    "00FFFF",
	"magenta": "FF00FF",
	"orange":  "FFA500",
}

// assColor converts a colour name or #RRGGBB value into ASS &HAABBGGRR
// notation (note the reversed byte order).
func assColor(name string) string {
	hex, ok := namedColors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		trimmed := strings.TrimPrefix(strings.TrimSpace(name), "#")
		if len(trimmed) == 6 && isHex(trimmed) {
			hex = strings.ToUpper(trimmed)
		} else {
			hex = "FFFFFF"
		}
	}
	r, g, b := hex[0:2], hex[2:4], hex[4:6]
	return fmt.Sprintf("&H00%s%s%s", b, g, r)
}

func isHex(s string) bool {
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// escapeFilterPath protects characters the subtitles filter would treat as
// option separators.
func escapeFilterPath(path string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return replacer.Replace(path)
}
