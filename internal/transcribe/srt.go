package transcribe

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is a single subtitle cue.
type Entry struct {
	Start float64
	End   float64
	Text  string
}

// ParseSRT decodes SubRip text into entries. Malformed blocks are
// skipped rather than failing the whole file.
func ParseSRT(text string) []Entry {
	var entries []Entry
	for _, block := range strings.Split(normalizeNewlines(text), "\n\n") {
		var lines []string
		for _, l := range strings.Split(block, "\n") {
			if strings.TrimSpace(l) != "" {
				lines = append(lines, strings.TrimSpace(l))
			}
		}
		if len(lines) < 2 {
			continue
		}

		// lines[0] is the sequence number, lines[1] the time range.
		start, end, err := parseTimeRange(lines[1])
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], " "),
		})
	}
	return entries
}

// FormatSRT renders entries back to SubRip, used when burning captions.
func FormatSRT(entries []Entry) string {
	var b strings.Builder
	n := 0
	for _, e := range entries {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n", n, formatTimestamp(e.Start), formatTimestamp(e.End), e.Text)
	}
	return b.String()
}

func parseTimeRange(line string) (float64, float64, error) {
	startStr, endStr, ok := strings.Cut(line, " --> ")
	if !ok {
		return 0, 0, fmt.Errorf("not a time range: %q", line)
	}
	start, err := parseTimestamp(strings.TrimSpace(startStr))
	if err != nil {
		return 0, 0, err
	}
	end, err := parseTimestamp(strings.TrimSpace(endStr))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// parseTimestamp reads "HH:MM:SS,mmm" (or with a dot) into seconds.
func parseTimestamp(t string) (float64, error) {
	t = strings.ReplaceAll(t, ".", ",")
	parts := strings.Split(t, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("bad timestamp: %q", t)
	}
	secPart, msPart, _ := strings.Cut(parts[2], ",")

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp: %q", t)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("bad timestamp: %q", t)
	}
	s, err := strconv.Atoi(secPart)
	if err != nil {
		return 0, fmt.Errorf("bad timestamp: %q", t)
	}
	ms := 0
	if msPart != "" {
		if ms, err = strconv.Atoi(msPart); err != nil {
			return 0, fmt.Errorf("bad timestamp: %q", t)
		}
	}
	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000, nil
}

func formatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(seconds*1000 + 0.5)
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
