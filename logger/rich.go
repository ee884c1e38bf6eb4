package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
)

const (
	Reset   = "\033[0m"
	Bold    = "\033[1m"
	Dim     = "\033[2m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	BgRed   = "\033[41m"
)

type Options struct {
	Output       io.Writer
	Level        slog.Level
	TimeFormat   string
	EnableColors bool
	EnableJSON   bool
	AddSource    bool
}

func DefaultOptions() *Options {
	return &Options{
		Output:       os.Stdout,
		Level:        slog.LevelInfo,
		TimeFormat:   "15:04:05.000",
		EnableColors: true,
	}
}

// ParseLevel maps --log-level flag values to slog levels.
// Unknown values fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type RichHandler struct {
	opts  *Options
	mu    sync.Mutex
	attrs []slog.Attr
}

func NewRichHandler(opts *Options) *RichHandler {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &RichHandler{opts: opts}
}

func (h *RichHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

func (h *RichHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := &RichHandler{opts: h.opts, attrs: make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))}
	copy(h2.attrs, h.attrs)
	h2.attrs = append(h2.attrs, attrs...)
	return h2
}

func (h *RichHandler) WithGroup(string) slog.Handler { return h }

func (h *RichHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.opts.EnableJSON {
		return h.handleJSON(record)
	}
	return h.handleText(record)
}

func (h *RichHandler) handleJSON(record slog.Record) error {
	entry := map[string]interface{}{
		"time":  record.Time.Format(h.opts.TimeFormat),
		"level": record.Level.String(),
		"msg":   record.Message,
	}
	if h.opts.AddSource && record.PC != 0 {
		entry["source"] = sourceOf(record.PC)
	}
	for _, a := range h.attrs {
		entry[a.Key] = a.Value.Any()
	}
	record.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(h.opts.Output, string(data))
	return err
}

func (h *RichHandler) handleText(record slog.Record) error {
	var b strings.Builder

	h.colored(&b, Dim, record.Time.Format(h.opts.TimeFormat))
	b.WriteString(" ")
	h.colored(&b, levelColor(record.Level)+Bold, fmt.Sprintf("%-5s", strings.ToUpper(record.Level.String())))
	b.WriteString(" ")

	if h.opts.AddSource && record.PC != 0 {
		h.colored(&b, Magenta, sourceOf(record.PC))
		b.WriteString(" ")
	}

	b.WriteString(record.Message)

	writeAttr := func(a slog.Attr) bool {
		b.WriteString(" ")
		h.colored(&b, Cyan, a.Key+"=")
		b.WriteString(fmt.Sprintf("%v", a.Value.Any()))
		return true
	}
	for _, a := range h.attrs {
		writeAttr(a)
	}
	record.Attrs(writeAttr)

	_, err := fmt.Fprintln(h.opts.Output, b.String())
	return err
}

func (h *RichHandler) colored(b *strings.Builder, color, text string) {
	if h.opts.EnableColors {
		b.WriteString(color)
		b.WriteString(text)
		b.WriteString(Reset)
		return
	}
	b.WriteString(text)
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return Red
	case level >= slog.LevelWarn:
		return Yellow
	case level >= slog.LevelInfo:
		return Green
	default:
		return Cyan
	}
}

func sourceOf(pc uintptr) string {
	fs := runtime.CallersFrames([]uintptr{pc})
	f, _ := fs.Next()
	file := f.File
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s:%d", file, f.Line)
}

func NewRichLogger(opts *Options) *slog.Logger {
	return slog.New(NewRichHandler(opts))
}
