package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Console wraps the rich slog logger with the formatted helpers the
// pipeline uses for user-facing output.
type Console struct {
	Logger    *slog.Logger
	Colorized bool
}

func NewConsole(opts *Options) *Console {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &Console{
		Logger:    NewRichLogger(opts),
		Colorized: opts.EnableColors && !opts.EnableJSON,
	}
}

func (c *Console) Success(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Green+Bold, "✓ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Info(format string, args ...interface{}) {
	c.Logger.Info(c.paint(Blue+Bold, "ℹ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Log(format string, args ...interface{}) {
	c.Logger.Info(c.paint(White, fmt.Sprintf(format, args...)))
}

func (c *Console) Debug(format string, args ...interface{}) {
	c.Logger.Debug(fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...interface{}) {
	c.Logger.Warn(c.paint(Yellow+Bold, "⚠ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Error(format string, args ...interface{}) {
	c.Logger.Error(c.paint(Red+Bold, "✖ "+fmt.Sprintf(format, args...)))
}

func (c *Console) Fatal(format string, args ...interface{}) {
	c.Logger.Error(c.paint(BgRed+White+Bold, fmt.Sprintf(format, args...)))
	os.Exit(1)
}

func (c *Console) paint(color, msg string) string {
	if c.Colorized {
		return color + msg + Reset
	}
	return msg
}

func (c *Console) StartTimer(name string) *Timer {
	return &Timer{Name: name, StartTime: time.Now(), Console: c}
}

func (c *Console) NewProgressBar(total int64, label string) *ProgressBar {
	return NewProgressBar(total, label)
}

func (c *Console) NewTable(headers []string) *Table {
	return NewTable(headers)
}

func (c *Console) Box(title string, content string) {
	lines := strings.Split(content, "\n")
	width := len(title)
	for _, line := range lines {
		if len(line) > width {
			width = len(line)
		}
	}
	width += 4

	fmt.Println("┌─" + title + "─" + strings.Repeat("─", width-len(title)-2) + "┐")
	for _, line := range lines {
		fmt.Println("│ " + line + strings.Repeat(" ", width-len(line)) + " │")
	}
	fmt.Println("└" + strings.Repeat("─", width+2) + "┘")
}
