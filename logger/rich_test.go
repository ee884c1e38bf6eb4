package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/logger"
)

func textLogger(buf *bytes.Buffer, addSource bool) *slog.Logger {
	return logger.NewRichLogger(&logger.Options{
		Output:     buf,
		Level:      slog.LevelDebug,
		TimeFormat: "15:04:05",
		AddSource:  addSource,
	})
}

func TestRichHandlerText(t *testing.T) {
	var buf bytes.Buffer
	textLogger(&buf, false).Info("starting batch", "videos", 3)

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "starting batch")
	assert.Contains(t, line, "videos=3")
	assert.NotContains(t, line, ".go:")
}

func TestRichHandlerAddSource(t *testing.T) {
	var buf bytes.Buffer
	textLogger(&buf, true).Debug("probing")

	assert.Contains(t, buf.String(), "rich_test.go:")
}

func TestRichHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewRichLogger(&logger.Options{
		Output:     &buf,
		Level:      slog.LevelInfo,
		TimeFormat: "15:04:05",
		EnableJSON: true,
	})
	l.Warn("slow export", "file", "a.mp4")

	line := strings.TrimSpace(buf.String())
	require.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"msg":"slow export"`)
	assert.Contains(t, line, `"file":"a.mp4"`)
	assert.Contains(t, line, `"level":"WARN"`)
}

func TestRichHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewRichLogger(&logger.Options{
		Output:     &buf,
		Level:      slog.LevelWarn,
		TimeFormat: "15:04:05",
	})
	l.Info("quiet")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel(" Warning "))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}
