package fsutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"avedit/internal/fsutil"
)

func TestSafeStem(t *testing.T) {
	assert.Equal(t, "clip", fsutil.SafeStem("/in/clip.mp4"))
	assert.Equal(t, "beach_day_2", fsutil.SafeStem("beach day 2.MOV"))
	assert.Equal(t, "noext", fsutil.SafeStem("noext"))
}

func TestTimestampedName(t *testing.T) {
	name := fsutil.TimestampedName("clip")
	assert.True(t, strings.HasPrefix(name, "clip_"))
	assert.Greater(t, len(name), len("clip_"))
}

func TestHashPath(t *testing.T) {
	a := fsutil.HashPath("/in/a.mp4")
	b := fsutil.HashPath("/in/b.mp4")
	assert.Len(t, a, 8)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, fsutil.HashPath("/in/a.mp4"))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, fsutil.EnsureDir(dir))
	assert.DirExists(t, dir)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o644))

	require.NoError(t, fsutil.CopyFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestCopyFileMissingSource(t *testing.T) {
	err := fsutil.CopyFile(filepath.Join(t.TempDir(), "nope"), filepath.Join(t.TempDir(), "dst"))
	assert.Error(t, err)
}
