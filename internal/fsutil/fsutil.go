package fsutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// SafeStem returns the file name without extension, with spaces replaced
// so the stem is usable in generated output names.
func SafeStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(stem, " ", "_")
}

func TimestampedName(base string) string {
	return fmt.Sprintf("%s_%d", base, time.Now().Unix())
}

// CopyFile copies src to dst. Rename is not enough here because work
// directories usually live on a different filesystem than the output dir.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func HashPath(path string) string {
	sum := sha1.Sum([]byte(path))
	return hex.EncodeToString(sum[:])[:8]
}
