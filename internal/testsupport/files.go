package testsupport

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"slasher/internal/pixbuf"
)

// WriteFile creates path with the given content, making parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WritePNG encodes buf as a PNG at path, making parent directories.
func WritePNG(t testing.TB, path string, buf *pixbuf.Buffer) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, buf.Image()); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
}

// ReadPNG decodes an RGB PNG written by the pipeline.
func ReadPNG(t testing.TB, path string) *pixbuf.Buffer {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	buf, err := pixbuf.FromImage(img, pixbuf.ColorRGB)
	if err != nil {
		t.Fatalf("flatten %s: %v", path, err)
	}
	return buf
}
