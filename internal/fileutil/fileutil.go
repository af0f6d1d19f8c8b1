package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteFunc streams file content into w.
type WriteFunc func(w io.Writer) error

// WriteAtomic writes to a temporary file beside path and renames it into
// place, so readers never observe a partially written file. It returns the
// number of bytes written.
func WriteAtomic(path string, mode os.FileMode, write WriteFunc) (int64, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	counter := &countingWriter{w: tmp}
	bw := bufio.NewWriterSize(counter, 256*1024)
	if err := write(bw); err != nil {
		cleanup()
		return 0, err
	}
	if err := bw.Flush(); err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return 0, fmt.Errorf("rename into place: %w", err)
	}
	return counter.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
