package testsupport

import (
	"testing"

	"slasher/internal/pixbuf"
)

// Gray is the flat fill used by FillFlat callers that do not care about the
// exact shade.
const Gray byte = 128

// NoiseBuffer returns a buffer in which every pair of adjacent rows differs
// by 7 in every byte, so no row is a cut candidate below threshold 7.
func NoiseBuffer(t testing.TB, height, width, channels int) *pixbuf.Buffer {
	t.Helper()

	buf, err := pixbuf.New(height, width, channels)
	if err != nil {
		t.Fatalf("pixbuf.New: %v", err)
	}
	for r := 0; r < height; r++ {
		FillNoise(buf, r, r+1)
	}
	return buf
}

// FillNoise writes the row-varying pattern into rows [start, end).
func FillNoise(buf *pixbuf.Buffer, start, end int) {
	for r := start; r < end; r++ {
		row := buf.Row(r)
		for c := 0; c < buf.Width; c++ {
			for k := 0; k < buf.Channels; k++ {
				row[c*buf.Channels+k] = byte(r*7 + c*13 + k*29)
			}
		}
	}
}

// FillFlat paints rows [start, end) with a single value.
func FillFlat(buf *pixbuf.Buffer, start, end int, value byte) {
	for r := start; r < end; r++ {
		row := buf.Row(r)
		for i := range row {
			row[i] = value
		}
	}
}
