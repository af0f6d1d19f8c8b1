package segment

import (
	"fmt"

	"slasher/internal/pixbuf"
	"slasher/internal/slicer"
)

// Segment is one contiguous row range of a group's buffer.
type Segment struct {
	Index    int
	StartRow int
	EndRow   int
	Buffer   *pixbuf.Buffer
}

// Height is the number of rows in the segment.
func (s Segment) Height() int {
	return s.EndRow - s.StartRow
}

// Extract slices buf at the given boundaries. It returns len(boundaries)-1
// segments, each owning a copy of its rows.
func Extract(buf *pixbuf.Buffer, boundaries []int) ([]Segment, error) {
	if buf == nil {
		return nil, slicer.ErrEmptyBuffer
	}
	if err := slicer.CheckBoundaries(boundaries, buf.Height); err != nil {
		return nil, fmt.Errorf("extract segments: %w", err)
	}
	segments := make([]Segment, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]
		owned, err := buf.Slice(start, end)
		if err != nil {
			return nil, fmt.Errorf("extract segment %d: %w", i, err)
		}
		segments = append(segments, Segment{Index: i, StartRow: start, EndRow: end, Buffer: owned})
	}
	return segments, nil
}

// Heights returns the row count of each segment described by boundaries.
func Heights(boundaries []int) []int {
	if len(boundaries) < 2 {
		return nil
	}
	out := make([]int, len(boundaries)-1)
	for i := range out {
		out[i] = boundaries[i+1] - boundaries[i]
	}
	return out
}
