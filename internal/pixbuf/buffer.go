package pixbuf

import (
	"errors"
	"fmt"
)

// ErrShapeMismatch reports buffers that disagree on width or channel count,
// or a shape that cannot hold pixels.
var ErrShapeMismatch = errors.New("pixel buffer shape mismatch")

// Buffer is a tall image flattened to bytes.
type Buffer struct {
	Height   int
	Width    int
	Channels int
	Data     []byte
}

// New allocates a zeroed buffer of the given shape.
func New(height, width, channels int) (*Buffer, error) {
	if err := checkShape(height, width, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Height:   height,
		Width:    width,
		Channels: channels,
		Data:     make([]byte, height*width*channels),
	}, nil
}

func checkShape(height, width, channels int) error {
	if height < 0 || width <= 0 {
		return fmt.Errorf("%w: invalid dimensions %dx%d", ErrShapeMismatch, width, height)
	}
	if channels < 1 || channels > 4 {
		return fmt.Errorf("%w: unsupported channel count %d", ErrShapeMismatch, channels)
	}
	return nil
}

// Stride is the byte length of one row.
func (b *Buffer) Stride() int {
	return b.Width * b.Channels
}

// Row returns the bytes of row r without copying.
func (b *Buffer) Row(r int) []byte {
	stride := b.Stride()
	return b.Data[r*stride : (r+1)*stride]
}

// Rows returns rows [start, end) as a view into the buffer.
func (b *Buffer) Rows(start, end int) ([]byte, error) {
	if start < 0 || end > b.Height || start > end {
		return nil, fmt.Errorf("row range [%d, %d) outside buffer of height %d", start, end, b.Height)
	}
	stride := b.Stride()
	return b.Data[start*stride : end*stride], nil
}

// Slice copies rows [start, end) into a new buffer that owns its data.
func (b *Buffer) Slice(start, end int) (*Buffer, error) {
	view, err := b.Rows(start, end)
	if err != nil {
		return nil, err
	}
	owned := make([]byte, len(view))
	copy(owned, view)
	return &Buffer{Height: end - start, Width: b.Width, Channels: b.Channels, Data: owned}, nil
}

// Append stacks other below b. Width and channel count must match exactly;
// there is no coercion.
func (b *Buffer) Append(other *Buffer) error {
	if other == nil {
		return nil
	}
	if other.Width != b.Width || other.Channels != b.Channels {
		return fmt.Errorf("%w: cannot append %dx%d (%d channels) below %dx%d (%d channels)",
			ErrShapeMismatch, other.Width, other.Height, other.Channels, b.Width, b.Height, b.Channels)
	}
	b.Data = append(b.Data, other.Data...)
	b.Height += other.Height
	return nil
}

// Concat stacks buffers top to bottom into a new buffer.
func Concat(parts ...*Buffer) (*Buffer, error) {
	if len(parts) == 0 {
		return nil, errors.New("concat: no buffers")
	}
	first := parts[0]
	total := 0
	for _, p := range parts {
		total += len(p.Data)
	}
	out := &Buffer{
		Height:   first.Height,
		Width:    first.Width,
		Channels: first.Channels,
		Data:     make([]byte, len(first.Data), total),
	}
	copy(out.Data, first.Data)
	for _, p := range parts[1:] {
		if err := out.Append(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MaxRowDiff returns the largest absolute per-channel difference between two
// rows, compared column by column.
func (b *Buffer) MaxRowDiff(r1, r2 int) uint8 {
	a := b.Row(r1)
	c := b.Row(r2)
	var maxDiff uint8
	for i := range a {
		d := absDiff(a[i], c[i])
		if d > maxDiff {
			maxDiff = d
			if maxDiff == 255 {
				break
			}
		}
	}
	return maxDiff
}

func absDiff(x, y byte) uint8 {
	if x > y {
		return x - y
	}
	return y - x
}
