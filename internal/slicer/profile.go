package slicer

import "slasher/internal/pixbuf"

// RowDiff is the largest channel difference between Row and Row+1.
type RowDiff struct {
	Row     int
	MaxDiff uint8
}

// Profile computes the row-pair differences examined by a scan with the given
// stride.
func Profile(buf *pixbuf.Buffer, step int) []RowDiff {
	if buf == nil || step <= 0 {
		return nil
	}
	out := make([]RowDiff, 0, buf.Height/step+1)
	for row := 0; row+1 < buf.Height; row += step {
		out = append(out, RowDiff{Row: row, MaxDiff: buf.MaxRowDiff(row, row+1)})
	}
	return out
}

// Candidates returns the scanned rows whose next row is within threshold.
func Candidates(buf *pixbuf.Buffer, p Params) []int {
	var rows []int
	for _, d := range Profile(buf, p.ScanStep) {
		if d.MaxDiff <= p.Threshold {
			rows = append(rows, d.Row)
		}
	}
	return rows
}
