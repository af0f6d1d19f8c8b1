package slicer

import "slasher/internal/pixbuf"

// Central places each cut as close as possible to the segment's target
// height. It searches outward from last+CropHeight in ScanStep strides
// (above before below at equal distance) within CropHeight/2 rows, taking
// the first candidate whose aura band is uniform, else the nearest plain
// candidate. With no candidate in that window it continues downward to the
// first candidate before the end of the image.
type Central struct{}

// Name implements Strategy.
func (Central) Name() string { return StrategyCentral }

// Boundaries implements Strategy.
func (Central) Boundaries(buf *pixbuf.Buffer, p Params) ([]int, error) {
	if err := prepare(buf, p); err != nil {
		return nil, err
	}
	boundaries := []int{0}
	maxRow := buf.Height - 2
	last := 0
	for {
		target := last + p.CropHeight
		if target > maxRow {
			break
		}
		cut, ok := searchAround(buf, p, last, target, maxRow)
		if !ok {
			break
		}
		boundaries = append(boundaries, cut)
		last = cut
	}
	return append(boundaries, buf.Height), nil
}

func searchAround(buf *pixbuf.Buffer, p Params, last, target, maxRow int) (int, bool) {
	radius := p.CropHeight / 2
	fallback := -1
	for dist := 0; dist <= radius; dist += p.ScanStep {
		rows := [2]int{target - dist, target + dist}
		n := len(rows)
		if dist == 0 {
			n = 1
		}
		for _, row := range rows[:n] {
			if row <= last || row > maxRow {
				continue
			}
			if buf.MaxRowDiff(row, row+1) > p.Threshold {
				continue
			}
			if !auraApplies(buf, p, row) || bandUniform(buf, p.Threshold, row, p.AuraMargin) {
				return row, true
			}
			if fallback < 0 {
				fallback = row
			}
		}
	}
	if fallback >= 0 {
		return fallback, true
	}
	for row := target + radius + 1; row <= maxRow; row += p.ScanStep {
		if buf.MaxRowDiff(row, row+1) <= p.Threshold {
			return row, true
		}
	}
	return 0, false
}
