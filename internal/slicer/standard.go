package slicer

import "slasher/internal/pixbuf"

// Standard is the row-difference scanner paired with the aura validator.
type Standard struct{}

// Name implements Strategy.
func (Standard) Name() string { return StrategyStandard }

// scanState is the accumulator threaded through the scan.
type scanState struct {
	// splitLine is the most recent candidate row.
	splitLine int
	// fresh is set when splitLine was observed after the last promotion.
	fresh bool
	// nextCrop is the row at which the next promotion becomes due.
	nextCrop   int
	boundaries []int
}

func newScanState(p Params) scanState {
	return scanState{nextCrop: p.CropHeight, boundaries: []int{0}}
}

func (s scanState) last() int {
	return s.boundaries[len(s.boundaries)-1]
}

// advance folds one scan position into the state.
func (s scanState) advance(buf *pixbuf.Buffer, p Params, row int) scanState {
	if row >= s.nextCrop && s.fresh {
		validated := ValidateAura(buf, p, s.splitLine)
		if validated > s.last() {
			s.boundaries = append(s.boundaries, validated)
			s.nextCrop = validated + p.CropHeight
		}
		s.fresh = false
	}
	if buf.MaxRowDiff(row, row+1) <= p.Threshold {
		s.splitLine = row
		s.fresh = true
	}
	return s
}

// Boundaries implements Strategy.
func (Standard) Boundaries(buf *pixbuf.Buffer, p Params) ([]int, error) {
	if err := prepare(buf, p); err != nil {
		return nil, err
	}
	state := newScanState(p)
	for row := 0; row+1 < buf.Height; row += p.ScanStep {
		state = state.advance(buf, p, row)
	}
	return append(state.boundaries, buf.Height), nil
}
