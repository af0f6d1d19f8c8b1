package slicer

import (
	"errors"
	"fmt"
	"strings"

	"slasher/internal/pixbuf"
)

var (
	// ErrInvalidParams reports scan parameters a strategy cannot work with.
	ErrInvalidParams = errors.New("invalid scan parameters")
	// ErrEmptyBuffer reports a buffer with no rows.
	ErrEmptyBuffer = errors.New("empty pixel buffer")
)

// Params configures a single scan. It is never modified by a strategy.
type Params struct {
	// Threshold is the largest per-channel difference still treated as
	// "the same" between two rows.
	Threshold uint8
	// CropHeight is the target segment height in rows.
	CropHeight int
	// AuraMargin is the band height used to confirm a cut. Zero disables the
	// band check.
	AuraMargin int
	// ScanStep is the row stride of the scan.
	ScanStep int
}

// Validate checks the parameters are usable.
func (p Params) Validate() error {
	if p.CropHeight <= 0 {
		return fmt.Errorf("%w: crop height must be positive (got %d)", ErrInvalidParams, p.CropHeight)
	}
	if p.ScanStep <= 0 {
		return fmt.Errorf("%w: scan step must be positive (got %d)", ErrInvalidParams, p.ScanStep)
	}
	if p.AuraMargin < 0 {
		return fmt.Errorf("%w: aura margin must be >= 0 (got %d)", ErrInvalidParams, p.AuraMargin)
	}
	return nil
}

// Strategy turns a buffer into an ordered cut boundary list.
type Strategy interface {
	Name() string
	Boundaries(buf *pixbuf.Buffer, p Params) ([]int, error)
}

const (
	StrategyStandard = "standard"
	StrategyCentral  = "central"
)

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyStandard:
		return Standard{}, nil
	case StrategyCentral:
		return Central{}, nil
	default:
		return nil, fmt.Errorf("unknown scan strategy %q", name)
	}
}

func prepare(buf *pixbuf.Buffer, p Params) error {
	if buf == nil || buf.Height == 0 {
		return ErrEmptyBuffer
	}
	return p.Validate()
}

// CheckBoundaries verifies that b covers [0, height] in strictly increasing
// order.
func CheckBoundaries(b []int, height int) error {
	if len(b) < 2 {
		return fmt.Errorf("boundaries: need at least 2 entries, got %d", len(b))
	}
	if b[0] != 0 {
		return fmt.Errorf("boundaries: first entry is %d, want 0", b[0])
	}
	if last := b[len(b)-1]; last != height {
		return fmt.Errorf("boundaries: last entry is %d, want %d", last, height)
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			return fmt.Errorf("boundaries: entry %d (%d) does not exceed entry %d (%d)", i, b[i], i-1, b[i-1])
		}
	}
	return nil
}
