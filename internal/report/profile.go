package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"slasher/internal/slicer"
)

const (
	profileWidth  = 3840
	profileHeight = 1080
	maxPoints     = 4000
)

// ErrProfileTooShort reports a profile with fewer than two samples, which
// cannot be charted.
var ErrProfileTooShort = errors.New("profile needs at least two rows")

// ProfileChart describes one diff-profile image.
type ProfileChart struct {
	Title      string
	Diffs      []slicer.RowDiff
	Threshold  uint8
	Boundaries []int
}

func createLine(xvalues []float64, y float64, c drawing.Color) chart.ContinuousSeries {
	yvalues := make([]float64, len(xvalues))
	for i := range yvalues {
		yvalues[i] = y
	}
	return chart.ContinuousSeries{
		Name:    "threshold",
		XValues: xvalues,
		YValues: yvalues,
		Style: chart.Style{
			StrokeColor:     c,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
}

// downsample keeps the largest diff of each bucket so narrow spikes survive.
func downsample(diffs []slicer.RowDiff, limit int) []slicer.RowDiff {
	if len(diffs) <= limit {
		return diffs
	}
	bucket := (len(diffs) + limit - 1) / limit
	out := make([]slicer.RowDiff, 0, limit)
	for start := 0; start < len(diffs); start += bucket {
		end := min(start+bucket, len(diffs))
		best := diffs[start]
		for _, d := range diffs[start+1 : end] {
			if d.MaxDiff > best.MaxDiff {
				best = d
			}
		}
		out = append(out, best)
	}
	return out
}

// Render writes the chart as PNG. Cuts are drawn as vertical grid lines.
func (p ProfileChart) Render(w io.Writer) error {
	diffs := downsample(p.Diffs, maxPoints)
	if len(diffs) < 2 {
		return ErrProfileTooShort
	}

	xvalues := make([]float64, len(diffs))
	yvalues := make([]float64, len(diffs))
	for i, d := range diffs {
		xvalues[i] = float64(d.Row)
		yvalues[i] = float64(d.MaxDiff)
	}

	var cuts []chart.GridLine
	for _, b := range p.Boundaries {
		if b <= 0 || float64(b) > xvalues[len(xvalues)-1] {
			continue
		}
		cuts = append(cuts, chart.GridLine{Value: float64(b)})
	}

	graph := chart.Chart{
		Title:  p.Title,
		Width:  profileWidth,
		Height: profileHeight,
		XAxis: chart.XAxis{
			Name: "Row",
			Range: &chart.ContinuousRange{
				Min: xvalues[0],
				Max: xvalues[len(xvalues)-1],
			},
			GridLines: cuts,
			GridMajorStyle: chart.Style{
				StrokeColor: chart.ColorRed,
				StrokeWidth: 1.0,
			},
		},
		YAxis: chart.YAxis{
			Name: "Max channel difference",
			Range: &chart.ContinuousRange{
				Min: 0.0,
				Max: 255.0,
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "row difference",
				XValues: xvalues,
				YValues: yvalues,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
				},
			},
			createLine(xvalues, float64(p.Threshold), chart.ColorAlternateGray),
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render profile chart: %w", err)
	}
	return nil
}
