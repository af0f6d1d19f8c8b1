package slicer_test

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"slasher/internal/pixbuf"
	"slasher/internal/slicer"
	"slasher/internal/testsupport"
)

var strategies = []slicer.Strategy{slicer.Standard{}, slicer.Central{}}

func TestNoiseThenFlatBandCutsAtBand(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 40, 10, 3)
	testsupport.FillFlat(buf, 20, 22, testsupport.Gray)
	params := slicer.Params{Threshold: 0, CropHeight: 15, AuraMargin: 3, ScanStep: 1}

	for _, strategy := range strategies {
		t.Run(strategy.Name(), func(t *testing.T) {
			got, err := strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("Boundaries: %v", err)
			}
			want := []int{0, 20, 40}
			if !slices.Equal(got, want) {
				t.Fatalf("boundaries = %v, want %v", got, want)
			}
		})
	}
}

func TestNoCandidatesYieldsSingleSegment(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 64, 6, 3)
	params := slicer.Params{Threshold: 6, CropHeight: 10, AuraMargin: 2, ScanStep: 1}

	for _, strategy := range strategies {
		t.Run(strategy.Name(), func(t *testing.T) {
			got, err := strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("Boundaries: %v", err)
			}
			if !slices.Equal(got, []int{0, 64}) {
				t.Fatalf("boundaries = %v, want [0 64]", got)
			}
		})
	}
}

func TestFlatBufferCutsAtTargetHeight(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 100, 4, 3)
	testsupport.FillFlat(buf, 0, 100, testsupport.Gray)
	params := slicer.Params{Threshold: 0, CropHeight: 30, AuraMargin: 5, ScanStep: 1}

	cases := []struct {
		strategy slicer.Strategy
		want     []int
	}{
		{slicer.Standard{}, []int{0, 29, 58, 87, 100}},
		{slicer.Central{}, []int{0, 30, 60, 90, 100}},
	}
	for _, tc := range cases {
		t.Run(tc.strategy.Name(), func(t *testing.T) {
			got, err := tc.strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("Boundaries: %v", err)
			}
			if !slices.Equal(got, tc.want) {
				t.Fatalf("boundaries = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStandardShiftsCutUpWhenBandBelowIsBusy(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 30, 5, 3)
	testsupport.FillFlat(buf, 3, 10, testsupport.Gray)
	params := slicer.Params{Threshold: 0, CropHeight: 9, AuraMargin: 3, ScanStep: 1}

	got, err := slicer.Standard{}.Boundaries(buf, params)
	if err != nil {
		t.Fatalf("Boundaries: %v", err)
	}
	if want := []int{0, 6, 30}; !slices.Equal(got, want) {
		t.Fatalf("boundaries = %v, want %v", got, want)
	}
}

func TestValidateAura(t *testing.T) {
	cases := []struct {
		name   string
		flat   [2]int
		aura   int
		split  int
		height int
		want   int
	}{
		{name: "uniform band keeps line", flat: [2]int{10, 20}, aura: 4, split: 12, height: 30, want: 12},
		{name: "skipped near bottom", flat: [2]int{0, 0}, aura: 3, split: 8, height: 10, want: 8},
		{name: "zero margin disables check", flat: [2]int{0, 0}, aura: 0, split: 5, height: 10, want: 5},
		{name: "busy band above stays put", flat: [2]int{0, 0}, aura: 3, split: 5, height: 20, want: 5},
		{name: "walk stops at row zero", flat: [2]int{0, 3}, aura: 4, split: 2, height: 20, want: 1},
		{name: "walk is bounded by twice the margin", flat: [2]int{0, 21}, aura: 2, split: 20, height: 40, want: 19},
		{name: "band must hold through the last margin row", flat: [2]int{4, 14}, aura: 4, split: 10, height: 30, want: 7},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := testsupport.NoiseBuffer(t, tc.height, 4, 3)
			testsupport.FillFlat(buf, tc.flat[0], tc.flat[1], testsupport.Gray)
			params := slicer.Params{Threshold: 0, CropHeight: 10, AuraMargin: tc.aura, ScanStep: 1}
			if got := slicer.ValidateAura(buf, params, tc.split); got != tc.want {
				t.Fatalf("ValidateAura = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestScanStepSkipsRows(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 20, 3, 3)
	testsupport.FillFlat(buf, 0, 20, testsupport.Gray)
	params := slicer.Params{Threshold: 0, CropHeight: 5, AuraMargin: 1, ScanStep: 3}

	candidates := slicer.Candidates(buf, params)
	for _, row := range candidates {
		if row%3 != 0 {
			t.Fatalf("candidate row %d is off the scan stride", row)
		}
	}
	if len(candidates) != 7 {
		t.Fatalf("candidates = %v, want 7 rows", candidates)
	}
}

func TestParamsValidation(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 10, 2, 3)
	cases := []slicer.Params{
		{CropHeight: 0, ScanStep: 1},
		{CropHeight: 5, ScanStep: 0},
		{CropHeight: 5, ScanStep: 1, AuraMargin: -1},
	}
	for _, params := range cases {
		for _, strategy := range strategies {
			if _, err := strategy.Boundaries(buf, params); !errors.Is(err, slicer.ErrInvalidParams) {
				t.Fatalf("%s with %+v: expected ErrInvalidParams, got %v", strategy.Name(), params, err)
			}
		}
	}
	empty := &pixbuf.Buffer{Width: 2, Channels: 3}
	if _, err := (slicer.Standard{}).Boundaries(empty, slicer.Params{CropHeight: 5, ScanStep: 1}); !errors.Is(err, slicer.ErrEmptyBuffer) {
		t.Fatalf("expected ErrEmptyBuffer, got %v", err)
	}
}

func TestSingleRowBuffer(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 1, 4, 3)
	for _, strategy := range strategies {
		got, err := strategy.Boundaries(buf, slicer.Params{CropHeight: 1, ScanStep: 1})
		if err != nil {
			t.Fatalf("%s: %v", strategy.Name(), err)
		}
		if !slices.Equal(got, []int{0, 1}) {
			t.Fatalf("%s: boundaries = %v, want [0 1]", strategy.Name(), got)
		}
	}
}

func TestNew(t *testing.T) {
	cases := map[string]string{
		"":          slicer.StrategyStandard,
		"standard":  slicer.StrategyStandard,
		" Central ": slicer.StrategyCentral,
	}
	for input, want := range cases {
		strategy, err := slicer.New(input)
		if err != nil {
			t.Fatalf("New(%q): %v", input, err)
		}
		if strategy.Name() != want {
			t.Fatalf("New(%q).Name() = %q, want %q", input, strategy.Name(), want)
		}
	}
	if _, err := slicer.New("spiral"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

// randomStrip builds a noise buffer with a handful of flat bands of varying
// height and shade.
func randomStrip(t *testing.T, rng *rand.Rand) *pixbuf.Buffer {
	t.Helper()

	height := 20 + rng.Intn(400)
	buf := testsupport.NoiseBuffer(t, height, 1+rng.Intn(8), 1+rng.Intn(4))
	for i := rng.Intn(8); i > 0; i-- {
		start := rng.Intn(height)
		end := start + 1 + rng.Intn(40)
		if end > height {
			end = height
		}
		testsupport.FillFlat(buf, start, end, byte(rng.Intn(256)))
	}
	return buf
}

func randomParams(rng *rand.Rand) slicer.Params {
	return slicer.Params{
		Threshold:  uint8(rng.Intn(10)),
		CropHeight: 1 + rng.Intn(60),
		AuraMargin: rng.Intn(12),
		ScanStep:   1 + rng.Intn(6),
	}
}

func TestBoundaryCoverage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		buf := randomStrip(t, rng)
		params := randomParams(rng)
		for _, strategy := range strategies {
			got, err := strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("%s: %v", strategy.Name(), err)
			}
			if err := slicer.CheckBoundaries(got, buf.Height); err != nil {
				t.Fatalf("%s with %+v on height %d: %v (%v)", strategy.Name(), params, buf.Height, err, got)
			}
		}
	}
}

func TestBoundariesAreIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		buf := randomStrip(t, rng)
		params := randomParams(rng)
		for _, strategy := range strategies {
			first, err := strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("%s: %v", strategy.Name(), err)
			}
			second, err := strategy.Boundaries(buf, params)
			if err != nil {
				t.Fatalf("%s: %v", strategy.Name(), err)
			}
			if !slices.Equal(first, second) {
				t.Fatalf("%s: %v then %v", strategy.Name(), first, second)
			}
		}
	}
}

func TestCandidatesGrowWithThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		buf := randomStrip(t, rng)
		params := randomParams(rng)
		lower := slicer.Candidates(buf, params)
		params.Threshold += uint8(1 + rng.Intn(20))
		higher := slicer.Candidates(buf, params)
		for _, row := range lower {
			if !slices.Contains(higher, row) {
				t.Fatalf("row %d qualified at a lower threshold but not at %d", row, params.Threshold)
			}
		}
	}
}

func TestCheckBoundaries(t *testing.T) {
	cases := []struct {
		name string
		b    []int
		ok   bool
	}{
		{"valid", []int{0, 5, 10}, true},
		{"too short", []int{0}, false},
		{"bad start", []int{1, 10}, false},
		{"bad end", []int{0, 9}, false},
		{"duplicate", []int{0, 5, 5, 10}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := slicer.CheckBoundaries(tc.b, 10)
			if (err == nil) != tc.ok {
				t.Fatalf("CheckBoundaries(%v) = %v, ok want %v", tc.b, err, tc.ok)
			}
		})
	}
}
