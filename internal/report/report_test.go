package report_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"slasher/internal/report"
	"slasher/internal/slicer"
	"slasher/internal/testsupport"
)

func TestProfileChartRendersPNG(t *testing.T) {
	buf := testsupport.NoiseBuffer(t, 60, 8, 3)
	testsupport.FillFlat(buf, 20, 25, testsupport.Gray)

	chart := report.ProfileChart{
		Title:      "strip",
		Diffs:      slicer.Profile(buf, 1),
		Threshold:  0,
		Boundaries: []int{0, 20, 60},
	}
	var out bytes.Buffer
	if err := chart.Render(&out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != 3840 || img.Bounds().Dy() != 1080 {
		t.Fatalf("unexpected chart size %v", img.Bounds())
	}
}

func TestProfileChartDownsamplesLongProfiles(t *testing.T) {
	diffs := make([]slicer.RowDiff, 10000)
	for i := range diffs {
		diffs[i] = slicer.RowDiff{Row: i, MaxDiff: uint8(i % 200)}
	}
	var out bytes.Buffer
	if err := (report.ProfileChart{Diffs: diffs}).Render(&out); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out.Len() == 0 {
		t.Fatal("expected chart bytes")
	}
}

func TestProfileChartTooShort(t *testing.T) {
	err := report.ProfileChart{Diffs: []slicer.RowDiff{{Row: 0}}}.Render(&bytes.Buffer{})
	if !errors.Is(err, report.ErrProfileTooShort) {
		t.Fatalf("expected ErrProfileTooShort, got %v", err)
	}
}

func TestPDFBundle(t *testing.T) {
	doc := report.NewPDF("strip")
	for _, h := range []int{30, 45} {
		if err := doc.AddImage(testsupport.NoiseBuffer(t, h, 12, 3).Image()); err != nil {
			t.Fatalf("AddImage: %v", err)
		}
	}
	if doc.Pages() != 2 {
		t.Fatalf("pages = %d, want 2", doc.Pages())
	}
	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not look like a PDF: %q", out.Bytes()[:8])
	}
}

func TestPDFWithoutPages(t *testing.T) {
	if err := report.NewPDF("empty").Write(&bytes.Buffer{}); err == nil {
		t.Fatal("expected error for empty document")
	}
}
