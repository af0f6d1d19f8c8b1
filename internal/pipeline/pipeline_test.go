package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gofrs/flock"

	"slasher/internal/config"
	"slasher/internal/logging"
	"slasher/internal/manifest"
	"slasher/internal/pipeline"
	"slasher/internal/pixbuf"
	"slasher/internal/progress"
	"slasher/internal/testsupport"
)

// bandedBuffer is noise with a flat band at rows [45, 55); the standard
// scanner with crop 40 and aura 2 cuts at row 45.
func bandedBuffer(t *testing.T, height int) *pixbuf.Buffer {
	t.Helper()
	buf := testsupport.NoiseBuffer(t, height, 8, 3)
	testsupport.FillFlat(buf, 45, 55, testsupport.Gray)
	return buf
}

func newRunner(t *testing.T, cfg *config.Config, store *manifest.Store) *pipeline.Runner {
	t.Helper()
	runner, err := pipeline.New(pipeline.Options{Config: cfg, RunID: "run-test", Manifest: store})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return runner
}

func checkBoundaries(t *testing.T, res pipeline.GroupResult) {
	t.Helper()
	b := res.Boundaries
	if len(b) < 2 || b[0] != 0 || b[len(b)-1] != res.Height {
		t.Fatalf("group %s: boundaries %v do not span height %d", res.Name, b, res.Height)
	}
	for i := 1; i < len(b); i++ {
		if b[i] <= b[i-1] {
			t.Fatalf("group %s: boundaries %v not strictly increasing", res.Name, b)
		}
	}
}

// reassemble reads the written segments of a group back in index order.
func reassemble(t *testing.T, outDir string, res pipeline.GroupResult) *pixbuf.Buffer {
	t.Helper()
	parts := make([]*pixbuf.Buffer, 0, res.Segments)
	for i := 0; i < res.Segments; i++ {
		name := res.Name + "_" + strconv.Itoa(i) + ".png"
		parts = append(parts, testsupport.ReadPNG(t, filepath.Join(outDir, res.Name, name)))
	}
	joined, err := pixbuf.Concat(parts...)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	return joined
}

func TestRunSlicesEachImage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tall := bandedBuffer(t, 100)
	short := testsupport.NoiseBuffer(t, 30, 8, 3)
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "tall.png"), tall)
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "short.png"), short)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.InputDir, "notes.txt"), []byte("skip me"))

	store := testsupport.MustOpenManifest(t, cfg)
	summary, err := newRunner(t, cfg, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Groups) != 2 || summary.FilesTotal != 2 {
		t.Fatalf("expected two single-image groups, got %+v", summary.Groups)
	}
	if summary.Status() != manifest.StatusCompleted || summary.HasFailures() {
		t.Fatalf("unexpected status %s", summary.Status())
	}

	byName := map[string]pipeline.GroupResult{}
	for _, res := range summary.Groups {
		checkBoundaries(t, res)
		byName[res.Name] = res
	}

	shortRes := byName["short"]
	if shortRes.Segments != 1 || shortRes.Height != 30 {
		t.Fatalf("short image should pass through whole: %+v", shortRes)
	}
	tallRes := byName["tall"]
	if tallRes.Boundaries[1] != 45 {
		t.Fatalf("expected first cut at 45, got %v", tallRes.Boundaries)
	}

	got := reassemble(t, cfg.Paths.OutputDir, tallRes)
	if !bytes.Equal(got.Data, tall.Data) {
		t.Fatal("reassembled segments differ from the source image")
	}
	if summary.SegmentsWritten != tallRes.Segments+1 || summary.Bytes <= 0 {
		t.Fatalf("unexpected totals: %+v", summary)
	}

	run, err := store.GetRun(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Status != manifest.StatusCompleted || run.SegmentsWritten != summary.SegmentsWritten {
		t.Fatalf("manifest run mismatch: %+v", run)
	}
	segs, err := store.Segments(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segs) != summary.SegmentsWritten {
		t.Fatalf("manifest has %d segments, want %d", len(segs), summary.SegmentsWritten)
	}
}

func TestRunFolderModeConcatenatesFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolderMode(true))
	chapter := filepath.Join(cfg.Paths.InputDir, "chapter")
	parts := []*pixbuf.Buffer{
		bandedBuffer(t, 100),
		testsupport.NoiseBuffer(t, 150, 8, 3),
		bandedBuffer(t, 120),
	}
	for i, part := range parts {
		testsupport.WritePNG(t, filepath.Join(chapter, "0"+strconv.Itoa(i+1)+".png"), part)
	}

	summary, err := newRunner(t, cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Groups) != 1 {
		t.Fatalf("expected one folder group, got %d", len(summary.Groups))
	}
	res := summary.Groups[0]
	if res.Name != "chapter" || res.Files != 3 || res.Height != 370 {
		t.Fatalf("unexpected group result: %+v", res)
	}
	checkBoundaries(t, res)

	want, err := pixbuf.Concat(parts...)
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	got := reassemble(t, cfg.Paths.OutputDir, res)
	if !bytes.Equal(got.Data, want.Data) {
		t.Fatal("reassembled chapter differs from the stacked sources")
	}
}

func TestRunContinuesAfterGroupFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolderMode(true))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "bad", "01.png"), testsupport.NoiseBuffer(t, 20, 8, 3))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "bad", "02.png"), testsupport.NoiseBuffer(t, 20, 5, 3))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "good", "01.png"), bandedBuffer(t, 90))

	store := testsupport.MustOpenManifest(t, cfg)
	summary, err := newRunner(t, cfg, store).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.GroupsFailed != 1 || summary.Status() != manifest.StatusPartial {
		t.Fatalf("expected one failed group, got %d (%s)", summary.GroupsFailed, summary.Status())
	}
	if summary.Groups[0].Name != "bad" || !errors.Is(summary.Groups[0].Err, pixbuf.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch for bad, got %+v", summary.Groups[0])
	}
	good := summary.Groups[1]
	if good.Err != nil || good.Segments < 2 {
		t.Fatalf("good group should still be sliced: %+v", good)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "good", "good_0.png")); err != nil {
		t.Fatalf("expected good segment on disk: %v", err)
	}

	groups, err := store.Groups(context.Background(), "run-test")
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	if len(groups) != 2 || groups[0].Error == "" || groups[1].Error != "" {
		t.Fatalf("unexpected manifest groups: %+v", groups)
	}
}

func TestRunRejectsLockedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "a.png"), bandedBuffer(t, 60))
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatalf("mkdir output: %v", err)
	}

	holder := flock.New(filepath.Join(cfg.Paths.OutputDir, ".slasher.lock"))
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = holder.Unlock() })

	_, err = newRunner(t, cfg, nil).Run(context.Background())
	if !errors.Is(err, pipeline.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
}

func TestRunWithWorkersKeepsDiscoveryOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolderMode(true))
	cfg.Run.Workers = 3
	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, name, "01.png"), bandedBuffer(t, 80))
	}

	summary, err := newRunner(t, cfg, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Groups) != len(names) {
		t.Fatalf("got %d groups, want %d", len(summary.Groups), len(names))
	}
	for i, res := range summary.Groups {
		if res.Name != names[i] {
			t.Fatalf("group %d is %s, want %s", i, res.Name, names[i])
		}
		if res.Err != nil {
			t.Fatalf("group %s failed: %v", res.Name, res.Err)
		}
		checkBoundaries(t, res)
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	total    int
	files    int
	groups   []string
	finished bool
}

func (r *recordingReporter) Advance(group string, files int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files += files
	r.groups = append(r.groups, group)
}

func (r *recordingReporter) Finish() { r.finished = true }

func TestRunAdvancesProgressByFiles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFolderMode(true))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "one", "01.png"), bandedBuffer(t, 60))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "one", "02.png"), bandedBuffer(t, 60))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "two", "01.png"), testsupport.NoiseBuffer(t, 20, 3, 3))
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "two", "02.png"), testsupport.NoiseBuffer(t, 20, 4, 3))

	rec := &recordingReporter{}
	runner, err := pipeline.New(pipeline.Options{
		Config: cfg,
		Progress: func(total int) progress.Reporter {
			rec.total = total
			return rec
		},
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if _, err := runner.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.total != 4 || rec.files != 4 || len(rec.groups) != 2 || !rec.finished {
		t.Fatalf("unexpected progress: %+v", rec)
	}
}

func TestRunWritesOptionalArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.Profile = true
	cfg.Output.PDFBundle = true
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "strip.png"), bandedBuffer(t, 100))

	var logs bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &logs})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	runner, err := pipeline.New(pipeline.Options{Config: cfg, RunID: "run-test", Logger: logger})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	summary, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, name := range []string{"strip_profile.png", "strip.pdf"} {
		info, err := os.Stat(filepath.Join(cfg.Paths.OutputDir, "strip", name))
		if err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}

	// One PDF page per written segment.
	wantPages := len(summary.Groups[0].Boundaries) - 1
	var assembled map[string]any
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var record map[string]any
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		if record["msg"] == "pdf bundle assembled" {
			assembled = record
		}
	}
	if assembled == nil || assembled["pages"] != float64(wantPages) {
		t.Fatalf("pdf bundle record = %v, want pages=%d", assembled, wantPages)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WritePNG(t, filepath.Join(cfg.Paths.InputDir, "a.png"), bandedBuffer(t, 60))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRunner(t, cfg, nil).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := pipeline.New(pipeline.Options{}); err == nil {
		t.Fatal("expected error for missing config")
	}
	cfg := testsupport.NewConfig(t)
	cfg.Scan.CropHeight = 0
	if _, err := pipeline.New(pipeline.Options{Config: cfg}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewGeneratesRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	runner, err := pipeline.New(pipeline.Options{Config: cfg})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if len(runner.RunID()) != 36 {
		t.Fatalf("expected uuid run id, got %q", runner.RunID())
	}
}
