package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"slasher/internal/config"
	"slasher/internal/discovery"
	"slasher/internal/imageio"
	"slasher/internal/logging"
	"slasher/internal/manifest"
	"slasher/internal/pixbuf"
	"slasher/internal/preflight"
	"slasher/internal/progress"
	"slasher/internal/segment"
	"slasher/internal/slicer"
)

// Options wires a Runner. Only Config is required.
type Options struct {
	Config *config.Config
	// RunID identifies the run in logs and the manifest. Generated when empty.
	RunID  string
	Logger *slog.Logger
	// Manifest, when set, receives the run, group and segment records.
	Manifest *manifest.Store
	// Progress builds the reporter once the file total is known. Defaults to
	// progress.Nop.
	Progress func(total int) progress.Reporter
	// Persistor defaults to a segment.FilePersistor under the output root.
	Persistor segment.Persistor
}

// Runner executes slice runs for one configuration.
type Runner struct {
	cfg       *config.Config
	runID     string
	logger    *slog.Logger
	store     *manifest.Store
	progress  func(total int) progress.Reporter
	persistor segment.Persistor
	strategy  slicer.Strategy
	params    slicer.Params
	color     pixbuf.ColorMode
	format    imageio.Format
	outputDir string
}

// New validates the configuration and prepares a Runner.
func New(opts Options) (*Runner, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("pipeline: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	strategy, err := slicer.New(cfg.Scan.Strategy)
	if err != nil {
		return nil, err
	}
	color, err := pixbuf.ParseColorMode(cfg.Input.Color)
	if err != nil {
		return nil, err
	}
	format, err := imageio.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:       cfg,
		runID:     opts.RunID,
		store:     opts.Manifest,
		progress:  opts.Progress,
		persistor: opts.Persistor,
		strategy:  strategy,
		params:    cfg.ScanParams(),
		color:     color,
		format:    format,
		outputDir: cfg.ResolvedOutputDir(),
	}
	if r.runID == "" {
		r.runID = uuid.NewString()
	}
	r.logger = logging.NewComponentLogger(opts.Logger, "pipeline")
	if r.progress == nil {
		r.progress = func(int) progress.Reporter { return progress.Nop{} }
	}
	if r.persistor == nil {
		r.persistor = segment.NewFilePersistor(r.outputDir, format, imageio.EncodeOptions{JPEGQuality: cfg.Output.JPEGQuality})
	}
	return r, nil
}

// RunID returns the identifier used for this runner's run.
func (r *Runner) RunID() string {
	return r.runID
}

// Discover lists the groups a run would process.
func (r *Runner) Discover(ctx context.Context) ([]discovery.Group, error) {
	opts := discovery.Options{
		FolderMode: r.cfg.Input.FolderMode,
		Extensions: r.cfg.Input.Extensions,
	}
	if r.outputDir != r.cfg.Paths.InputDir {
		opts.Exclude = []string{r.outputDir}
	}
	return discovery.Discover(ctx, r.cfg.Paths.InputDir, opts)
}

// Run performs preflight, locks the output root, and processes every group.
// The returned error is non-nil only for setup failures or cancellation;
// group and segment failures are reported through the Summary.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	if err := preflight.Failure(preflight.RunAll(r.cfg)); err != nil {
		return nil, err
	}

	lock, err := acquireOutputLock(r.outputDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	groups, err := r.Discover(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:      r.runID,
		InputDir:   r.cfg.Paths.InputDir,
		OutputDir:  r.outputDir,
		FilesTotal: discovery.TotalFiles(groups),
	}

	r.logger.Info("slice run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("input", summary.InputDir),
		logging.String("output", summary.OutputDir),
		logging.String("strategy", r.strategy.Name()),
		logging.Int("groups", len(groups)),
		logging.Int("files", summary.FilesTotal),
		logging.Int("workers", r.cfg.Run.Workers),
		logging.Bool("folder_mode", r.cfg.Input.FolderMode),
	)
	r.beginManifest(ctx, started)

	reporter := r.progress(summary.FilesTotal)
	results := r.processAll(ctx, groups, reporter)
	for _, res := range results {
		summary.add(res)
	}
	reporter.Finish()
	summary.Duration = time.Since(started)

	r.finishManifest(summary)
	r.logger.Info("slice run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.String("status", summary.Status()),
		logging.Int("groups_failed", summary.GroupsFailed),
		logging.Int("segments_written", summary.SegmentsWritten),
		logging.Int("segments_failed", summary.SegmentsFailed),
		logging.Int64("output_bytes", summary.Bytes),
		logging.Duration("duration", summary.Duration),
	)

	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

// processAll fans groups out to the configured number of workers. Results
// keep discovery order. Groups never started because of cancellation are
// reported as failed with the context error.
func (r *Runner) processAll(ctx context.Context, groups []discovery.Group, reporter progress.Reporter) []GroupResult {
	results := make([]GroupResult, len(groups))
	started := make([]bool, len(groups))
	workers := min(max(r.cfg.Run.Workers, 1), len(groups))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.ProcessGroup(ctx, groups[i])
				reporter.Advance(groups[i].Name, len(groups[i].Files))
			}
		}()
	}

feed:
	for i := range groups {
		select {
		case jobs <- i:
			started[i] = true
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for i, ok := range started {
		if !ok {
			results[i] = GroupResult{Name: groups[i].Name, Files: len(groups[i].Files), Err: ctx.Err()}
		}
	}
	return results
}

func (r *Runner) beginManifest(ctx context.Context, started time.Time) {
	if r.store == nil {
		return
	}
	run := manifest.Run{
		ID:         r.runID,
		InputDir:   r.cfg.Paths.InputDir,
		OutputDir:  r.outputDir,
		Strategy:   r.strategy.Name(),
		Threshold:  int(r.params.Threshold),
		CropHeight: r.params.CropHeight,
		AuraMargin: r.params.AuraMargin,
		ScanStep:   r.params.ScanStep,
		FolderMode: r.cfg.Input.FolderMode,
		Format:     string(r.format),
		StartedAt:  started,
	}
	if err := r.store.BeginRun(ctx, run); err != nil {
		r.warnManifest("begin run", err)
	}
}

func (r *Runner) finishManifest(summary *Summary) {
	if r.store == nil {
		return
	}
	run := manifest.Run{
		ID:              r.runID,
		Status:          summary.Status(),
		GroupsTotal:     len(summary.Groups),
		GroupsFailed:    summary.GroupsFailed,
		SegmentsWritten: summary.SegmentsWritten,
		SegmentsFailed:  summary.SegmentsFailed,
		BytesWritten:    summary.Bytes,
	}
	// The run context may already be cancelled; the final record is still wanted.
	if err := r.store.FinishRun(context.Background(), run); err != nil {
		r.warnManifest("finish run", err)
	}
}

func (r *Runner) warnManifest(op string, err error) {
	logging.WarnWithContext(r.logger, "manifest update failed", "manifest_write_failed",
		logging.String("operation", op),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check permissions on the state directory"),
		logging.String(logging.FieldImpact, "history for this run may be incomplete"),
	)
}
