// Package progress reports how many source files a run has consumed.
//
// Interactive terminals get a progress bar; anything else (pipes, CI, log
// files) gets sampled log lines so the output stays readable.
package progress

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"slasher/internal/logging"
)

// Reporter tracks files processed out of the total discovered. Advance is
// safe for concurrent use.
type Reporter interface {
	// Advance records that a group finished, consuming files source files.
	Advance(group string, files int)
	// Finish marks the run complete.
	Finish()
}

// New picks a bar when w is a terminal and sampled logging otherwise.
func New(w io.Writer, total int, logger *slog.Logger) Reporter {
	if isTerminal(w) {
		return NewBar(w, total)
	}
	return NewLog(logger, total)
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok || file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Bar renders a terminal progress bar.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

// NewBar builds a bar that counts files.
func NewBar(w io.Writer, total int) *Bar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("slicing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar}
}

// Advance implements Reporter.
func (b *Bar) Advance(group string, files int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar.Describe(group)
	_ = b.bar.Add(files)
}

// Finish implements Reporter.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bar.Describe("done")
	_ = b.bar.Finish()
}

// Log emits progress as structured log lines, thinned by a ProgressSampler.
type Log struct {
	mu      sync.Mutex
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

// NewLog builds a log reporter. Lines are emitted every 5% or when the
// group changes, whichever comes first.
func NewLog(logger *slog.Logger, total int) *Log {
	return &Log{
		logger:  logging.NewComponentLogger(logger, "progress"),
		sampler: logging.NewProgressSampler(5),
		total:   total,
	}
}

// Advance implements Reporter.
func (l *Log) Advance(group string, files int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done += files
	percent := -1.0
	if l.total > 0 {
		percent = float64(l.done) * 100 / float64(l.total)
	}
	if !l.sampler.ShouldLog(percent, group) {
		return
	}
	l.logger.Info("progress",
		logging.String(logging.FieldGroup, group),
		logging.Int("files_done", l.done),
		logging.Int("files_total", l.total),
	)
}

// Finish implements Reporter.
func (l *Log) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Info("all groups processed", logging.Int("files_done", l.done), logging.Int("files_total", l.total))
}

// Nop discards progress.
type Nop struct{}

// Advance implements Reporter.
func (Nop) Advance(string, int) {}

// Finish implements Reporter.
func (Nop) Finish() {}
