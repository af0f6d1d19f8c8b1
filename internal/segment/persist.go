package segment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"slasher/internal/fileutil"
	"slasher/internal/imageio"
	"slasher/internal/logging"
)

// Written describes a persisted segment.
type Written struct {
	Index    int
	StartRow int
	EndRow   int
	Path     string
	Bytes    int64
}

// Persistor stores one segment of a group.
type Persistor interface {
	Persist(ctx context.Context, group string, seg Segment) (Written, error)
}

// FilePersistor writes segments to {Root}/{group}/{group}_{index}.{ext}.
type FilePersistor struct {
	Root    string
	Format  imageio.Format
	Options imageio.EncodeOptions
}

// NewFilePersistor returns a persistor rooted at root.
func NewFilePersistor(root string, format imageio.Format, opts imageio.EncodeOptions) *FilePersistor {
	return &FilePersistor{Root: root, Format: format, Options: opts}
}

// FileName is the deterministic segment file name.
func FileName(group string, index int, format imageio.Format) string {
	return group + "_" + strconv.Itoa(index) + "." + format.Extension()
}

// GroupDir is the directory that receives a group's segments.
func (p *FilePersistor) GroupDir(group string) string {
	return filepath.Join(p.Root, group)
}

// Persist encodes seg and writes it atomically.
func (p *FilePersistor) Persist(ctx context.Context, group string, seg Segment) (Written, error) {
	if err := ctx.Err(); err != nil {
		return Written{}, err
	}
	dir := p.GroupDir(group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Written{}, fmt.Errorf("create group directory: %w", err)
	}
	path := filepath.Join(dir, FileName(group, seg.Index, p.Format))
	img := seg.Buffer.Image()
	n, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return imageio.Encode(w, img, p.Format, p.Options)
	})
	if err != nil {
		return Written{}, fmt.Errorf("write segment %d: %w", seg.Index, err)
	}
	return Written{Index: seg.Index, StartRow: seg.StartRow, EndRow: seg.EndRow, Path: path, Bytes: n}, nil
}

// Result summarizes PersistAll.
type Result struct {
	Written []Written
	Failed  int
	LastErr error
}

// Bytes totals the size of written segments.
func (r Result) Bytes() int64 {
	var total int64
	for _, w := range r.Written {
		total += w.Bytes
	}
	return total
}

// PersistAll writes every segment, logging and skipping individual failures.
// onWritten, when non-nil, is called after each successful write. Only
// context cancellation stops the loop early.
func PersistAll(ctx context.Context, p Persistor, group string, segments []Segment, logger *slog.Logger, onWritten func(Written)) Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	var res Result
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			res.Failed += len(segments) - i
			res.LastErr = err
			return res
		}
		w, err := p.Persist(ctx, group, seg)
		if err != nil {
			res.Failed++
			res.LastErr = err
			attrs := append(logging.Rows(seg.StartRow, seg.EndRow),
				logging.Int("index", seg.Index),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check free space and permissions on the output directory"),
				logging.String(logging.FieldImpact, "this segment is missing from the output"),
			)
			logging.WarnWithContext(logger, "segment write failed; continuing with remaining segments", "segment_write_failed", attrs...)
			continue
		}
		attrs := append(logging.Rows(w.StartRow, w.EndRow),
			logging.Int("index", w.Index),
			logging.String("path", w.Path),
			logging.Int64("size_bytes", w.Bytes),
		)
		logger.LogAttrs(ctx, slog.LevelDebug, "segment written", attrs...)
		res.Written = append(res.Written, w)
		if onWritten != nil {
			onWritten(w)
		}
	}
	return res
}
