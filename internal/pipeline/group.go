package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"slasher/internal/discovery"
	"slasher/internal/fileutil"
	"slasher/internal/imageio"
	"slasher/internal/logging"
	"slasher/internal/manifest"
	"slasher/internal/pixbuf"
	"slasher/internal/report"
	"slasher/internal/segment"
	"slasher/internal/slicer"
)

// LoadGroup decodes every file of g and stacks them top to bottom. Files
// must share width and channel count after flattening.
func LoadGroup(ctx context.Context, g discovery.Group, mode pixbuf.ColorMode) (*pixbuf.Buffer, error) {
	parts := make([]*pixbuf.Buffer, 0, len(g.Files))
	for _, path := range g.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imageio.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		buf, err := pixbuf.FromImage(img, mode)
		if err != nil {
			return nil, fmt.Errorf("flatten %s: %w", path, err)
		}
		parts = append(parts, buf)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("group %s: %w", g.Name, discovery.ErrNoImages)
	}
	combined, err := pixbuf.Concat(parts...)
	if err != nil {
		return nil, fmt.Errorf("stack group %s: %w", g.Name, err)
	}
	return combined, nil
}

// ProcessGroup runs load, scan, extract and persist for one group. Errors
// are logged and returned in the result; they never stop the run.
func (r *Runner) ProcessGroup(ctx context.Context, g discovery.Group) GroupResult {
	started := time.Now()
	ctx = logging.WithGroupName(ctx, g.Name)
	logger := logging.WithContext(ctx, r.logger)

	res := GroupResult{Name: g.Name, Files: len(g.Files)}
	err := r.processGroup(ctx, g, logger, &res)
	res.Duration = time.Since(started)
	if err != nil {
		res.Err = err
		logging.ErrorWithContext(logger, "group failed; continuing with next group", "group_failed",
			logging.Int("files", res.Files),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check that the group's images decode and share one width"),
			logging.String(logging.FieldImpact, "no complete output for this group"),
		)
	} else {
		logger.Info("group sliced",
			logging.String(logging.FieldEventType, "group_complete"),
			logging.Int("files", res.Files),
			logging.Int("height", res.Height),
			logging.Int("segments", res.Segments),
			logging.Int("failed_segments", res.FailedSegments),
			logging.Int64("output_bytes", res.Bytes),
			logging.Duration("duration", res.Duration),
		)
	}
	r.recordGroup(ctx, res)
	return res
}

func (r *Runner) processGroup(ctx context.Context, g discovery.Group, logger *slog.Logger, res *GroupResult) error {
	buf, err := LoadGroup(ctx, g, r.color)
	if err != nil {
		return err
	}
	res.Height = buf.Height
	logger.Debug("group loaded",
		logging.Int("height", buf.Height),
		logging.Int("width", buf.Width),
		logging.Int("channels", buf.Channels),
	)

	boundaries, err := r.strategy.Boundaries(buf, r.params)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	res.Boundaries = boundaries

	segments, err := segment.Extract(buf, boundaries)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}

	written := segment.PersistAll(ctx, r.persistor, g.Name, segments, logger, func(w segment.Written) {
		r.recordSegment(ctx, g.Name, w)
	})
	res.Segments = len(written.Written)
	res.FailedSegments = written.Failed
	res.Bytes = written.Bytes()
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.cfg.Output.Profile {
		r.writeArtifact(logger, "profile", r.artifactPath(g.Name, "_profile.png"), func(w io.Writer) error {
			return report.ProfileChart{
				Title:      g.Name,
				Diffs:      slicer.Profile(buf, r.params.ScanStep),
				Threshold:  r.params.Threshold,
				Boundaries: boundaries,
			}.Render(w)
		})
	}
	if r.cfg.Output.PDFBundle {
		r.writeArtifact(logger, "pdf", r.artifactPath(g.Name, ".pdf"), func(w io.Writer) error {
			doc := report.NewPDF(g.Name)
			for _, seg := range segments {
				if err := doc.AddImage(seg.Buffer.Image()); err != nil {
					return fmt.Errorf("segment %d: %w", seg.Index, err)
				}
			}
			logger.Debug("pdf bundle assembled", logging.Int("pages", doc.Pages()))
			return doc.Write(w)
		})
	}
	return nil
}

func (r *Runner) artifactPath(group, suffix string) string {
	return filepath.Join(r.outputDir, group, group+suffix)
}

// writeArtifact writes an optional side file. Failures only warn.
func (r *Runner) writeArtifact(logger *slog.Logger, kind, path string, write fileutil.WriteFunc) {
	err := os.MkdirAll(filepath.Dir(path), 0o755)
	var n int64
	if err == nil {
		n, err = fileutil.WriteAtomic(path, 0o644, write)
	}
	if err != nil {
		logging.WarnWithContext(logger, "artifact write failed", "artifact_write_failed",
			logging.String("artifact", kind),
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "segments are unaffected"),
		)
		return
	}
	logger.Debug("artifact written",
		logging.String("artifact", kind),
		logging.String("path", path),
		logging.Int64("size_bytes", n),
	)
}

func (r *Runner) recordSegment(ctx context.Context, group string, w segment.Written) {
	if r.store == nil {
		return
	}
	err := r.store.RecordSegment(context.WithoutCancel(ctx), r.runID, manifest.Segment{
		Group:    group,
		Index:    w.Index,
		StartRow: w.StartRow,
		EndRow:   w.EndRow,
		Path:     w.Path,
		Bytes:    w.Bytes,
	})
	if err != nil {
		r.warnManifest("record segment", err)
	}
}

func (r *Runner) recordGroup(ctx context.Context, res GroupResult) {
	if r.store == nil {
		return
	}
	g := manifest.Group{
		Name:           res.Name,
		Files:          res.Files,
		Height:         res.Height,
		Boundaries:     res.Boundaries,
		Segments:       res.Segments,
		FailedSegments: res.FailedSegments,
	}
	if res.Err != nil {
		g.Error = res.Err.Error()
	}
	if err := r.store.RecordGroup(context.WithoutCancel(ctx), r.runID, g); err != nil {
		r.warnManifest("record group", err)
	}
}
