package manifest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRunNotFound reports an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
)

// Run is one invocation of the slice command.
type Run struct {
	ID         string
	InputDir   string
	OutputDir  string
	Strategy   string
	Threshold  int
	CropHeight int
	AuraMargin int
	ScanStep   int
	FolderMode bool
	Format     string

	Status          string
	GroupsTotal     int
	GroupsFailed    int
	SegmentsWritten int
	SegmentsFailed  int
	BytesWritten    int64
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Group is the recorded outcome of one group within a run.
type Group struct {
	Name           string
	Files          int
	Height         int
	Boundaries     []int
	Segments       int
	FailedSegments int
	Error          string
}

// Segment is one written file.
type Segment struct {
	Group    string
	Index    int
	StartRow int
	EndRow   int
	Path     string
	Bytes    int64
}

// BeginRun inserts run with status running. StartedAt defaults to now.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	return s.exec(ctx, `INSERT INTO runs (
            id, input_dir, output_dir, strategy, threshold, crop_height,
            aura_margin, scan_step, folder_mode, format, status, started_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.InputDir, run.OutputDir, run.Strategy, run.Threshold, run.CropHeight,
		run.AuraMargin, run.ScanStep, boolToInt(run.FolderMode), run.Format, StatusRunning,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
	)
}

// RecordGroup stores the outcome of one group.
func (s *Store) RecordGroup(ctx context.Context, runID string, g Group) error {
	boundaries, err := json.Marshal(g.Boundaries)
	if err != nil {
		return fmt.Errorf("encode boundaries: %w", err)
	}
	if g.Boundaries == nil {
		boundaries = []byte("[]")
	}
	return s.exec(ctx, `INSERT OR REPLACE INTO run_groups (
            run_id, name, files, height, boundaries, segments, failed_segments, error
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, g.Name, g.Files, g.Height, string(boundaries), g.Segments, g.FailedSegments, g.Error,
	)
}

// RecordSegment stores one written segment.
func (s *Store) RecordSegment(ctx context.Context, runID string, seg Segment) error {
	return s.exec(ctx, `INSERT OR REPLACE INTO segments (
            run_id, group_name, idx, start_row, end_row, path, bytes
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, seg.Group, seg.Index, seg.StartRow, seg.EndRow, seg.Path, seg.Bytes,
	)
}

// FinishRun stores final counts and status. FinishedAt defaults to now.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	if run.Status == "" {
		run.Status = StatusCompleted
	}
	return s.exec(ctx, `UPDATE runs SET
            status = ?, groups_total = ?, groups_failed = ?, segments_written = ?,
            segments_failed = ?, bytes_written = ?, finished_at = ?
        WHERE id = ?`,
		run.Status, run.GroupsTotal, run.GroupsFailed, run.SegmentsWritten,
		run.SegmentsFailed, run.BytesWritten, run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.ID,
	)
}

const runColumns = `id, input_dir, output_dir, strategy, threshold, crop_height, aura_margin,
    scan_step, folder_mode, format, status, groups_total, groups_failed, segments_written,
    segments_failed, bytes_written, started_at, finished_at`

// GetRun loads one run.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// RecentRuns lists up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Groups lists the recorded groups of a run in name order.
func (s *Store) Groups(ctx context.Context, runID string) ([]Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, files, height, boundaries, segments, failed_segments, error
        FROM run_groups WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var (
			g   Group
			raw string
		)
		if err := rows.Scan(&g.Name, &g.Files, &g.Height, &raw, &g.Segments, &g.FailedSegments, &g.Error); err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &g.Boundaries); err != nil {
			return nil, fmt.Errorf("decode boundaries for %s: %w", g.Name, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// Segments lists the written segments of a run ordered by group and index.
func (s *Store) Segments(ctx context.Context, runID string) ([]Segment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT group_name, idx, start_row, end_row, path, bytes
        FROM segments WHERE run_id = ? ORDER BY group_name, idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.Group, &seg.Index, &seg.StartRow, &seg.EndRow, &seg.Path, &seg.Bytes); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		folderMode  int
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID, &run.InputDir, &run.OutputDir, &run.Strategy, &run.Threshold, &run.CropHeight,
		&run.AuraMargin, &run.ScanStep, &folderMode, &run.Format, &run.Status, &run.GroupsTotal,
		&run.GroupsFailed, &run.SegmentsWritten, &run.SegmentsFailed, &run.BytesWritten,
		&startedRaw, &finishedRaw,
	); err != nil {
		return nil, err
	}
	run.FolderMode = folderMode != 0
	var err error
	if run.StartedAt, err = parseTime(startedRaw); err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	if finishedRaw.Valid && finishedRaw.String != "" {
		if run.FinishedAt, err = parseTime(finishedRaw.String); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
	}
	return &run, nil
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// Duration is the wall time of a finished run.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
