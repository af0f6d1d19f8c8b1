package pipeline

import (
	"time"

	"slasher/internal/manifest"
)

// GroupResult is the outcome of one group.
type GroupResult struct {
	Name           string
	Files          int
	Height         int
	Boundaries     []int
	Segments       int
	FailedSegments int
	Bytes          int64
	Duration       time.Duration
	Err            error
}

// Summary aggregates a run.
type Summary struct {
	RunID           string
	InputDir        string
	OutputDir       string
	Groups          []GroupResult
	FilesTotal      int
	GroupsFailed    int
	SegmentsWritten int
	SegmentsFailed  int
	Bytes           int64
	Duration        time.Duration
}

// HasFailures reports whether any group or segment failed.
func (s *Summary) HasFailures() bool {
	return s.GroupsFailed > 0 || s.SegmentsFailed > 0
}

// Status maps the summary to a manifest run status.
func (s *Summary) Status() string {
	switch {
	case len(s.Groups) > 0 && s.GroupsFailed == len(s.Groups):
		return manifest.StatusFailed
	case s.HasFailures():
		return manifest.StatusPartial
	default:
		return manifest.StatusCompleted
	}
}

func (s *Summary) add(res GroupResult) {
	s.Groups = append(s.Groups, res)
	if res.Err != nil {
		s.GroupsFailed++
	}
	s.SegmentsWritten += res.Segments
	s.SegmentsFailed += res.FailedSegments
	s.Bytes += res.Bytes
}
