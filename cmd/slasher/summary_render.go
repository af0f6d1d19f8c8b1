package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"slasher/internal/manifest"
	"slasher/internal/pipeline"
)

func renderSummary(s *pipeline.Summary, colorize bool) string {
	headers := []string{"Group", "Files", "Height", "Segments", "Failed", "Size", "Time", "Result"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(s.Groups))
	for _, g := range s.Groups {
		result := "ok"
		switch {
		case g.Err != nil:
			result = "error: " + truncate(g.Err.Error(), 60)
		case g.FailedSegments > 0:
			result = "partial"
		}
		rows = append(rows, []string{
			g.Name,
			strconv.Itoa(g.Files),
			strconv.Itoa(g.Height),
			strconv.Itoa(g.Segments),
			strconv.Itoa(g.FailedSegments),
			humanize.Bytes(uint64(max(g.Bytes, 0))),
			formatDuration(g.Duration),
			result,
		})
	}

	view := tableView{
		Headers: headers,
		Rows:    rows,
		Aligns:  aligns,
		Footer: []string{
			"Total",
			strconv.Itoa(s.FilesTotal),
			"",
			strconv.Itoa(s.SegmentsWritten),
			strconv.Itoa(s.SegmentsFailed),
			humanize.Bytes(uint64(max(s.Bytes, 0))),
			formatDuration(s.Duration),
			"",
		},
	}

	var b strings.Builder
	b.WriteString(view.Render())
	b.WriteString("\n")
	b.WriteString(renderStatusLine("Run "+shortID(s.RunID), runStatusKind(s.Status()), fmt.Sprintf(
		"%s: %d group(s), %d segment(s), %s in %s",
		s.Status(), len(s.Groups), s.SegmentsWritten, humanize.Bytes(uint64(max(s.Bytes, 0))), formatDuration(s.Duration),
	), colorize))
	if s.HasFailures() {
		b.WriteString("\n")
		b.WriteString(renderStatusLine("Failures", statusWarn, fmt.Sprintf(
			"%d group(s), %d segment(s); see the log for details", s.GroupsFailed, s.SegmentsFailed,
		), colorize))
	}
	b.WriteString("\n")
	b.WriteString(renderStatusLine("Output", statusInfo, s.OutputDir, colorize))
	return b.String()
}

func runStatusKind(status string) statusKind {
	switch status {
	case manifest.StatusCompleted:
		return statusOK
	case manifest.StatusPartial, manifest.StatusRunning:
		return statusWarn
	case manifest.StatusFailed:
		return statusError
	default:
		return statusInfo
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
