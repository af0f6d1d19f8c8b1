package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"slasher/internal/manifest"
)

type historyRow struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	InputDir        string    `json:"input_dir"`
	OutputDir       string    `json:"output_dir"`
	Strategy        string    `json:"strategy"`
	GroupsTotal     int       `json:"groups_total"`
	GroupsFailed    int       `json:"groups_failed"`
	SegmentsWritten int       `json:"segments_written"`
	SegmentsFailed  int       `json:"segments_failed"`
	BytesWritten    int64     `json:"bytes_written"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent slice runs from the manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Manifest.Enabled {
				return errors.New("manifest is disabled (manifest.enabled = false)")
			}
			path := cfg.ManifestPath()
			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			store, err := manifest.Open(path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				rows := make([]historyRow, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, historyRow{
						ID:              run.ID,
						Status:          run.Status,
						InputDir:        run.InputDir,
						OutputDir:       run.OutputDir,
						Strategy:        run.Strategy,
						GroupsTotal:     run.GroupsTotal,
						GroupsFailed:    run.GroupsFailed,
						SegmentsWritten: run.SegmentsWritten,
						SegmentsFailed:  run.SegmentsFailed,
						BytesWritten:    run.BytesWritten,
						StartedAt:       run.StartedAt,
						FinishedAt:      run.FinishedAt,
					})
				}
				return writeJSON(cmd, rows)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}
			fmt.Fprintln(out, renderHistory(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderHistory(runs []*manifest.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Status,
			run.InputDir,
			run.Strategy,
			fmt.Sprintf("%d/%d", run.GroupsTotal-run.GroupsFailed, run.GroupsTotal),
			strconv.Itoa(run.SegmentsWritten),
			humanize.Bytes(uint64(max(run.BytesWritten, 0))),
			formatDuration(run.Duration()),
		})
	}
	return tableView{
		Headers: []string{"Run", "Started", "Status", "Input", "Strategy", "Groups", "Segments", "Size", "Time"},
		Rows:    rows,
		Aligns: []columnAlignment{
			alignLeft, alignLeft, alignLeft, alignLeft, alignLeft,
			alignRight, alignRight, alignRight, alignRight,
		},
	}.Render()
}
