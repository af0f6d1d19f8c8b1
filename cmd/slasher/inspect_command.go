package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"slasher/internal/config"
	"slasher/internal/discovery"
	"slasher/internal/fileutil"
	"slasher/internal/pipeline"
	"slasher/internal/pixbuf"
	"slasher/internal/report"
	"slasher/internal/segment"
	"slasher/internal/slicer"
	"slasher/internal/textutil"
)

type inspection struct {
	Group         string `json:"group"`
	Files         int    `json:"files"`
	Height        int    `json:"height"`
	Width         int    `json:"width"`
	CandidateRows int    `json:"candidate_rows"`
	Boundaries    []int  `json:"boundaries"`
	Heights       []int  `json:"heights"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var (
		scan        scanFlags
		profilePath string
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <image-or-dir>",
		Short: "Show where an image would be cut without writing segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := cloneConfig(base)
			scan.apply(cmd, &cfg)
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			target, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			groups, err := inspectGroups(cmd, &cfg, target)
			if err != nil {
				return err
			}
			if profilePath != "" && len(groups) != 1 {
				return fmt.Errorf("--profile needs exactly one group, found %d", len(groups))
			}

			strategy, err := slicer.New(cfg.Scan.Strategy)
			if err != nil {
				return err
			}
			mode, err := pixbuf.ParseColorMode(cfg.Input.Color)
			if err != nil {
				return err
			}
			params := cfg.ScanParams()

			results := make([]inspection, 0, len(groups))
			for _, g := range groups {
				buf, err := pipeline.LoadGroup(cmd.Context(), g, mode)
				if err != nil {
					return fmt.Errorf("load %s: %w", g.Name, err)
				}
				boundaries, err := strategy.Boundaries(buf, params)
				if err != nil {
					return fmt.Errorf("scan %s: %w", g.Name, err)
				}
				results = append(results, inspection{
					Group:         g.Name,
					Files:         len(g.Files),
					Height:        buf.Height,
					Width:         buf.Width,
					CandidateRows: len(slicer.Candidates(buf, params)),
					Boundaries:    boundaries,
					Heights:       segment.Heights(boundaries),
				})
				if profilePath != "" {
					if err := writeProfile(profilePath, g.Name, buf, params, boundaries); err != nil {
						return err
					}
				}
			}

			if asJSON {
				return writeJSON(cmd, results)
			}
			out := cmd.OutOrStdout()
			for i, res := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintln(out, renderInspection(res, strategy.Name()))
			}
			if profilePath != "" {
				fmt.Fprintf(out, "Wrote diff profile to %s\n", profilePath)
			}
			return nil
		},
	}

	scan.register(cmd)
	cmd.Flags().StringVar(&profilePath, "profile", "", "Write the row-difference profile chart to this PNG path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

// inspectGroups turns a file into a single group and a directory into the
// groups slice would discover under it.
func inspectGroups(cmd *cobra.Command, cfg *config.Config, target string) ([]discovery.Group, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, fmt.Errorf("inspect path %q: %w", target, err)
	}
	if !info.IsDir() {
		name := textutil.GroupName(filepath.Base(target), true)
		return []discovery.Group{{Name: name, Dir: ".", Files: []string{target}}}, nil
	}
	return discovery.Discover(cmd.Context(), target, discovery.Options{
		FolderMode: cfg.Input.FolderMode,
		Extensions: cfg.Input.Extensions,
	})
}

func writeProfile(path, title string, buf *pixbuf.Buffer, params slicer.Params, boundaries []int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}
	chart := report.ProfileChart{
		Title:      title,
		Diffs:      slicer.Profile(buf, params.ScanStep),
		Threshold:  params.Threshold,
		Boundaries: boundaries,
	}
	if _, err := fileutil.WriteAtomic(path, 0o644, chart.Render); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}

func renderInspection(res inspection, strategy string) string {
	rows := make([][]string, 0, len(res.Heights))
	for i, h := range res.Heights {
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.Itoa(res.Boundaries[i]),
			strconv.Itoa(res.Boundaries[i+1]),
			strconv.Itoa(h),
		})
	}
	header := fmt.Sprintf("%s: %d file(s), %dx%d, %s scan, %d candidate row(s), %d segment(s)",
		res.Group, res.Files, res.Width, res.Height, strategy, res.CandidateRows, len(res.Heights))
	view := tableView{
		Headers: []string{"Segment", "Start", "End", "Height"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignRight, alignRight, alignRight},
	}
	return header + "\n" + view.Render()
}
