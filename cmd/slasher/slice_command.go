package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"slasher/internal/config"
	"slasher/internal/logging"
	"slasher/internal/manifest"
	"slasher/internal/pipeline"
	"slasher/internal/progress"
)

func newSliceCommand(ctx *commandContext) *cobra.Command {
	var (
		scan      scanFlags
		inputDir  string
		outputDir string
		format    string
		workers   int
		strict    bool
		pdf       bool
		profile   bool
	)

	cmd := &cobra.Command{
		Use:   "slice [input-dir]",
		Short: "Slice every image (or folder) under the input directory",
		Long: `Slice scans each image, or each folder of images with --folder, for rows
where the picture is uniform and cuts it into segments close to the target
height. Segments are written to {output}/{group}/{group}_{index}.{ext}.

A failing group or segment is logged and skipped. The command exits non-zero
only when setup fails, or with --strict when anything was skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cfg := cloneConfig(base)

			scan.apply(cmd, &cfg)
			flags := cmd.Flags()
			if len(args) == 1 {
				cfg.Paths.InputDir = args[0]
			}
			if flags.Changed("input") {
				cfg.Paths.InputDir = inputDir
			}
			if flags.Changed("output") {
				cfg.Paths.OutputDir = outputDir
			}
			if flags.Changed("format") {
				cfg.Output.Format = format
			}
			if flags.Changed("workers") {
				cfg.Run.Workers = workers
			}
			if flags.Changed("pdf") {
				cfg.Output.PDFBundle = pdf
			}
			if flags.Changed("profile") {
				cfg.Output.Profile = profile
			}
			if err := cfg.Normalize(); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Paths.InputDir) == "" {
				return errors.New("input directory is required (pass -i or set paths.input_dir)")
			}

			return runSlice(cmd, &cfg, strict)
		},
	}

	scan.register(cmd)
	flags := cmd.Flags()
	flags.StringVarP(&inputDir, "input", "i", "", "Input directory")
	flags.StringVarP(&outputDir, "output", "o", "", "Output directory (defaults to the input directory)")
	flags.StringVar(&format, "format", "", "Segment format: png, jpeg, bmp, tiff")
	flags.IntVar(&workers, "workers", 0, "Groups processed concurrently")
	flags.BoolVar(&strict, "strict", false, "Exit non-zero when any group or segment failed")
	flags.BoolVar(&pdf, "pdf", false, "Also write {group}/{group}.pdf with every segment")
	flags.BoolVar(&profile, "profile", false, "Also write {group}/{group}_profile.png")
	return cmd
}

func runSlice(cmd *cobra.Command, cfg *config.Config, strict bool) error {
	runID := uuid.NewString()
	stderr := cmd.ErrOrStderr()

	logger, err := logging.NewFromConfig(cfg, runID, stderr)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	var store *manifest.Store
	if cfg.Manifest.Enabled {
		store, err = manifest.Open(cfg.ManifestPath())
		if err != nil {
			logging.WarnWithContext(logger, "manifest unavailable; run will not be recorded", "manifest_open_failed",
				logging.String("path", cfg.ManifestPath()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set manifest.enabled = false to silence this warning"),
			)
		} else {
			defer store.Close()
		}
	}

	runner, err := pipeline.New(pipeline.Options{
		Config:   cfg,
		RunID:    runID,
		Logger:   logger,
		Manifest: store,
		Progress: func(total int) progress.Reporter {
			return progress.New(stderr, total, logger)
		},
	})
	if err != nil {
		return err
	}

	summary, runErr := runner.Run(cmd.Context())
	if summary == nil {
		return runErr
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderSummary(summary, shouldColorize(out)))
	if runErr != nil {
		return runErr
	}
	if strict && summary.HasFailures() {
		return fmt.Errorf("%d group(s) and %d segment(s) failed", summary.GroupsFailed, summary.SegmentsFailed)
	}
	return nil
}
