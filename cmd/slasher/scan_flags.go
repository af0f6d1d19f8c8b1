package main

import (
	"github.com/spf13/cobra"

	"slasher/internal/config"
	"slasher/internal/slicer"
)

// scanFlags are the cut-search overrides shared by slice and inspect.
type scanFlags struct {
	threshold  int
	cropHeight int
	aura       int
	step       int
	central    bool
	folder     bool
}

func (f *scanFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.threshold, "threshold", "t", 0, "Largest per-channel row difference treated as uniform (0-255)")
	flags.IntVarP(&f.cropHeight, "crop-height", "H", 0, "Target segment height in rows")
	flags.IntVarP(&f.aura, "aura", "a", 0, "Uniform band height confirming a cut (0 disables)")
	flags.IntVarP(&f.step, "step", "s", 0, "Row stride of the scan")
	flags.BoolVarP(&f.central, "central", "c", false, "Search outward from each target height instead of scanning down")
	flags.BoolVarP(&f.folder, "folder", "f", false, "Concatenate each folder's images into one strip")
}

// apply copies explicitly set flags onto cfg.
func (f *scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("threshold") {
		cfg.Scan.Threshold = f.threshold
	}
	if flags.Changed("crop-height") {
		cfg.Scan.CropHeight = f.cropHeight
	}
	if flags.Changed("aura") {
		cfg.Scan.AuraMargin = f.aura
	}
	if flags.Changed("step") {
		cfg.Scan.ScanStep = f.step
	}
	if flags.Changed("central") {
		cfg.Scan.Strategy = slicer.StrategyStandard
		if f.central {
			cfg.Scan.Strategy = slicer.StrategyCentral
		}
	}
	if flags.Changed("folder") {
		cfg.Input.FolderMode = f.folder
	}
}
