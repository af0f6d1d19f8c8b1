package preflight

import (
	"errors"
	"strings"

	"slasher/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg. The output root is created
// when missing.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Input directory", cfg.Paths.InputDir),
		EnsureWritableDirectory("Output directory", cfg.ResolvedOutputDir()),
	}
	if cfg.Manifest.Enabled || cfg.Logging.File {
		results = append(results, EnsureWritableDirectory("State directory", cfg.Paths.StateDir))
	}
	results = append(results, CheckFreeSpace("Output free space", cfg.ResolvedOutputDir()))
	return results
}

// Failure joins the details of every failed result, or returns nil.
func Failure(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.Name+": "+r.Detail)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return errors.New("preflight failed: " + strings.Join(failed, "; "))
}
