package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"slasher/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Input, output and state live under a shared base directory; the scan
// parameters are shrunk so small synthetic strips produce several segments.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.InputDir = filepath.Join(base, "input")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Scan.CropHeight = 40
	cfgVal.Scan.AuraMargin = 2
	cfgVal.Scan.ScanStep = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	for _, dir := range []string{cfgVal.Paths.InputDir, cfgVal.Paths.StateDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	return builder.cfg
}

// WithScan overrides the scan parameters on the test config.
func WithScan(cropHeight, auraMargin, scanStep int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.CropHeight = cropHeight
		b.cfg.Scan.AuraMargin = auraMargin
		b.cfg.Scan.ScanStep = scanStep
	}
}

// WithFolderMode toggles folder concatenation.
func WithFolderMode(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Input.FolderMode = enabled
	}
}

// WithoutManifest disables the SQLite ledger.
func WithoutManifest() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Enabled = false
	}
}

// WithOutputFormat selects the segment encoding.
func WithOutputFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Format = format
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
