package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	// InputDir is the root scanned for images. Usually supplied on the
	// command line.
	InputDir string `toml:"input_dir"`
	// OutputDir receives one directory per group. Empty means InputDir.
	OutputDir string `toml:"output_dir"`
	// StateDir holds the manifest database and the optional log file.
	StateDir string `toml:"state_dir"`
}

// Scan contains cut-line search parameters.
type Scan struct {
	Threshold  int    `toml:"threshold"`
	CropHeight int    `toml:"crop_height"`
	AuraMargin int    `toml:"aura_margin"`
	ScanStep   int    `toml:"scan_step"`
	Strategy   string `toml:"strategy"`
}

// Input controls discovery and decoding.
type Input struct {
	FolderMode bool     `toml:"folder_mode"`
	Color      string   `toml:"color"`
	Extensions []string `toml:"extensions"`
}

// Output controls segment encoding and side artifacts.
type Output struct {
	Format      string `toml:"format"`
	JPEGQuality int    `toml:"jpeg_quality"`
	PDFBundle   bool   `toml:"pdf_bundle"`
	Profile     bool   `toml:"profile"`
}

// Run controls scheduling across groups.
type Run struct {
	Workers int `toml:"workers"`
}

// Manifest controls the SQLite run ledger.
type Manifest struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   bool   `toml:"file"`
}

// Config encapsulates all configuration values for slasher.
//
// Configuration sections by subsystem:
//   - Paths: input, output and state directories
//   - Scan: threshold, target height, aura margin, stride, strategy
//   - Input: folder mode, color flattening, accepted extensions
//   - Output: segment format and optional PDF/profile artifacts
//   - Run: worker count across independent groups
//   - Manifest: SQLite ledger of runs and written segments
//   - Logging: log format, level, and file output
type Config struct {
	Paths    Paths    `toml:"paths"`
	Scan     Scan     `toml:"scan"`
	Input    Input    `toml:"input"`
	Output   Output   `toml:"output"`
	Run      Run      `toml:"run"`
	Manifest Manifest `toml:"manifest"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/slasher/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slasher.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state directory and, when set, the output
// directory.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.StateDir}
	if out := c.ResolvedOutputDir(); out != "" {
		dirs = append(dirs, out)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ResolvedOutputDir returns OutputDir, falling back to InputDir.
func (c *Config) ResolvedOutputDir() string {
	if c.Paths.OutputDir != "" {
		return c.Paths.OutputDir
	}
	return c.Paths.InputDir
}

// ManifestPath returns the manifest database location.
func (c *Config) ManifestPath() string {
	if c.Manifest.Path != "" {
		return c.Manifest.Path
	}
	return filepath.Join(c.Paths.StateDir, "manifest.db")
}

// LogFilePath returns the log file location used when Logging.File is set.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.StateDir, "slasher.log")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
