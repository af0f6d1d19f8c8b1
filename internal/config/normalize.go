package config

import (
	"fmt"
	"strings"
)

// Normalize expands paths and canonicalizes enum spellings. Load calls it;
// callers that mutate a loaded Config (for example from CLI flags) call it
// again before Validate.
func (c *Config) Normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeInput()
	c.normalizeOutput()
	if c.Run.Workers == 0 {
		c.Run.Workers = defaultWorkers
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(strings.TrimSpace(c.Paths.InputDir)); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Manifest.Path, err = expandPath(strings.TrimSpace(c.Manifest.Path)); err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.Strategy = strings.ToLower(strings.TrimSpace(c.Scan.Strategy))
	if c.Scan.Strategy == "" {
		c.Scan.Strategy = defaultStrategy
	}
}

func (c *Config) normalizeInput() {
	c.Input.Color = strings.ToLower(strings.TrimSpace(c.Input.Color))
	if c.Input.Color == "" {
		c.Input.Color = defaultColor
	}
	if len(c.Input.Extensions) == 0 {
		c.Input.Extensions = append([]string(nil), defaultExtensions...)
		return
	}
	exts := make([]string, 0, len(c.Input.Extensions))
	seen := make(map[string]struct{}, len(c.Input.Extensions))
	for _, ext := range c.Input.Extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Input.Extensions = exts
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultFormat
	}
	if c.Output.JPEGQuality == 0 {
		c.Output.JPEGQuality = defaultJPEGQuality
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
