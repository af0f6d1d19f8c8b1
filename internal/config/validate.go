package config

import (
	"errors"
	"fmt"

	"slasher/internal/imageio"
	"slasher/internal/pixbuf"
	"slasher/internal/slicer"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if c.Run.Workers < 1 {
		return errors.New("run.workers must be >= 1")
	}
	if c.Manifest.Enabled && c.ManifestPath() == "" {
		return errors.New("manifest.path or paths.state_dir must be set when manifest.enabled is true")
	}
	return nil
}

func (c *Config) validateScan() error {
	if c.Scan.Threshold < 0 || c.Scan.Threshold > 255 {
		return fmt.Errorf("scan.threshold must be between 0 and 255 (got %d)", c.Scan.Threshold)
	}
	if err := ensurePositiveMap(map[string]int{
		"scan.crop_height": c.Scan.CropHeight,
		"scan.scan_step":   c.Scan.ScanStep,
	}); err != nil {
		return err
	}
	if c.Scan.AuraMargin < 0 {
		return errors.New("scan.aura_margin must be >= 0")
	}
	if _, err := slicer.New(c.Scan.Strategy); err != nil {
		return fmt.Errorf("scan.strategy: %w", err)
	}
	return nil
}

func (c *Config) validateInput() error {
	if _, err := pixbuf.ParseColorMode(c.Input.Color); err != nil {
		return fmt.Errorf("input.color: %w", err)
	}
	if len(c.Input.Extensions) == 0 {
		return errors.New("input.extensions must include at least one extension")
	}
	return nil
}

func (c *Config) validateOutput() error {
	if _, err := imageio.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return errors.New("output.jpeg_quality must be between 1 and 100")
	}
	return nil
}

// ScanParams converts the scan section into slicer parameters.
func (c *Config) ScanParams() slicer.Params {
	return slicer.Params{
		Threshold:  uint8(c.Scan.Threshold),
		CropHeight: c.Scan.CropHeight,
		AuraMargin: c.Scan.AuraMargin,
		ScanStep:   c.Scan.ScanStep,
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
