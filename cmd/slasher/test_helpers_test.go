package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"slasher/internal/config"
	"slasher/internal/pixbuf"
	"slasher/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	inputDir   string
	outputDir  string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		inputDir:   cfg.Paths.InputDir,
		outputDir:  cfg.Paths.OutputDir,
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

// stripImage is noise with a flat band at rows [45, 55).
func stripImage(t *testing.T, height, width int) *pixbuf.Buffer {
	t.Helper()
	buf := testsupport.NoiseBuffer(t, height, width, 3)
	testsupport.FillFlat(buf, 45, 55, testsupport.Gray)
	return buf
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
