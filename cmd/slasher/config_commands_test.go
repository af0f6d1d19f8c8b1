package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, "standard, threshold 0, crop 40, aura 2, step 1")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Scan.CropHeight = 0
	writeTestConfig(t, env.configPath, env.cfg)

	if _, _, err := runCLI(t, []string{"config", "validate"}, env.configPath); err == nil {
		t.Fatal("expected validation error for crop_height = 0")
	}
}
