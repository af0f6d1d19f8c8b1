package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"slasher/internal/config"
	"slasher/internal/preflight"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Set paths.input_dir or pass -i to `slasher slice`.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Config path: %s\n", resolved)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			for _, line := range configStatusLines(cfg, colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func configStatusLines(cfg *config.Config, colorize bool) []string {
	lines := []string{
		renderStatusLine("Scan", statusInfo, fmt.Sprintf("%s, threshold %d, crop %d, aura %d, step %d",
			cfg.Scan.Strategy, cfg.Scan.Threshold, cfg.Scan.CropHeight, cfg.Scan.AuraMargin, cfg.Scan.ScanStep), colorize),
		renderStatusLine("Folder mode", statusInfo, yesNo(cfg.Input.FolderMode), colorize),
		renderStatusLine("Output format", statusInfo, cfg.Output.Format, colorize),
	}

	if cfg.Paths.InputDir == "" {
		lines = append(lines, renderStatusLine("Input directory", statusInfo, "not set (pass -i to slice)", colorize))
	} else {
		lines = append(lines, directoryStatusLine(preflight.CheckReadableDirectory("Input directory", cfg.Paths.InputDir), colorize))
	}
	if out := cfg.ResolvedOutputDir(); out != "" {
		if _, err := os.Stat(out); os.IsNotExist(err) {
			lines = append(lines, renderStatusLine("Output directory", statusWarn, out+" (created on first run)", colorize))
		} else {
			result := preflight.CheckDirectoryAccess("Output directory", out, unix.W_OK|unix.X_OK)
			lines = append(lines, directoryStatusLine(result, colorize))
		}
	}
	if cfg.Manifest.Enabled {
		lines = append(lines, renderStatusLine("Manifest", statusInfo, cfg.ManifestPath(), colorize))
	} else {
		lines = append(lines, renderStatusLine("Manifest", statusWarn, "disabled", colorize))
	}
	return lines
}

func directoryStatusLine(result preflight.Result, colorize bool) string {
	if result.Passed {
		return renderStatusLine(result.Name, statusOK, result.Detail, colorize)
	}
	return renderStatusLine(result.Name, statusError, result.Detail, colorize)
}
