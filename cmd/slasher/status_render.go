package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

var statusStyles = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const statusLabelWidth = 18

// renderStatusLine formats "  label:  [KIND] message", coloured when asked.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-*s [%s]", statusLabelWidth, label+":", style.label)
	if message != "" {
		line += " " + message
	}
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
