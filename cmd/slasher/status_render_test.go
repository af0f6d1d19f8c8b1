package main

import (
	"strings"
	"testing"
)

func TestRenderStatusLine(t *testing.T) {
	tests := []struct {
		name     string
		kind     statusKind
		message  string
		colorize bool
		want     string
	}{
		{"plain ok", statusOK, "done", false, "  Run:               [OK] done"},
		{"no message", statusWarn, "", false, "  Run:               [WARN]"},
		{"colour error", statusError, "boom", true, "\x1b[31m  Run:               [ERROR] boom\x1b[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderStatusLine("Run", tt.kind, tt.message, tt.colorize); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShouldColorizeIgnoresBuffers(t *testing.T) {
	if shouldColorize(&strings.Builder{}) {
		t.Fatal("non-file writers must not be colourised")
	}
}

func TestTruncateAndShortID(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Fatalf("truncate short = %q", got)
	}
	if got := shortID("0123456789"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
}
