package textutil

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is NFC-normalized and trimmed of
// leading/trailing whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(norm.NFC.String(name))
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// GroupName derives an output group name from a path relative to the input
// root. The extension is dropped when stripExt is set; nested directories are
// joined with dashes. Empty results fall back to "unnamed".
func GroupName(rel string, stripExt bool) string {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." {
		rel = ""
	}
	if stripExt {
		rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	}
	name := strings.Trim(SanitizeFileName(rel), ".-")
	if name == "" {
		return "unnamed"
	}
	return name
}
