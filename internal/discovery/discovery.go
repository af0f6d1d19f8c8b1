package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"slasher/internal/imageio"
	"slasher/internal/textutil"
)

// ErrNoImages reports an input root without a single decodable file.
var ErrNoImages = errors.New("no images found")

// Group is one logical strip: a single image, or every image of a folder.
type Group struct {
	// Name is the sanitized output name used for the group directory and
	// segment file prefix.
	Name string
	// Dir is the group's directory relative to the input root.
	Dir string
	// Files are absolute paths in concatenation order.
	Files []string
}

// Options controls grouping.
type Options struct {
	FolderMode bool
	// Extensions lists accepted lowercase extensions without the dot.
	// Empty means imageio.DecodableExtensions.
	Extensions []string
	// Exclude lists directories that are never descended into, typically an
	// output root nested inside the input root.
	Exclude []string
}

// Discover walks root in lexical order and returns its groups.
func Discover(ctx context.Context, root string, opts Options) ([]Group, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = imageio.DecodableExtensions
	}
	excluded := make(map[string]struct{}, len(opts.Exclude))
	for _, dir := range opts.Exclude {
		if abs, err := filepath.Abs(dir); err == nil && abs != root {
			excluded[abs] = struct{}{}
		}
	}

	var groups []Group
	index := map[string]int{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == root {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if _, skip := excluded[path]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !imageio.IsDecodable(path, exts) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relDir := filepath.Dir(rel)

		if !opts.FolderMode {
			groups = append(groups, Group{Name: textutil.GroupName(rel, true), Dir: relDir, Files: []string{path}})
			return nil
		}
		if i, ok := index[relDir]; ok {
			groups[i].Files = append(groups[i].Files, path)
			return nil
		}
		index[relDir] = len(groups)
		groups = append(groups, Group{Name: folderName(root, relDir), Dir: relDir, Files: []string{path}})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoImages, root)
	}
	dedupeNames(groups)
	return groups, nil
}

// TotalFiles counts the source files across groups; progress advances by
// this unit.
func TotalFiles(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += len(g.Files)
	}
	return total
}

func folderName(root, relDir string) string {
	if relDir == "." {
		return textutil.GroupName(filepath.Base(root), false)
	}
	return textutil.GroupName(relDir, false)
}

// dedupeNames suffixes later groups whose names collide after sanitizing,
// e.g. "page.png" and "page.jpg".
func dedupeNames(groups []Group) {
	seen := make(map[string]int, len(groups))
	for i := range groups {
		name := groups[i].Name
		n := seen[name]
		seen[name] = n + 1
		if n == 0 {
			continue
		}
		candidate := name + "-" + strconv.Itoa(n+1)
		for seen[candidate] > 0 {
			n++
			candidate = name + "-" + strconv.Itoa(n+1)
		}
		seen[candidate] = 1
		groups[i].Name = candidate
	}
}
