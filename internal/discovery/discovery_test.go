package discovery_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"slasher/internal/discovery"
	"slasher/internal/testsupport"
)

func seedTree(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "Strips")
	for _, rel := range []string{
		"b.png",
		"a.jpg",
		"notes.txt",
		".hidden.png",
		".cache/x.png",
		"ch1/02.png",
		"ch1/01.png",
		"ch1/sub/10.webp",
		"ch2/01.PNG",
	} {
		testsupport.WriteFile(t, filepath.Join(root, rel), []byte("x"))
	}
	return root
}

func names(groups []discovery.Group) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

func TestDiscoverSingleFileMode(t *testing.T) {
	root := seedTree(t)

	groups, err := discovery.Discover(context.Background(), root, discovery.Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"a", "b", "ch1-01", "ch1-02", "ch1-sub-10", "ch2-01"}
	if got := names(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected groups: got %v want %v", got, want)
	}
	for _, g := range groups {
		if len(g.Files) != 1 {
			t.Fatalf("group %s has %d files", g.Name, len(g.Files))
		}
		if !filepath.IsAbs(g.Files[0]) {
			t.Fatalf("expected absolute path, got %q", g.Files[0])
		}
	}
	if discovery.TotalFiles(groups) != 6 {
		t.Fatalf("unexpected total: %d", discovery.TotalFiles(groups))
	}
}

func TestDiscoverFolderMode(t *testing.T) {
	root := seedTree(t)

	groups, err := discovery.Discover(context.Background(), root, discovery.Options{FolderMode: true})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"Strips", "ch1", "ch1-sub", "ch2"}
	if got := names(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected groups: got %v want %v", got, want)
	}
	ch1 := groups[1]
	wantFiles := []string{filepath.Join(root, "ch1", "01.png"), filepath.Join(root, "ch1", "02.png")}
	if !reflect.DeepEqual(ch1.Files, wantFiles) {
		t.Fatalf("unexpected ch1 order: %v", ch1.Files)
	}
	if len(groups[0].Files) != 2 || groups[0].Dir != "." {
		t.Fatalf("unexpected root group: %+v", groups[0])
	}
	if discovery.TotalFiles(groups) != 6 {
		t.Fatalf("unexpected total: %d", discovery.TotalFiles(groups))
	}
}

func TestDiscoverExtensionFilterAndExclude(t *testing.T) {
	root := seedTree(t)
	testsupport.WriteFile(t, filepath.Join(root, "out", "b", "b_0.png"), []byte("x"))

	groups, err := discovery.Discover(context.Background(), root, discovery.Options{
		Extensions: []string{"png"},
		Exclude:    []string{filepath.Join(root, "out")},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"b", "ch1-01", "ch1-02", "ch2-01"}
	if got := names(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected groups: got %v want %v", got, want)
	}
}

func TestDiscoverDedupesCollidingNames(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "page.jpg"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(root, "page.png"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(root, "page-2.png"), []byte("x"))

	groups, err := discovery.Discover(context.Background(), root, discovery.Options{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{"page-2", "page", "page-3"}
	if got := names(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected groups: got %v want %v", got, want)
	}
}

func TestDiscoverEmptyRoot(t *testing.T) {
	_, err := discovery.Discover(context.Background(), t.TempDir(), discovery.Options{})
	if !errors.Is(err, discovery.ErrNoImages) {
		t.Fatalf("expected ErrNoImages, got %v", err)
	}
}

func TestDiscoverHonorsCancellation(t *testing.T) {
	root := seedTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := discovery.Discover(ctx, root, discovery.Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
