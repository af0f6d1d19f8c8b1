package testsupport

import (
	"testing"

	"slasher/internal/config"
	"slasher/internal/manifest"
)

// MustOpenManifest opens a manifest.Store for tests and registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
