package mitigate

import (
	"os"
	"testing"
)

func TestCatalogWatcherReload(t *testing.T) {
	path := writeTempFile(t, "catalog.json", validCatalogJSON)

	var reloaded *Catalog
	watcher, err := NewCatalogWatcher(path, nil, func(c *Catalog) { reloaded = c })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer watcher.Close()

	watcher.reload()
	if reloaded == nil || reloaded.Len() != 5 {
		t.Fatalf("expected reloaded catalog, got %v", reloaded)
	}

	// A broken rewrite must not replace the last good catalog.
	if err := os.WriteFile(path, []byte(`{broken`), 0o644); err != nil {
		t.Fatalf("rewrite catalog: %v", err)
	}
	previous := reloaded
	watcher.reload()
	if reloaded != previous {
		t.Fatalf("broken catalog must not trigger the callback")
	}
}

func TestCatalogWatcherMissingDirectory(t *testing.T) {
	if _, err := NewCatalogWatcher("/does/not/exist/catalog.json", nil, nil); err == nil {
		t.Fatalf("expected error for unwatchable path")
	}
}
