package pack

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryServesCachedPack(t *testing.T) {
	reg, err := NewRegistry(4)
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	path := writeTempPack(t, samplePackYAML)

	first, err := reg.Load(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	second, err := reg.Load(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Fatal("expected cache hit to return the same parsed pack")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 cached pack, got %d", reg.Len())
	}
}

func TestRegistryReparsesOnContentChange(t *testing.T) {
	reg, err := NewRegistry(4)
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	path := writeTempPack(t, samplePackYAML)

	first, err := reg.Load(path)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}

	changed := samplePackYAML + "\ntestPerformance: []\n"
	if err := os.WriteFile(path, []byte(changed), 0o644); err != nil {
		t.Fatalf("rewriting pack: %v", err)
	}

	second, err := reg.Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if first == second {
		t.Fatal("expected changed file content to force a reparse")
	}
}

func TestRegistryPropagatesLoadErrors(t *testing.T) {
	reg, err := NewRegistry(4)
	if err != nil {
		t.Fatalf("creating registry: %v", err)
	}
	if _, err := reg.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing pack file")
	}
}
