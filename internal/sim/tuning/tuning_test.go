package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.yaml")
	raw := []byte("allow_stair_sectioning: false\ncomponent_price: 250\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.AllowStairSectioning {
		t.Fatalf("allow_stair_sectioning should be overridden to false")
	}
	if tn.ComponentPrice != 250 {
		t.Fatalf("component_price: got %d want 250", tn.ComponentPrice)
	}
	if tn.SendBufferSize != Default().SendBufferSize {
		t.Fatalf("unset fields should keep defaults")
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
