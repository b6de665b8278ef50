package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMissingFileUsesDefaults(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if f.ListenAddr() != ":9001" {
		t.Fatalf("ListenAddr = %q", f.ListenAddr())
	}
	if f.NoiseFloorDB() != -70 {
		t.Fatalf("NoiseFloorDB = %g", f.NoiseFloorDB())
	}
	if f.MaxMagnitudeSS() != 5 {
		t.Fatalf("MaxMagnitudeSS = %g", f.MaxMagnitudeSS())
	}
	if f.MaxPhaseDeg() != 5 {
		t.Fatalf("MaxPhaseDeg = %g", f.MaxPhaseDeg())
	}
	if f.LoadGamma() != 0 {
		t.Fatalf("LoadGamma = %g", f.LoadGamma())
	}
}

func TestPartialFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"listenAddr":":8080","noiseFloorDB":-60}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if f.ListenAddr() != ":8080" {
		t.Fatalf("ListenAddr = %q", f.ListenAddr())
	}
	if f.NoiseFloorDB() != -60 {
		t.Fatalf("NoiseFloorDB = %g", f.NoiseFloorDB())
	}
	// Unnamed fields keep their defaults.
	if f.MaxPhaseDeg() != 5 {
		t.Fatalf("MaxPhaseDeg = %g", f.MaxPhaseDeg())
	}
}

func TestBadFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := NewFile(path); err == nil {
		t.Fatal("expected an error for a malformed config")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"loadGamma":1e-99}`), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	f, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := f.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if f.LoadGamma() != 1e-99 {
		t.Fatalf("LoadGamma = %g", f.LoadGamma())
	}
}
