package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFallsBackToDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load(missing file) error = %v", err)
	}
	if cfg.Connection.ProtocolVersion != 758 {
		t.Errorf("ProtocolVersion = %d, want default 758", cfg.Connection.ProtocolVersion)
	}
	if cfg.World.MinY != -64 || cfg.World.Height != 384 {
		t.Errorf("World = %+v, want default min_y=-64 height=384", cfg.World)
	}
}

func TestLoadReadsFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := "connection:\n  address: \"play.example.com:25565\"\n  protocol_version: 47\nworld:\n  min_y: 0\n  height: 256\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", path, err)
	}
	if cfg.Connection.Address != "play.example.com:25565" {
		t.Errorf("Address = %q, want play.example.com:25565", cfg.Connection.Address)
	}
	if cfg.Connection.ProtocolVersion != 47 {
		t.Errorf("ProtocolVersion = %d, want 47", cfg.Connection.ProtocolVersion)
	}
	if cfg.World.MinY != 0 || cfg.World.Height != 256 {
		t.Errorf("World = %+v, want min_y=0 height=256", cfg.World)
	}
}

func TestLoadRejectsInvalidProtocolVersion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("connection:\n  protocol_version: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load with protocol_version below 5 = nil error, want validation error")
	}
}

func TestLoadRejectsNegativeWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("workers:\n  mesh_builders: -1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load with negative mesh_builders = nil error, want validation error")
	}
}
