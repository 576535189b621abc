package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Assembler.DefaultMaxStackSize != 65536 {
		t.Errorf("expected DefaultMaxStackSize=65536, got %d", cfg.Assembler.DefaultMaxStackSize)
	}
	if !cfg.Assembler.WarnUnusedLabels {
		t.Error("expected WarnUnusedLabels=true")
	}
	if cfg.VM.TraceOnHalt {
		t.Error("expected TraceOnHalt=false")
	}
	if cfg.VM.PrintFormat != "dec" {
		t.Errorf("expected PrintFormat=dec, got %s", cfg.VM.PrintFormat)
	}
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Fatal("GetConfigPath returned empty string")
	}
	if filepath.Base(path) != "ryvm.toml" {
		t.Errorf("expected path to end with ryvm.toml, got %s", path)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")

	cfg := Default()
	cfg.Assembler.DefaultMaxStackSize = 4096
	cfg.Assembler.WarnUnusedLabels = false
	cfg.VM.TraceOnHalt = true
	cfg.VM.PrintFormat = "hex"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if loaded.Assembler.DefaultMaxStackSize != 4096 {
		t.Errorf("expected DefaultMaxStackSize=4096, got %d", loaded.Assembler.DefaultMaxStackSize)
	}
	if loaded.Assembler.WarnUnusedLabels {
		t.Error("expected WarnUnusedLabels=false")
	}
	if !loaded.VM.TraceOnHalt {
		t.Error("expected TraceOnHalt=true")
	}
	if loaded.VM.PrintFormat != "hex" {
		t.Errorf("expected PrintFormat=hex, got %s", loaded.VM.PrintFormat)
	}
}

func TestLoadFromNonExistentReturnsDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.toml")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom should not error on missing file: %v", err)
	}
	if cfg.Assembler.DefaultMaxStackSize != 65536 {
		t.Error("expected default config when file doesn't exist")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invalid.toml")

	invalid := "[assembler]\ndefault_max_stack_size = \"not a number\"\n"
	if err := os.WriteFile(path, []byte(invalid), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error loading invalid TOML")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub1", "sub2", "ryvm.toml")

	if err := Default().SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("config file was not created")
	}
}
