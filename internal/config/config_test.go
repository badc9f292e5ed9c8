package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteDefaultThenLoadFrom(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Defaults()
	cfg.path = path
	if err := cfg.WriteDefault(); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL {
		t.Errorf("Server.URL = %q, want %q", loaded.Server.URL, cfg.Server.URL)
	}
	if loaded.Server.Algorithm != "cuckoo" {
		t.Errorf("Server.Algorithm = %q, want cuckoo", loaded.Server.Algorithm)
	}
	if loaded.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", loaded.Logging.Level)
	}
}

func TestValidateRejectsUnknownAlgorithm(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Algorithm = "sha256"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject an unknown algorithm")
	}
}

func TestValidateRejectsEmptyURL(t *testing.T) {
	cfg := Defaults()
	cfg.Server.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected Validate to reject an empty server URL")
	}
}

func TestLocateFallsBackToCwdWhenNothingExists(t *testing.T) {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer os.Chdir(old)
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd after Chdir: %v", err)
	}

	path, err := Locate()
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if want := filepath.Join(wd, FileName); path != want {
		t.Errorf("Locate() = %q, want %q", path, want)
	}
}
