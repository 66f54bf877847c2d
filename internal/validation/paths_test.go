package validation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathHandlerDefaults(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	ph := NewPermissivePathHandler()

	tests := []struct {
		name     string
		resolve  func(string) (string, error)
		expected string
	}{
		{"database", ph.GetSecureDBPath, filepath.Join(homeDir, ".gallr", "gallr.db")},
		{"config", ph.GetSecureConfigPath, filepath.Join(homeDir, ".config", "gallr", "config.toml")},
		{"index", ph.GetSecureIndexPath, filepath.Join(homeDir, ".gallr", "favorites.bleve")},
		{"log", ph.GetSecureLogPath, filepath.Join(homeDir, ".gallr", "gallr.log")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.resolve("")
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestPathHandlerUserPaths(t *testing.T) {
	ph := NewPermissivePathHandler()
	dir := t.TempDir()

	db := filepath.Join(dir, "custom.db")
	if got, err := ph.GetSecureDBPath(db); err != nil || got != db {
		t.Errorf("GetSecureDBPath(%q) = %q, %v", db, got, err)
	}

	if _, err := ph.GetSecureDBPath(dir); err == nil {
		t.Error("Expected error when database path is a directory")
	}

	idx := filepath.Join(dir, "idx.bleve")
	if got, err := ph.GetSecureIndexPath(idx); err != nil || got != idx {
		t.Errorf("GetSecureIndexPath(%q) = %q, %v", idx, got, err)
	}
}

func TestSecurePathHandlerRejectsOutsidePaths(t *testing.T) {
	ph := NewSecurePathHandler()

	if _, err := ph.GetSecureDBPath("/etc/gallr.db"); err == nil {
		t.Error("Expected /etc to be rejected")
	}
	if _, err := ph.ExpandAndValidatePath("~/.gallr/../.ssh/id_rsa"); err == nil {
		t.Error("Expected traversal to be rejected")
	}
}

func TestEnsureSecureDirectory(t *testing.T) {
	ph := NewPermissivePathHandler()
	target := filepath.Join(t.TempDir(), "a", "b")

	got, err := ph.EnsureSecureDirectory(target)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info, err := os.Stat(got); err != nil || !info.IsDir() {
		t.Errorf("Expected directory at %s", got)
	}
}
