package validation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFilePathValidator(t *testing.T) {
	v := NewFilePathValidator()
	if !v.AllowHomeExpansion {
		t.Error("Expected AllowHomeExpansion to be true")
	}
	if v.AllowRelativePaths {
		t.Error("Expected AllowRelativePaths to be false")
	}
	if v.MaxPathLength != 4096 {
		t.Errorf("Expected MaxPathLength to be 4096, got %d", v.MaxPathLength)
	}

	homeDir, _ := os.UserHomeDir()
	found := false
	for _, dir := range v.AllowedBaseDirs {
		if dir == filepath.Join(homeDir, ".gallr") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected ~/.gallr in allowed dirs, got %v", v.AllowedBaseDirs)
	}

	p := NewPermissiveFilePathValidator()
	if !p.AllowRelativePaths || len(p.AllowedBaseDirs) != 0 {
		t.Error("Expected permissive validator to allow relative paths anywhere")
	}
}

func TestValidateAndSanitize(t *testing.T) {
	v := NewFilePathValidator()

	tests := []struct {
		name     string
		input    string
		errorMsg string
	}{
		{"empty path", "", "path cannot be empty"},
		{"path too long", strings.Repeat("a", 5000), "path too long"},
		{"null byte", "/tmp/test\x00.db", "null bytes"},
		{"control characters", "/tmp/test\x01.db", "control characters"},
		{"directory traversal", "/tmp/../etc/passwd", "dangerous sequence"},
		{"windows traversal", "/tmp/..\\windows", "dangerous sequence"},
		{"double slashes", "//server/share", "dangerous sequence"},
		{"invalid tilde", "~other/gallr.db", "tilde"},
		{"outside allowed dirs", "/etc/gallr.db", "not within allowed directories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateAndSanitize(tt.input)
			if err == nil {
				t.Fatalf("Expected error for input %q", tt.input)
			}
			if !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Expected error containing %q, got %q", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestValidateAndSanitizeAllowed(t *testing.T) {
	v := NewFilePathValidator()
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := v.ValidateAndSanitize("~/.gallr/gallr.db")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if want := filepath.Join(homeDir, ".gallr", "gallr.db"); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}

	tmp := filepath.Join(os.TempDir(), "gallr-test.db")
	if _, err := v.ValidateAndSanitize(tmp); err != nil {
		t.Errorf("Unexpected error for temp path: %v", err)
	}
}

func TestValidateAndSanitizePermissive(t *testing.T) {
	v := NewPermissiveFilePathValidator()

	for _, input := range []string{"gallr.db", filepath.Join(t.TempDir(), "gallr.db"), "/var/lib/gallr/gallr.db"} {
		got, err := v.ValidateAndSanitize(input)
		if err != nil {
			t.Errorf("Unexpected error for %q: %v", input, err)
		}
		if got == "" {
			t.Errorf("Expected non-empty result for %q", input)
		}
	}
}

func TestValidateBaseDirs(t *testing.T) {
	base := t.TempDir()
	v := &FilePathValidator{AllowedBaseDirs: []string{base}, MaxPathLength: 4096}

	if err := v.validateBaseDirs(filepath.Join(base, "sub", "file")); err != nil {
		t.Errorf("Expected path inside base to pass: %v", err)
	}
	if err := v.validateBaseDirs(base); err != nil {
		t.Errorf("Expected base itself to pass: %v", err)
	}
	if err := v.validateBaseDirs(filepath.Dir(base)); err == nil {
		t.Error("Expected parent of base to fail")
	}
	if err := v.validateBaseDirs(filepath.Join(base, "..cache")); err != nil {
		t.Errorf("Expected a name starting with dots to pass: %v", err)
	}
	if err := v.validateBaseDirs(base + "-sibling"); err == nil {
		t.Error("Expected sibling of base to fail")
	}
}

func TestValidateDirectory(t *testing.T) {
	v := NewPermissiveFilePathValidator()
	dir := t.TempDir()

	if _, err := v.ValidateDirectory(dir, false); err != nil {
		t.Errorf("Unexpected error for existing directory: %v", err)
	}

	missing := filepath.Join(dir, "missing")
	if _, err := v.ValidateDirectory(missing, false); err != nil {
		t.Errorf("Missing directory should not error: %v", err)
	}
	if _, err := os.Stat(missing); !os.IsNotExist(err) {
		t.Error("Directory should not have been created")
	}

	created := filepath.Join(dir, "favorites.bleve")
	if _, err := v.ValidateDirectory(created, true); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Errorf("Directory was not created: %s", created)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := v.ValidateDirectory(file, false); err == nil {
		t.Error("Expected error for a file")
	}
}

func TestValidateFile(t *testing.T) {
	v := NewPermissiveFilePathValidator()
	dir := t.TempDir()

	file := filepath.Join(dir, "gallr.db")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := v.ValidateFile(file); err != nil {
		t.Errorf("Unexpected error for existing file: %v", err)
	}
	if _, err := v.ValidateFile(filepath.Join(dir, "new.db")); err != nil {
		t.Errorf("Unexpected error for new file: %v", err)
	}
	_, err := v.ValidateFile(dir)
	if err == nil || !strings.Contains(err.Error(), "is a directory") {
		t.Errorf("Expected directory error, got %v", err)
	}
}

func TestIsPathSafe(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/tmp/gallr.db", true},
		{"/tmp/test\x00.db", false},
		{"../../../etc/passwd", false},
		{"..\\..\\windows", false},
		{strings.Repeat("a", 5000), false},
		{strings.Repeat("a", 4000), true},
	}

	for _, tt := range tests {
		if got := IsPathSafe(tt.path); got != tt.expected {
			t.Errorf("IsPathSafe(%q) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}
