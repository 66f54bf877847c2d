package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePathValidator checks the database, index and log paths taken from
// configuration and flags.
type FilePathValidator struct {
	// AllowedBaseDirs restricts paths to these trees. Empty allows any path.
	AllowedBaseDirs    []string
	AllowHomeExpansion bool
	AllowRelativePaths bool
	MaxPathLength      int
}

// NewFilePathValidator restricts paths to gallr's data and config
// directories and the temp dir.
func NewFilePathValidator() *FilePathValidator {
	homeDir, _ := os.UserHomeDir()
	return &FilePathValidator{
		AllowedBaseDirs: []string{
			filepath.Join(homeDir, ".gallr"),
			filepath.Join(homeDir, ".config", "gallr"),
			os.TempDir(),
		},
		AllowHomeExpansion: true,
		AllowRelativePaths: false,
		MaxPathLength:      4096,
	}
}

// NewPermissiveFilePathValidator allows any directory and relative paths.
func NewPermissiveFilePathValidator() *FilePathValidator {
	return &FilePathValidator{
		AllowedBaseDirs:    []string{},
		AllowHomeExpansion: true,
		AllowRelativePaths: true,
		MaxPathLength:      4096,
	}
}

// ValidateAndSanitize returns the cleaned, expanded form of path.
func (v *FilePathValidator) ValidateAndSanitize(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if len(path) > v.MaxPathLength {
		return "", fmt.Errorf("path too long (max %d characters)", v.MaxPathLength)
	}
	if err := v.validateCharacters(path); err != nil {
		return "", err
	}

	normalized, err := v.normalizePath(path)
	if err != nil {
		return "", fmt.Errorf("path normalization failed: %w", err)
	}
	if err := v.validateTraversal(normalized); err != nil {
		return "", err
	}
	if err := v.validateBaseDirs(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

func (v *FilePathValidator) validateCharacters(path string) error {
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("path contains null bytes")
	}
	for _, char := range path {
		if char < 32 && char != '\t' {
			return fmt.Errorf("path contains control characters")
		}
	}

	for _, seq := range []string{"../", "..\\", "./", "//", "\\\\"} {
		if strings.Contains(path, seq) {
			return fmt.Errorf("path contains dangerous sequence: %s", seq)
		}
	}
	return nil
}

func (v *FilePathValidator) normalizePath(path string) (string, error) {
	switch {
	case v.AllowHomeExpansion && strings.HasPrefix(path, "~/"):
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	case strings.HasPrefix(path, "~"):
		return "", fmt.Errorf("tilde expansion not allowed or invalid tilde usage")
	}

	if !v.AllowRelativePaths && !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("cannot make path absolute: %w", err)
		}
		path = abs
	}

	clean := filepath.Clean(path)
	if clean != path && strings.Contains(path, "..") {
		return "", fmt.Errorf("path contains directory traversal after normalization")
	}
	return clean, nil
}

func (v *FilePathValidator) validateTraversal(path string) error {
	for _, component := range strings.Split(filepath.ToSlash(path), "/") {
		if component == ".." {
			return fmt.Errorf("directory traversal not allowed")
		}
		if component == "." && !v.AllowRelativePaths {
			return fmt.Errorf("relative path components not allowed")
		}
	}
	return nil
}

func (v *FilePathValidator) validateBaseDirs(path string) error {
	if len(v.AllowedBaseDirs) == 0 {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("cannot resolve absolute path: %w", err)
	}

	for _, baseDir := range v.AllowedBaseDirs {
		absBase, err := filepath.Abs(baseDir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("path not within allowed directories: %v", v.AllowedBaseDirs)
}

// ValidateDirectory validates path as a directory, creating it when asked.
// A missing directory is not an error.
func (v *FilePathValidator) ValidateDirectory(path string, createIfNotExist bool) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(validated)
	switch {
	case os.IsNotExist(err):
		if createIfNotExist {
			if mkErr := os.MkdirAll(validated, 0o755); mkErr != nil {
				return "", fmt.Errorf("failed to create directory: %w", mkErr)
			}
		}
	case err != nil:
		return "", fmt.Errorf("checking directory: %w", err)
	case !info.IsDir():
		return "", fmt.Errorf("path exists but is not a directory: %s", validated)
	}

	return validated, nil
}

// ValidateFile validates path as a file whose parent is also allowed.
func (v *FilePathValidator) ValidateFile(path string) (string, error) {
	validated, err := v.ValidateAndSanitize(path)
	if err != nil {
		return "", err
	}

	if err := v.validateBaseDirs(filepath.Dir(validated)); err != nil {
		return "", fmt.Errorf("parent directory not allowed: %w", err)
	}

	if info, err := os.Stat(validated); err == nil && info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", validated)
	}

	return validated, nil
}

// IsPathSafe is a quick check without normalization.
func IsPathSafe(path string) bool {
	return !strings.Contains(path, "\x00") &&
		!strings.Contains(path, "../") &&
		!strings.Contains(path, "..\\") &&
		len(path) <= 4096
}
